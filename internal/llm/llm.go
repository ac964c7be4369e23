// Package llm turns a legal research query into a natural-language analysis
// from a configurable generative-text backend.
//
// The backend (endpoint, credential, model, wire format) is chosen once at
// startup by New. Callers only see the Analyzer interface, and an Analyzer
// never returns an error: failures come back as human-readable text in place
// of the analysis.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/config"
	"github.com/shalabh-srivastava/legalsuite/internal/metrics"
)

// Texts returned in place of an analysis.
const (
	NotConfiguredMessage = "AI legal assistant is not configured. Set an LLM API key to enable legal analysis."
	AuthErrorPrefix      = "Authentication error: "
	ErrorPrefix          = "Error processing legal query: "
)

// Analyzer produces a legal analysis for a query.
type Analyzer interface {
	// GenerateLegalAnalysis returns the analysis text, or a description of
	// the failure when the backend could not produce one. correlationID
	// groups the turns of one research thread where the backend supports it.
	GenerateLegalAnalysis(ctx context.Context, query, extraContext, correlationID string) string
	// Configured reports whether a credential is present.
	Configured() bool
	// Name identifies the backend, e.g. "openai:gpt-4o".
	Name() string
}

// backend performs a single completion against one provider.
type backend interface {
	complete(ctx context.Context, system, prompt, correlationID string) (string, error)
}

// statusError is a non-2xx answer from a provider.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("LLM service returned %d: %s", e.Code, e.Body)
}

// SystemInstruction is the fixed persona and answer-structuring preamble
// sent with every query.
func SystemInstruction(jurisdiction string) string {
	return fmt.Sprintf(`You are an expert AI legal assistant specialized in %s law.
You help legal associates with research, case analysis, and legal reasoning.

Key guidelines:
1. Provide accurate, well-researched legal analysis
2. Cite relevant %s statutes, case law, and legal principles
3. Structure responses with clear headings and bullet points
4. Always mention when additional research or professional consultation is needed
5. Focus on practical legal implications and strategies
6. Use proper legal terminology and citation format

Remember: You assist with legal research but cannot provide specific legal advice.
State clearly that your answer is not legal advice.`, jurisdiction, jurisdiction)
}

// BuildPrompt renders the user message for a query.
func BuildPrompt(query, extraContext string) string {
	prompt := "Legal Research Query: " + query
	if extraContext != "" {
		prompt += "\n\nAdditional Context: " + extraContext
	}
	return prompt
}

// New builds the Analyzer selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger, m *metrics.Metrics) (Analyzer, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	a := &analyzer{
		configured: cfg.APIKey != "",
		system:     SystemInstruction(cfg.Jurisdiction),
		logger:     logger,
		metrics:    m,
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		a.name = config.ProviderOpenAI + ":" + model
		a.backend = newOpenAIBackend(cfg.APIKey, cfg.BaseURL, model, cfg.MaxTokens, cfg.Temperature, httpClient)
	case config.ProviderGemini:
		model := cfg.Model
		if model == "" {
			model = DefaultGeminiModel
		}
		a.name = config.ProviderGemini + ":" + model
		if a.configured {
			b, err := newGeminiBackend(ctx, cfg.APIKey, cfg.BaseURL, model, cfg.MaxTokens, cfg.Temperature, httpClient)
			if err != nil {
				return nil, err
			}
			a.backend = b
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
	return a, nil
}

// analyzer is the single Analyzer implementation; the provider specifics
// live in its backend.
type analyzer struct {
	backend    backend
	name       string
	configured bool
	system     string
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func (a *analyzer) Configured() bool { return a.configured }

func (a *analyzer) Name() string { return a.name }

func (a *analyzer) GenerateLegalAnalysis(ctx context.Context, query, extraContext, correlationID string) (text string) {
	start := time.Now()
	log := a.logger.With(zap.String("backend", a.name), zap.String("correlation_id", correlationID))

	if !a.configured || a.backend == nil {
		log.Warn("llm call skipped: no credential")
		a.metrics.ExternalCall(metrics.SourceLLM, metrics.OutcomeNotConfigured, time.Since(start))
		return NotConfiguredMessage
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("llm call panicked", zap.Any("panic", r))
			a.metrics.ExternalCall(metrics.SourceLLM, metrics.OutcomeDegraded, time.Since(start))
			text = ErrorPrefix + fmt.Sprint(r)
		}
	}()

	out, err := a.backend.complete(ctx, a.system, BuildPrompt(query, extraContext), correlationID)
	if err == nil && strings.TrimSpace(out) == "" {
		err = errors.New("empty response from model")
	}
	if err != nil {
		log.Error("llm call failed", zap.Error(err))
		a.metrics.ExternalCall(metrics.SourceLLM, metrics.OutcomeDegraded, time.Since(start))
		return describeFailure(err)
	}

	log.Debug("llm call succeeded", zap.Duration("took", time.Since(start)))
	a.metrics.ExternalCall(metrics.SourceLLM, metrics.OutcomeOK, time.Since(start))
	return out
}

// describeFailure renders err as the text handed back instead of an
// analysis, separating credential problems from other failures.
func describeFailure(err error) string {
	var se *statusError
	if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
		return AuthErrorPrefix + err.Error()
	}
	return ErrorPrefix + err.Error()
}
