package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// geminiBackend calls the Gemini API through the Google GenAI SDK. Gemini
// keeps no server-side conversation for GenerateContent, so the correlation
// id is only used for logging by the caller.
type geminiBackend struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func newGeminiBackend(ctx context.Context, apiKey, baseURL, model string, maxTokens int, temperature float64, httpClient *http.Client) (*geminiBackend, error) {
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create GenAI client: %w", err)
	}
	return &geminiBackend{
		client:      client,
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
	}, nil
}

func (b *geminiBackend) complete(ctx context.Context, system, prompt, _ string) (string, error) {
	temperature := b.temperature
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   b.maxTokens,
	})
	if err != nil {
		return "", geminiError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("Gemini response has no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// geminiError maps SDK API errors onto statusError so credential failures
// are reported the same way for every provider.
func geminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &statusError{Code: apiErr.Code, Body: apiErr.Message}
	}
	return fmt.Errorf("Gemini request: %w", err)
}
