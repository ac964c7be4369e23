// Package caselaw searches the Indian Kanoon case-law database.
package caselaw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/config"
	"github.com/shalabh-srivastava/legalsuite/internal/metrics"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
)

// DefaultMaxResults bounds a search when the caller passes a non-positive cap.
const DefaultMaxResults = 10

// Placeholders for fields the service left out.
const (
	UnknownTitle = "Unknown Case"
	UnknownCourt = "Unknown Court"
	UnknownDate  = "Unknown Date"
)

// Searcher returns case-law hits for a query.
type Searcher interface {
	// SearchCaseLaw returns at most maxResults hits in upstream order. Any
	// failure yields an empty slice.
	SearchCaseLaw(ctx context.Context, query string, maxResults int) []models.CaseLawHit
	Configured() bool
}

// KanoonClient queries the Indian Kanoon search API.
type KanoonClient struct {
	apiKey     string
	baseURL    string
	docBaseURL string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewKanoonClient(cfg config.CaseLawConfig, logger *zap.Logger, m *metrics.Metrics) *KanoonClient {
	return &KanoonClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		docBaseURL: cfg.DocBaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		metrics:    m,
	}
}

// Configured reports whether an API key is present. Searches are attempted
// either way.
func (c *KanoonClient) Configured() bool { return c.apiKey != "" }

type kanoonResponse struct {
	Docs []json.RawMessage `json:"docs"`
}

func (c *KanoonClient) SearchCaseLaw(ctx context.Context, query string, maxResults int) []models.CaseLawHit {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	start := time.Now()

	docs, err := c.search(ctx, query)
	if err != nil {
		c.logger.Error("case-law search failed", zap.Error(err))
		c.metrics.ExternalCall(metrics.SourceCaseLaw, metrics.OutcomeDegraded, time.Since(start))
		return []models.CaseLawHit{}
	}
	c.metrics.ExternalCall(metrics.SourceCaseLaw, metrics.OutcomeOK, time.Since(start))

	hits := make([]models.CaseLawHit, 0, min(len(docs), maxResults))
	for i, raw := range docs {
		if len(hits) == maxResults {
			break
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			c.logger.Debug("skipping case-law doc", zap.Int("index", i), zap.Error(err))
			continue
		}
		hits = append(hits, c.toHit(doc))
	}
	c.logger.Debug("case-law search", zap.Int("hits", len(hits)), zap.Duration("took", time.Since(start)))
	return hits
}

func (c *KanoonClient) search(ctx context.Context, query string) ([]json.RawMessage, error) {
	params := url.Values{
		"formInput": {query},
		"pagenum":   {"0"},
		"API_KEY":   {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Indian Kanoon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Indian Kanoon returned HTTP %d", resp.StatusCode)
	}

	var kr kanoonResponse
	if err := json.NewDecoder(resp.Body).Decode(&kr); err != nil {
		return nil, fmt.Errorf("parsing Indian Kanoon response: %w", err)
	}
	return kr.Docs, nil
}

// decodeDoc decodes one search result. Anything but a JSON object is an
// error so a single malformed entry drops only itself.
func decodeDoc(raw json.RawMessage) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("doc is null")
	}
	return doc, nil
}

func (c *KanoonClient) toHit(doc map[string]any) models.CaseLawHit {
	tid, _ := text(doc, "tid")
	return models.CaseLawHit{
		Title:    textOr(doc, "title", UnknownTitle),
		Court:    textOr(doc, "court", UnknownCourt),
		Date:     textOr(doc, "date", UnknownDate),
		Citation: textOr(doc, "citation", ""),
		Summary:  textOr(doc, "summary", ""),
		URL:      c.docBaseURL + tid,
	}
}

// text renders doc[key] as a string. Strings pass through unchanged
// (including empty ones), numbers and booleans are formatted; anything else
// counts as absent.
func text(doc map[string]any, key string) (string, bool) {
	switch v := doc[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func textOr(doc map[string]any, key, fallback string) string {
	if s, ok := text(doc, key); ok {
		return s
	}
	return fallback
}
