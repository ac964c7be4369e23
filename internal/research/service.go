// Package research runs legal research: it asks the LLM backend for an
// analysis, searches case law, merges both into one artifact and records it
// in the firm's research history.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shalabh-srivastava/legalsuite/internal/caselaw"
	"github.com/shalabh-srivastava/legalsuite/internal/llm"
	"github.com/shalabh-srivastava/legalsuite/internal/metrics"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
)

var (
	// ErrValidation marks a request rejected before any external call.
	ErrValidation = errors.New("invalid research query")
	// ErrStorage marks research that was computed but could not be recorded.
	ErrStorage = errors.New("research could not be saved")
	// ErrUnexpected marks a failure that escaped the LLM or case-law client.
	ErrUnexpected = errors.New("research failed unexpectedly")
)

// ContextNote is the generic context sent with every research query.
const ContextNote = "Law firm context for legal research"

// summaryWindow is how many leading hits feed the summary fields.
const summaryWindow = 5

// Store persists research records.
type Store interface {
	InsertResearch(ctx context.Context, rec *models.ResearchRecord) error
	ListResearchByFirm(ctx context.Context, firmID string, limit int) ([]models.ResearchRecord, error)
	GetResearch(ctx context.Context, id string) (*models.ResearchRecord, error)
}

// Service orchestrates one research request.
type Service struct {
	analyzer     llm.Analyzer
	searcher     caselaw.Searcher
	store        Store
	maxResults   int
	historyLimit int
	logger       *zap.Logger
	metrics      *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func NewService(analyzer llm.Analyzer, searcher caselaw.Searcher, store Store, maxResults, historyLimit int, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		analyzer:     analyzer,
		searcher:     searcher,
		store:        store,
		maxResults:   maxResults,
		historyLimit: historyLimit,
		logger:       logger,
		metrics:      m,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// CorrelationID returns a fresh research-thread identifier scoped to firmID.
func CorrelationID(firmID string) string {
	return fmt.Sprintf("legal_research_%s_%s", firmID, uuid.NewString())
}

// Conduct runs the LLM analysis and the case-law search, merges the results
// and persists them. Both client calls absorb their own failures, so the only
// errors are ErrValidation, ErrStorage and ErrUnexpected.
//
// An AI response that is itself an error text is returned and stored like
// any other analysis; callers must inspect AIResponse to tell them apart.
func (s *Service) Conduct(ctx context.Context, q models.ResearchQuery) (*models.ResearchResult, error) {
	if err := validate(q); err != nil {
		s.metrics.Research(metrics.OutcomeInvalid)
		return nil, err
	}

	correlationID := CorrelationID(q.FirmID)
	log := s.logger.With(zap.String("firm_id", q.FirmID), zap.String("correlation_id", correlationID))

	// Outbound calls and the write run to completion even if the caller goes
	// away; the clients bound themselves with their own timeouts.
	callCtx := context.WithoutCancel(ctx)

	var (
		aiResponse string
		hits       []models.CaseLawHit
		g          errgroup.Group
	)
	g.Go(func() (err error) {
		defer recoverInto(&err, "llm")
		aiResponse = s.analyzer.GenerateLegalAnalysis(callCtx, q.Query, ContextNote, correlationID)
		return nil
	})
	g.Go(func() (err error) {
		defer recoverInto(&err, "caselaw")
		hits = s.searcher.SearchCaseLaw(callCtx, q.Query, s.maxResults)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("research failed", zap.Error(err))
		s.metrics.Research(metrics.OutcomeError)
		return nil, fmt.Errorf("%w: %v", ErrUnexpected, err)
	}

	if hits == nil {
		hits = []models.CaseLawHit{}
	}
	if len(hits) > s.maxResults {
		hits = hits[:s.maxResults]
	}

	result := &models.ResearchResult{
		ID:                 s.newID(),
		Query:              q.Query,
		AIResponse:         aiResponse,
		CaseLawHits:        hits,
		RelevantCaseTitles: RelevantCaseTitles(hits),
		LegalAuthorities:   LegalAuthorities(hits),
		CreatedAt:          s.now().UTC(),
	}

	rec := &models.ResearchRecord{
		ResearchResult: *result,
		FirmID:         q.FirmID,
		UserID:         q.UserID,
		CaseID:         q.CaseID,
	}
	if err := s.store.InsertResearch(callCtx, rec); err != nil {
		log.Error("saving research failed", zap.String("research_id", result.ID), zap.Error(err))
		s.metrics.Research(metrics.OutcomeStorageError)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	log.Info("research recorded",
		zap.String("research_id", result.ID),
		zap.Int("case_law_hits", len(hits)),
	)
	s.metrics.Research(metrics.OutcomeOK)
	return result, nil
}

// History returns the firm's research records, most recent first.
func (s *Service) History(ctx context.Context, firmID string) ([]models.ResearchRecord, error) {
	if strings.TrimSpace(firmID) == "" {
		return nil, fmt.Errorf("%w: law_firm_id is required", ErrValidation)
	}
	recs, err := s.store.ListResearchByFirm(ctx, firmID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if recs == nil {
		recs = []models.ResearchRecord{}
	}
	return recs, nil
}

// Get returns one research record by id.
func (s *Service) Get(ctx context.Context, id string) (*models.ResearchRecord, error) {
	return s.store.GetResearch(ctx, id)
}

// RelevantCaseTitles returns the titles of the first five hits, in order.
func RelevantCaseTitles(hits []models.CaseLawHit) []string {
	n := min(summaryWindow, len(hits))
	titles := make([]string, 0, n)
	for _, h := range hits[:n] {
		titles = append(titles, h.Title)
	}
	return titles
}

// LegalAuthorities returns the non-empty citations among the first five
// hits, in order.
func LegalAuthorities(hits []models.CaseLawHit) []string {
	n := min(summaryWindow, len(hits))
	citations := make([]string, 0, n)
	for _, h := range hits[:n] {
		if h.Citation != "" {
			citations = append(citations, h.Citation)
		}
	}
	return citations
}

func validate(q models.ResearchQuery) error {
	var missing []string
	if strings.TrimSpace(q.Query) == "" {
		missing = append(missing, "query")
	}
	if strings.TrimSpace(q.FirmID) == "" {
		missing = append(missing, "law_firm_id")
	}
	if strings.TrimSpace(q.UserID) == "" {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func recoverInto(err *error, source string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s client panicked: %v", source, r)
	}
}
