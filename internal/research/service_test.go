package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/config"
	"github.com/shalabh-srivastava/legalsuite/internal/llm"
	"github.com/shalabh-srivastava/legalsuite/internal/metrics"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
	"github.com/shalabh-srivastava/legalsuite/internal/store"
)

func TestMain(m *testing.M) {
	// The genai client pulls in opencensus, whose view worker starts at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type stubAnalyzer struct {
	response string
	delay    time.Duration
	panicMsg string

	calls         atomic.Int32
	mu            sync.Mutex
	query         string
	extraContext  string
	correlationID string
	ctxErr        error
}

func (a *stubAnalyzer) GenerateLegalAnalysis(ctx context.Context, query, extraContext, correlationID string) string {
	a.calls.Add(1)
	if a.panicMsg != "" {
		panic(a.panicMsg)
	}
	time.Sleep(a.delay)
	a.mu.Lock()
	a.query, a.extraContext, a.correlationID, a.ctxErr = query, extraContext, correlationID, ctx.Err()
	a.mu.Unlock()
	return a.response
}

func (a *stubAnalyzer) Configured() bool { return true }
func (a *stubAnalyzer) Name() string     { return "stub" }

type stubSearcher struct {
	hits  []models.CaseLawHit
	delay time.Duration

	calls      atomic.Int32
	maxResults atomic.Int32
}

func (s *stubSearcher) SearchCaseLaw(_ context.Context, _ string, maxResults int) []models.CaseLawHit {
	s.calls.Add(1)
	s.maxResults.Store(int32(maxResults))
	time.Sleep(s.delay)
	return s.hits
}

func (s *stubSearcher) Configured() bool { return true }

type memStore struct {
	mu      sync.Mutex
	recs    []models.ResearchRecord
	failErr error
}

func (m *memStore) InsertResearch(_ context.Context, rec *models.ResearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.recs = append(m.recs, *rec)
	return nil
}

func (m *memStore) ListResearchByFirm(_ context.Context, firmID string, limit int) ([]models.ResearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ResearchRecord
	for _, r := range m.recs {
		if r.FirmID == firmID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) GetResearch(_ context.Context, id string) (*models.ResearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.recs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func hitsWithCitations(citations ...string) []models.CaseLawHit {
	hits := make([]models.CaseLawHit, len(citations))
	for i, c := range citations {
		hits[i] = models.CaseLawHit{Title: fmt.Sprintf("Case %d", i+1), Citation: c}
	}
	return hits
}

func newTestService(a llm.Analyzer, s *stubSearcher, st Store) *Service {
	return NewService(a, s, st, 10, 100, zap.NewNop(), metrics.New())
}

var validQuery = models.ResearchQuery{Query: "What constitutes breach of contract?", FirmID: "F1", UserID: "U1"}

func TestConductMergesAnalysisAndHits(t *testing.T) {
	a := &stubAnalyzer{response: "ANALYSIS"}
	s := &stubSearcher{hits: hitsWithCitations("C1", "", "C3")}
	st := &memStore{}
	svc := newTestService(a, s, st)

	res, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, validQuery.Query, res.Query)
	assert.Equal(t, "ANALYSIS", res.AIResponse)
	assert.Len(t, res.CaseLawHits, 3)
	assert.Equal(t, []string{"Case 1", "Case 2", "Case 3"}, res.RelevantCaseTitles)
	assert.Equal(t, []string{"C1", "C3"}, res.LegalAuthorities)
	assert.False(t, res.CreatedAt.IsZero())

	require.Len(t, st.recs, 1)
	rec := st.recs[0]
	assert.Equal(t, res.ID, rec.ID)
	assert.Equal(t, "F1", rec.FirmID)
	assert.Equal(t, "U1", rec.UserID)
	assert.Equal(t, *res, rec.ResearchResult)

	assert.Equal(t, validQuery.Query, a.query)
	assert.Equal(t, ContextNote, a.extraContext)
	assert.True(t, strings.HasPrefix(a.correlationID, "legal_research_F1_"), a.correlationID)
	assert.Equal(t, int32(10), s.maxResults.Load())
}

func TestConductSummaryUsesFirstFiveHits(t *testing.T) {
	s := &stubSearcher{hits: hitsWithCitations("C1", "C2", "", "C4", "C5", "C6", "C7", "C8")}
	svc := newTestService(&stubAnalyzer{response: "x"}, s, &memStore{})

	res, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)

	assert.Len(t, res.CaseLawHits, 8)
	assert.Equal(t, []string{"Case 1", "Case 2", "Case 3", "Case 4", "Case 5"}, res.RelevantCaseTitles)
	assert.Equal(t, []string{"C1", "C2", "C4", "C5"}, res.LegalAuthorities)
}

func TestSummaryDerivations(t *testing.T) {
	for n := 0; n <= 12; n++ {
		citations := make([]string, n)
		for i := range citations {
			if i%2 == 0 {
				citations[i] = fmt.Sprintf("C%d", i)
			}
		}
		hits := hitsWithCitations(citations...)

		titles := RelevantCaseTitles(hits)
		auths := LegalAuthorities(hits)

		assert.NotNil(t, titles)
		assert.NotNil(t, auths)
		assert.Len(t, titles, min(5, n))
		assert.LessOrEqual(t, len(auths), len(titles))
		for i, title := range titles {
			assert.Equal(t, hits[i].Title, title)
		}
		for _, c := range auths {
			assert.NotEmpty(t, c)
		}
	}
}

func TestConductCaseLawUnavailable(t *testing.T) {
	svc := newTestService(&stubAnalyzer{response: "analysis"}, &stubSearcher{hits: nil}, &memStore{})

	res, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)

	assert.Equal(t, "analysis", res.AIResponse)
	assert.NotNil(t, res.CaseLawHits)
	assert.Empty(t, res.CaseLawHits)
	assert.Empty(t, res.RelevantCaseTitles)
	assert.Empty(t, res.LegalAuthorities)
}

func TestConductWithoutLLMKey(t *testing.T) {
	a, err := llm.New(context.Background(), config.LLMConfig{Provider: config.ProviderOpenAI, MaxTokens: 10}, zap.NewNop(), nil)
	require.NoError(t, err)
	s := &stubSearcher{hits: hitsWithCitations("AIR 1998 SC 1")}
	svc := newTestService(a, s, &memStore{})

	res, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)

	assert.Equal(t, llm.NotConfiguredMessage, res.AIResponse)
	assert.Len(t, res.CaseLawHits, 1)
	assert.Equal(t, []string{"AIR 1998 SC 1"}, res.LegalAuthorities)
}

func TestConductDegradedAnalysisIsStored(t *testing.T) {
	a := &stubAnalyzer{response: llm.ErrorPrefix + "upstream exploded"}
	st := &memStore{}
	svc := newTestService(a, &stubSearcher{}, st)

	res, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.AIResponse, llm.ErrorPrefix))
	require.Len(t, st.recs, 1)
	assert.Equal(t, res.AIResponse, st.recs[0].AIResponse)
}

func TestConductValidation(t *testing.T) {
	tests := []struct {
		name string
		q    models.ResearchQuery
		want string
	}{
		{"empty query", models.ResearchQuery{FirmID: "F1", UserID: "U1"}, "query"},
		{"blank query", models.ResearchQuery{Query: " \t\n", FirmID: "F1", UserID: "U1"}, "query"},
		{"missing firm", models.ResearchQuery{Query: "q", UserID: "U1"}, "law_firm_id"},
		{"missing user", models.ResearchQuery{Query: "q", FirmID: "F1"}, "user_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &stubAnalyzer{}
			s := &stubSearcher{}
			st := &memStore{}
			svc := newTestService(a, s, st)

			res, err := svc.Conduct(context.Background(), tt.q)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, a.calls.Load())
			assert.Zero(t, s.calls.Load())
			assert.Empty(t, st.recs)
		})
	}
}

func TestConductStorageFailure(t *testing.T) {
	st := &memStore{failErr: errors.New("connection reset")}
	svc := newTestService(&stubAnalyzer{response: "x"}, &stubSearcher{}, st)

	res, err := svc.Conduct(context.Background(), validQuery)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestConductClientPanic(t *testing.T) {
	st := &memStore{}
	svc := newTestService(&stubAnalyzer{panicMsg: "boom"}, &stubSearcher{}, st)

	_, err := svc.Conduct(context.Background(), validQuery)
	assert.ErrorIs(t, err, ErrUnexpected)
	assert.Empty(t, st.recs)
}

func TestConductClientPanicCountsAsError(t *testing.T) {
	m := metrics.New()
	svc := NewService(&stubAnalyzer{}, panicSearcher{}, &memStore{}, 10, 100, zap.NewNop(), m)

	_, err := svc.Conduct(context.Background(), validQuery)
	require.ErrorIs(t, err, ErrUnexpected)

	expected := `
# HELP legalsuite_research_total Research requests by outcome.
# TYPE legalsuite_research_total counter
legalsuite_research_total{outcome="error"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "legalsuite_research_total"))
}

type panicSearcher struct{}

func (panicSearcher) SearchCaseLaw(context.Context, string, int) []models.CaseLawHit {
	panic("index exploded")
}

func TestConductRunsCallsConcurrently(t *testing.T) {
	a := &stubAnalyzer{response: "x", delay: 150 * time.Millisecond}
	s := &stubSearcher{delay: 150 * time.Millisecond}
	svc := newTestService(a, s, &memStore{})

	start := time.Now()
	_, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 290*time.Millisecond)
}

func TestConductSurvivesCallerCancellation(t *testing.T) {
	a := &stubAnalyzer{response: "x", delay: 20 * time.Millisecond}
	st := &memStore{}
	svc := newTestService(a, &stubSearcher{}, st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Conduct(ctx, validQuery)
	require.NoError(t, err)
	assert.NoError(t, a.ctxErr)
	assert.Len(t, st.recs, 1)
}

func TestConductIdenticalQueriesGetDistinctRecords(t *testing.T) {
	st := &memStore{}
	svc := newTestService(&stubAnalyzer{response: "x"}, &stubSearcher{}, st)

	r1, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)
	r2, err := svc.Conduct(context.Background(), validQuery)
	require.NoError(t, err)

	assert.NotEqual(t, r1.ID, r2.ID)
	assert.Len(t, st.recs, 2)
}

func TestHistoryMostRecentFirst(t *testing.T) {
	st := &memStore{}
	svc := newTestService(&stubAnalyzer{response: "x"}, &stubSearcher{}, st)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var tick int
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	var ids []string
	for _, q := range []string{"first", "second", "third"} {
		res, err := svc.Conduct(context.Background(), models.ResearchQuery{Query: q, FirmID: "F1", UserID: "U1"})
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}
	_, err := svc.Conduct(context.Background(), models.ResearchQuery{Query: "elsewhere", FirmID: "F2", UserID: "U9"})
	require.NoError(t, err)

	recs, err := svc.History(context.Background(), "F1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{recs[0].ID, recs[1].ID, recs[2].ID})

	empty, err := svc.History(context.Background(), "F-none")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.History(context.Background(), " ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCorrelationIDUnique(t *testing.T) {
	a, b := CorrelationID("F1"), CorrelationID("F1")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "legal_research_F1_"))
}
