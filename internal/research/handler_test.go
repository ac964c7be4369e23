package research

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/auth"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
)

func newTestRouter(svc *Service) http.Handler {
	h := NewHandler(svc, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/api/legal-research", h.Create)
	r.Get("/api/research-history/{firmID}", h.History)
	r.Get("/api/research/{id}", h.Get)
	return r
}

func TestHandlerCreate(t *testing.T) {
	st := &memStore{}
	svc := newTestService(&stubAnalyzer{response: "ANALYSIS"}, &stubSearcher{hits: hitsWithCitations("C1", "", "C3")}, st)
	router := newTestRouter(svc)

	body := `{"query":"What constitutes breach of contract?","law_firm_id":"F1","user_id":"U1"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/legal-research", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ANALYSIS", got["ai_response"])
	assert.Equal(t, []any{"C1", "C3"}, got["legal_authorities"])
	assert.Len(t, got["case_law_results"], 3)
	assert.NotEmpty(t, got["id"])
	assert.Contains(t, got, "created_at")
}

func TestHandlerCreateUsesSessionUser(t *testing.T) {
	st := &memStore{}
	router := newTestRouter(newTestService(&stubAnalyzer{response: "x"}, &stubSearcher{}, st))

	req := httptest.NewRequest(http.MethodPost, "/api/legal-research", strings.NewReader(`{"query":"q","law_firm_id":"F1"}`))
	req = req.WithContext(auth.WithUserID(req.Context(), "U-session"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, st.recs, 1)
	assert.Equal(t, "U-session", st.recs[0].UserID)
}

func TestHandlerCreateSessionUserOverridesBody(t *testing.T) {
	st := &memStore{}
	router := newTestRouter(newTestService(&stubAnalyzer{response: "x"}, &stubSearcher{}, st))

	req := httptest.NewRequest(http.MethodPost, "/api/legal-research", strings.NewReader(`{"query":"q","law_firm_id":"F1","user_id":"U-other"}`))
	req = req.WithContext(auth.WithUserID(req.Context(), "U-session"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, st.recs, 1)
	assert.Equal(t, "U-session", st.recs[0].UserID)
}

func TestHandlerCreateErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		store    *memStore
		wantCode int
		wantErr  string
	}{
		{"bad json", `{"query":`, &memStore{}, http.StatusBadRequest, "invalid request body"},
		{"blank query", `{"query":"  ","law_firm_id":"F1","user_id":"U1"}`, &memStore{}, http.StatusBadRequest, "query"},
		{"storage down", `{"query":"q","law_firm_id":"F1","user_id":"U1"}`, &memStore{failErr: assert.AnError}, http.StatusInternalServerError, "Research failed: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(newTestService(&stubAnalyzer{response: "x"}, &stubSearcher{}, tt.store))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/legal-research", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			var got map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Contains(t, got["error"], tt.wantErr)
		})
	}
}

func TestHandlerHistoryAndGet(t *testing.T) {
	st := &memStore{}
	svc := newTestService(&stubAnalyzer{response: "x"}, &stubSearcher{}, st)
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research-history/F1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	res, err := svc.Conduct(t.Context(), models.ResearchQuery{Query: "q", FirmID: "F1", UserID: "U1"})
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research-history/F1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var hist []models.ResearchRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	require.Len(t, hist, 1)
	assert.Equal(t, res.ID, hist[0].ID)
	assert.Equal(t, "F1", hist[0].FirmID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research/"+res.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/research/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
