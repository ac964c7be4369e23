package research

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/auth"
	"github.com/shalabh-srivastava/legalsuite/internal/httpjson"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
	"github.com/shalabh-srivastava/legalsuite/internal/store"
)

// Handler holds research HTTP handlers.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Create runs a research request and returns the merged result.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var q models.ResearchQuery
	if err := httpjson.Decode(r, &q); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// A signed-in user always researches as themselves.
	if uid, ok := auth.UserID(r.Context()); ok {
		q.UserID = uid
	}

	res, err := h.svc.Conduct(r.Context(), q)
	switch {
	case errors.Is(err, ErrValidation):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		httpjson.Error(w, http.StatusInternalServerError, "Research failed: "+err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

// History returns a firm's research records, most recent first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.History(r.Context(), chi.URLParam(r, "firmID"))
	switch {
	case errors.Is(err, ErrValidation):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("listing research history", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	httpjson.Write(w, http.StatusOK, recs)
}

// Get returns a single research record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "not found")
		return
	case err != nil:
		h.logger.Error("loading research", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	httpjson.Write(w, http.StatusOK, rec)
}
