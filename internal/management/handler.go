// Package management serves the firm, staff and case CRUD endpoints.
package management

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shalabh-srivastava/legalsuite/internal/httpjson"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
	"github.com/shalabh-srivastava/legalsuite/internal/store"
)

// DefaultRole is assigned to users created without one.
const DefaultRole = "associate"

var validStatus = map[string]bool{
	models.CaseActive:  true,
	models.CaseClosed:  true,
	models.CasePending: true,
}

// FirmStore persists law firms.
type FirmStore interface {
	CreateFirm(ctx context.Context, f models.FirmCreate) (*models.Firm, error)
	ListFirms(ctx context.Context) ([]models.Firm, error)
}

// UserStore persists staff users.
type UserStore interface {
	CreateUser(ctx context.Context, u models.UserCreate, hashedPassword string) (*models.User, error)
	ListUsersByFirm(ctx context.Context, firmID string) ([]models.User, error)
}

// CaseStore persists cases.
type CaseStore interface {
	CreateCase(ctx context.Context, c *models.Case) error
	ListCasesByFirm(ctx context.Context, firmID string) ([]models.Case, error)
	GetCase(ctx context.Context, id string) (*models.Case, error)
	UpdateCase(ctx context.Context, id string, upd models.CaseUpdate, now time.Time) (*models.Case, error)
}

// Handler holds management HTTP handlers.
type Handler struct {
	firms  FirmStore
	users  UserStore
	cases  CaseStore
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewHandler(firms FirmStore, users UserStore, cases CaseStore, logger *zap.Logger) *Handler {
	return &Handler{
		firms:  firms,
		users:  users,
		cases:  cases,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// ── Firms ─────────────────────────────────────────────────

func (h *Handler) CreateFirm(w http.ResponseWriter, r *http.Request) {
	var req models.FirmCreate
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpjson.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	firm, err := h.firms.CreateFirm(r.Context(), req)
	if err != nil {
		h.serverError(w, "creating firm", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, firm)
}

func (h *Handler) ListFirms(w http.ResponseWriter, r *http.Request) {
	firms, err := h.firms.ListFirms(r.Context())
	if err != nil {
		h.serverError(w, "listing firms", err)
		return
	}
	if firms == nil {
		firms = []models.Firm{}
	}
	httpjson.Write(w, http.StatusOK, firms)
}

// ── Users ─────────────────────────────────────────────────

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UserCreate
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirmID == "" || req.Name == "" || req.Email == "" {
		httpjson.Error(w, http.StatusBadRequest, "law_firm_id, name, and email are required")
		return
	}
	if req.Role == "" {
		req.Role = DefaultRole
	}

	var hashed string
	if req.Password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.serverError(w, "hashing password", err)
			return
		}
		hashed = string(b)
	}

	user, err := h.users.CreateUser(r.Context(), req, hashed)
	if errors.Is(err, store.ErrConflict) {
		httpjson.Error(w, http.StatusConflict, "user already exists")
		return
	}
	if err != nil {
		h.serverError(w, "creating user", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsersByFirm(r.Context(), chi.URLParam(r, "firmID"))
	if err != nil {
		h.serverError(w, "listing users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, users)
}

// ── Cases ─────────────────────────────────────────────────

func (h *Handler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req models.CaseCreate
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirmID == "" || req.CaseNumber == "" || req.CaseTitle == "" {
		httpjson.Error(w, http.StatusBadRequest, "law_firm_id, case_number, and case_title are required")
		return
	}

	now := h.now().UTC()
	c := &models.Case{
		ID:                h.newID(),
		FirmID:            req.FirmID,
		CaseNumber:        req.CaseNumber,
		CaseTitle:         req.CaseTitle,
		CaseType:          req.CaseType,
		CourtJurisdiction: req.CourtJurisdiction,
		FilingDate:        req.FilingDate,
		Status:            models.CaseActive,
		AssignedAttorney:  req.AssignedAttorney,
		ClientName:        req.ClientName,
		Description:       req.Description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := h.cases.CreateCase(r.Context(), c); err != nil {
		h.serverError(w, "creating case", err)
		return
	}
	httpjson.Write(w, http.StatusCreated, c)
}

func (h *Handler) ListCases(w http.ResponseWriter, r *http.Request) {
	// /api/cases/{id} carries a firm id on GET and a case id on PUT.
	cases, err := h.cases.ListCasesByFirm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serverError(w, "listing cases", err)
		return
	}
	if cases == nil {
		cases = []models.Case{}
	}
	httpjson.Write(w, http.StatusOK, cases)
}

func (h *Handler) GetCase(w http.ResponseWriter, r *http.Request) {
	c, err := h.cases.GetCase(r.Context(), chi.URLParam(r, "caseID"))
	if errors.Is(err, store.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Case not found")
		return
	}
	if err != nil {
		h.serverError(w, "loading case", err)
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

// UpdateCase applies a partial update; absent fields are left unchanged.
func (h *Handler) UpdateCase(w http.ResponseWriter, r *http.Request) {
	var upd models.CaseUpdate
	if err := httpjson.Decode(r, &upd); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if upd.Status != nil && !validStatus[*upd.Status] {
		httpjson.Error(w, http.StatusBadRequest, "status must be one of active, closed, pending")
		return
	}

	c, err := h.cases.UpdateCase(r.Context(), chi.URLParam(r, "id"), upd, h.now().UTC())
	if errors.Is(err, store.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Case not found")
		return
	}
	if err != nil {
		h.serverError(w, "updating case", err)
		return
	}
	httpjson.Write(w, http.StatusOK, c)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	httpjson.Error(w, http.StatusInternalServerError, "database error")
}
