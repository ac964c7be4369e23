// Package auth handles staff login sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shalabh-srivastava/legalsuite/internal/httpjson"
	"github.com/shalabh-srivastava/legalsuite/internal/models"
	"github.com/shalabh-srivastava/legalsuite/internal/store"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore looks up staff users.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Sessions creates, resolves and destroys login sessions.
type Sessions interface {
	Create(ctx context.Context, userID string) (string, error)
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	sessions Sessions
	logger   *zap.Logger
}

func NewHandler(users UserStore, sessions Sessions, logger *zap.Logger) *Handler {
	return &Handler{users: users, sessions: sessions, logger: logger}
}

// Authenticate checks email and password and returns the user. Lookup
// failures other than an unknown email are returned as-is.
func (h *Handler) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := h.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	user.Password = ""
	return user, nil
}

// Login authenticates a user and creates a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		httpjson.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("authenticating user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	sid, err := h.sessions.Create(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("creating session", zap.String("user_id", user.ID), zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "session creation failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL() / time.Second),
	})
	h.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("firm_id", user.FirmID))
	httpjson.Write(w, http.StatusOK, user)
}

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("deleting session", zap.Error(err))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the currently authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil || user == nil {
		httpjson.Error(w, http.StatusNotFound, "user not found")
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}
