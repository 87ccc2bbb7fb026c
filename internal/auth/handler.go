package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/utils"
	"gorm.io/gorm"
)

const SessionCookie = "session"

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	User      *models.User `json:"user"`
}

type Handler struct {
	DB       *gorm.DB
	Sessions *Sessions
}

func NewHandler(db *gorm.DB, sessions *Sessions) *Handler {
	return &Handler{DB: db, Sessions: sessions}
}

// Login checks the bcrypt hash stored for the user and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, r, err, "session")
		return
	}

	var user models.User
	err := h.DB.WithContext(r.Context()).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !utils.CheckPassword(user.PasswordHash, req.Password)) {
		httpx.WriteError(w, r, httpx.Unauthorized("invalid credentials"), "session")
		return
	}
	if err != nil {
		httpx.WriteError(w, r, err, "user")
		return
	}
	if !user.IsActive {
		httpx.WriteError(w, r, httpx.Forbidden("user is inactive"), "session")
		return
	}

	token, exp, err := h.Sessions.Issue(user.ID, user.Role, user.FullName)
	if err != nil {
		httpx.WriteError(w, r, httpx.Upstream("could not issue session", err), "session")
		return
	}
	h.setCookie(w, token, exp)
	httpx.JSON(w, http.StatusOK, sessionResponse{Token: token, ExpiresAt: &exp, User: &user})
}

// Session returns the current user, re-read so deactivation takes effect.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	id, ok := UserID(r.Context())
	if !ok {
		httpx.WriteError(w, r, httpx.Unauthorized("authentication required"), "session")
		return
	}
	var user models.User
	if err := h.DB.WithContext(r.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.clearCookie(w)
			httpx.WriteError(w, r, httpx.Unauthorized("session user no longer exists"), "session")
			return
		}
		httpx.WriteError(w, r, err, "user")
		return
	}
	if !user.IsActive {
		h.clearCookie(w)
		httpx.WriteError(w, r, httpx.Forbidden("user is inactive"), "session")
		return
	}
	httpx.JSON(w, http.StatusOK, sessionResponse{User: &user})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Sessions.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Sessions.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
