package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/claimdesk/claims-crm/internal/auth"
	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/utils"
	"gorm.io/gorm"
)

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, ErrNotFound):
		err = httpx.NotFound(err.Error())
	case errors.Is(err, ErrEmailTaken):
		err = httpx.Conflict(err.Error())
	}
	httpx.WriteError(w, r, err, what)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repository.List(h.DB.WithContext(r.Context()))
	if err != nil {
		h.fail(w, r, err, "user")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "user")
		return
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, httpx.Upstream("could not hash password", err), "user")
		return
	}
	u := models.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     req.IsActive == nil || *req.IsActive,
	}
	if err := h.Repository.Create(h.DB.WithContext(r.Context()), &u); err != nil {
		h.fail(w, r, err, "user")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "user")
		return
	}
	u, err := h.Repository.FindByID(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "user")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "user")
		return
	}
	var req updateUserRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "user")
		return
	}

	fields := map[string]any{
		"full_name": strings.TrimSpace(req.FullName),
		"email":     strings.ToLower(strings.TrimSpace(req.Email)),
		"role":      req.Role,
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			h.fail(w, r, httpx.Upstream("could not hash password", err), "user")
			return
		}
		fields["password_hash"] = hash
	}

	u, err := h.Repository.Update(h.DB.WithContext(r.Context()), id, fields)
	if err != nil {
		h.fail(w, r, err, "user")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "user")
		return
	}
	if self, ok := auth.UserID(r.Context()); ok && self == id {
		h.fail(w, r, httpx.Validation("you cannot delete your own account", nil), "user")
		return
	}
	if err := h.Repository.Delete(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "user")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// ListRoles handles GET /api/roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Repository.Roles(h.DB.WithContext(r.Context()))
	if err != nil {
		h.fail(w, r, err, "role")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Repository.Settings(h.DB.WithContext(r.Context()))
	if err != nil {
		h.fail(w, r, err, "settings")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": s})
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "settings")
		return
	}
	db := h.DB.WithContext(r.Context())
	s, err := h.Repository.Settings(db)
	if err != nil {
		h.fail(w, r, err, "settings")
		return
	}
	s.CompanyName = strings.TrimSpace(req.CompanyName)
	s.Currency = strings.ToUpper(req.Currency)
	s.RenewalWindowDays = req.RenewalWindowDays
	s.SupportEmail = strings.TrimSpace(req.SupportEmail)
	s.ClaimAutoAssign = req.ClaimAutoAssign
	if err := h.Repository.SaveSettings(db, s); err != nil {
		h.fail(w, r, err, "settings")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": s})
}
