package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	CtxUserID  ctxKey = "userID"
	CtxIsAdmin ctxKey = "isAdmin"
	CtxRole    ctxKey = "role"
	CtxName    ctxKey = "name"
)

// Authenticate accepts the session cookie or an Authorization: Bearer header.
// The user is re-read on every request so deactivation and role changes apply
// before the token expires.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		raw := tokenFromRequest(r)
		if raw == "" {
			httpx.WriteError(w, r, httpx.Unauthorized("authentication required"), "session")
			return
		}
		claims, err := h.Sessions.Parse(raw)
		if err != nil {
			httpx.WriteError(w, r, httpx.Unauthorized("invalid session"), "session")
			return
		}

		var user models.User
		if err := h.DB.WithContext(r.Context()).Select("id", "full_name", "role", "is_active").First(&user, claims.UserID).Error; err != nil {
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
		claims.Role = user.Role
		claims.Name = user.FullName
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, _ := r.Context().Value(CtxIsAdmin).(bool); !ok {
			httpx.WriteError(w, r, httpx.Forbidden("admin only"), "session")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	ctx = context.WithValue(ctx, CtxUserID, c.UserID)
	ctx = context.WithValue(ctx, CtxIsAdmin, c.Role == models.RoleAdmin)
	ctx = context.WithValue(ctx, CtxRole, c.Role)
	return context.WithValue(ctx, CtxName, c.Name)
}

// UserID returns the authenticated user id, if any.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(CtxUserID).(uint)
	return id, ok && id != 0
}

// UserName returns the display name of the authenticated user or "system".
func UserName(ctx context.Context) string {
	if name, _ := ctx.Value(CtxName).(string); name != "" {
		return name
	}
	return "system"
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}
