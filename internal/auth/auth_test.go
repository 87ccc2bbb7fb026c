package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T, db *gorm.DB) (*mux.Router, *Sessions) {
	t.Helper()
	sessions, err := NewSessions(testSecret, time.Hour, false)
	require.NoError(t, err)
	h := NewHandler(db, sessions)

	r := mux.NewRouter()
	r.HandleFunc("/api/auth/login", h.Login).Methods("POST")
	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.Authenticate)
	api.HandleFunc("/auth/session", h.Session).Methods("GET")
	api.HandleFunc("/auth/logout", h.Logout).Methods("POST")
	api.Handle("/admin", RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))).Methods("GET")
	return r, sessions
}

func login(t *testing.T, r http.Handler, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	return nil
}

func TestLoginAndSession(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db, "agent@example.com", models.RoleAgent, "correct-horse")
	router, _ := newTestRouter(t, db)

	rec := login(t, router, "Agent@Example.com", "correct-horse")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, user.ID, body.User.ID)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, body.Token, cookie.Value)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), "agent@example.com")
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.Header.Set("Authorization", "Bearer "+body.Token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		cleared := sessionCookie(rec)
		require.NotNil(t, cleared)
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	})
}

func TestLoginRejections(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, "agent@example.com", models.RoleAgent, "correct-horse")
	inactive := testutil.SeedUser(t, db, "gone@example.com", models.RoleAgent, "correct-horse")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	router, _ := newTestRouter(t, db)

	assert.Equal(t, http.StatusUnauthorized, login(t, router, "agent@example.com", "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, router, "nobody@example.com", "correct-horse").Code)
	assert.Equal(t, http.StatusForbidden, login(t, router, "gone@example.com", "correct-horse").Code)
	assert.Equal(t, http.StatusBadRequest, login(t, router, "not-an-email", "x").Code)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	db := testutil.NewDB(t)
	router, sessions := newTestRouter(t, db)

	other, err := NewSessions("another-secret-another-secret-xx", time.Hour, false)
	require.NoError(t, err)
	forged, _, err := other.Issue(1, models.RoleAdmin, "Mallory")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString(sessions.secret)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not-a-jwt",
		"forged":  "Bearer " + forged,
		"expired": "Bearer " + expiredToken,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
		})
	}
}

func TestSessionForDeactivatedUser(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.SeedUser(t, db, "agent@example.com", models.RoleAgent, "correct-horse")
	router, sessions := newTestRouter(t, db)

	token, _, err := sessions.Issue(user.ID, user.Role, user.FullName)
	require.NoError(t, err)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestIssueAndParse(t *testing.T) {
	sessions, err := NewSessions(testSecret, time.Minute, true)
	require.NoError(t, err)
	token, exp, err := sessions.Issue(7, models.RoleManager, "Meera")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := sessions.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, models.RoleManager, claims.Role)
	assert.Equal(t, "Meera", claims.Name)

	_, err = NewSessions("", time.Minute, false)
	assert.Error(t, err)
}

func TestAuthenticateUsesCurrentRole(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin, "correct-horse")
	router, sessions := newTestRouter(t, db)
	token, _, err := sessions.Issue(admin.ID, admin.Role, admin.FullName)
	require.NoError(t, err)

	call := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, call())

	require.NoError(t, db.Model(admin).Update("role", models.RoleAgent).Error)
	assert.Equal(t, http.StatusForbidden, call(), "demoted user keeps an admin token")

	require.NoError(t, db.Delete(admin).Error)
	assert.Equal(t, http.StatusUnauthorized, call())
}
