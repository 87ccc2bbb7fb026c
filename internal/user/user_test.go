package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claimdesk/claims-crm/internal/auth"
	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/testutil"
	"github.com/claimdesk/claims-crm/internal/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/api/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/api/users/{id}", h.GetUser).Methods("GET")
	r.HandleFunc("/api/users/{id}", h.UpdateUser).Methods("PUT")
	r.HandleFunc("/api/users/{id}", h.DeleteUser).Methods("DELETE")
	r.HandleFunc("/api/roles", h.ListRoles).Methods("GET")
	r.HandleFunc("/api/settings", h.GetSettings).Methods("GET")
	r.HandleFunc("/api/settings", h.UpdateSettings).Methods("PUT")
	return r
}

// do sends the request as the given admin user.
func do(t *testing.T, r http.Handler, adminID uint, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: adminID, Role: models.RoleAdmin, Name: "Admin"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) models.User {
	t.Helper()
	var body struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.User
}

func reload(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u
}

func TestUserLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin, "admin-pass-1")
	router := newTestRouter(NewHandler(db))

	rec := do(t, router, admin.ID, http.MethodPost, "/api/users", map[string]any{
		"fullName": "Ravi Menon", "email": "Ravi@Example.com", "password": "first-pass", "role": "agent",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	created := decodeUser(t, rec)
	assert.Equal(t, "ravi@example.com", created.Email)
	assert.True(t, created.IsActive)

	stored := reload(t, db, created.ID)
	assert.True(t, utils.CheckPassword(stored.PasswordHash, "first-pass"))

	rec = do(t, router, admin.ID, http.MethodPost, "/api/users", map[string]any{
		"fullName": "Other", "email": "ravi@example.com", "password": "another-pass", "role": "agent",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	target := fmt.Sprintf("/api/users/%d", created.ID)
	rec = do(t, router, admin.ID, http.MethodPut, target, map[string]any{
		"fullName": "Ravi M", "email": "ravi@example.com", "role": "manager", "isActive": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeUser(t, rec)
	assert.Equal(t, "manager", updated.Role)
	assert.False(t, updated.IsActive)
	stored = reload(t, db, created.ID)
	assert.False(t, stored.IsActive)
	assert.True(t, utils.CheckPassword(stored.PasswordHash, "first-pass"), "empty password keeps the hash")

	rec = do(t, router, admin.ID, http.MethodPut, target, map[string]any{
		"fullName": "Ravi M", "email": "admin@example.com", "role": "manager",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, admin.ID, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, admin.ID, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateInactiveUser(t *testing.T) {
	db := testutil.NewDB(t)
	router := newTestRouter(NewHandler(db))

	rec := do(t, router, 1, http.MethodPost, "/api/users", map[string]any{
		"fullName": "Dormant", "email": "dormant@example.com", "password": "dormant-pass", "role": "surveyor", "isActive": false,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	u := decodeUser(t, rec)
	assert.False(t, reload(t, db, u.ID).IsActive)
}

func TestCreateUserValidation(t *testing.T) {
	router := newTestRouter(NewHandler(testutil.NewDB(t)))

	rec := do(t, router, 1, http.MethodPost, "/api/users", map[string]any{
		"fullName": "X", "email": "not-an-email", "password": "short", "role": "owner",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Details, "email")
	assert.Contains(t, body.Details, "password")
	assert.Contains(t, body.Details, "role")
}

func TestDeleteSelfIsRejected(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", models.RoleAdmin, "admin-pass-1")
	router := newTestRouter(NewHandler(db))

	rec := do(t, router, admin.ID, http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	reload(t, db, admin.ID)
}

func TestDeleteUserClearsAssignments(t *testing.T) {
	db := testutil.NewDB(t)
	agent := testutil.SeedUser(t, db, "agent@example.com", models.RoleAgent, "agent-pass-1")
	policy := testutil.SeedPolicy(t, db)
	renewal := models.PolicyRenewal{PolicyID: policy.ID, RenewalDate: policy.EndDate, Status: "pending", AssignedTo: &agent.ID}
	require.NoError(t, db.Create(&renewal).Error)
	router := newTestRouter(NewHandler(db))

	rec := do(t, router, 999, http.MethodDelete, fmt.Sprintf("/api/users/%d", agent.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored models.PolicyRenewal
	require.NoError(t, db.First(&stored, renewal.ID).Error)
	assert.Nil(t, stored.AssignedTo)
}

func TestRolesSeededOnce(t *testing.T) {
	db := testutil.NewDB(t)
	router := newTestRouter(NewHandler(db))

	for i := 0; i < 2; i++ {
		rec := do(t, router, 1, http.MethodGet, "/api/roles", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Roles []models.Role `json:"roles"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Roles, 4)
		assert.Equal(t, models.RoleAdmin, body.Roles[0].Name)
		assert.Equal(t, []string{"*"}, body.Roles[0].Permissions)
	}
	var count int64
	require.NoError(t, db.Model(&models.Role{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	db := testutil.NewDB(t)
	router := newTestRouter(NewHandler(db))

	rec := do(t, router, 1, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Settings models.Settings `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint(1), body.Settings.ID)
	assert.Equal(t, "INR", body.Settings.Currency)
	assert.Equal(t, 30, body.Settings.RenewalWindowDays)

	rec = do(t, router, 1, http.MethodPut, "/api/settings", map[string]any{
		"companyName": "Shield Motor", "currency": "usd", "renewalWindowDays": 45, "claimAutoAssign": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stored models.Settings
	require.NoError(t, db.First(&stored, 1).Error)
	assert.Equal(t, "USD", stored.Currency)
	assert.Equal(t, 45, stored.RenewalWindowDays)
	assert.True(t, stored.ClaimAutoAssign)

	rec = do(t, router, 1, http.MethodPut, "/api/settings", map[string]any{
		"currency": "USD", "renewalWindowDays": 45, "claimAutoAssign": false,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, db.First(&stored, 1).Error)
	assert.False(t, stored.ClaimAutoAssign)

	rec = do(t, router, 1, http.MethodPut, "/api/settings", map[string]any{"currency": "USD", "renewalWindowDays": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var count int64
	require.NoError(t, db.Model(&models.Settings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
