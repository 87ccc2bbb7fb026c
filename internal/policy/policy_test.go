package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/testutil"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/policy-holders", h.ListHolders).Methods("GET")
	r.HandleFunc("/api/policy-holders", h.CreateHolder).Methods("POST")
	r.HandleFunc("/api/policy-holders/{id}", h.GetHolder).Methods("GET")
	r.HandleFunc("/api/policy-holders/{id}", h.UpdateHolder).Methods("PUT")
	r.HandleFunc("/api/policy-holders/{id}", h.DeleteHolder).Methods("DELETE")
	r.HandleFunc("/api/vehicles", h.ListVehicles).Methods("GET")
	r.HandleFunc("/api/vehicles", h.CreateVehicle).Methods("POST")
	r.HandleFunc("/api/vehicles/{id}", h.GetVehicle).Methods("GET")
	r.HandleFunc("/api/vehicles/{id}", h.UpdateVehicle).Methods("PUT")
	r.HandleFunc("/api/vehicles/{id}", h.DeleteVehicle).Methods("DELETE")
	r.HandleFunc("/api/policies", h.ListPolicies).Methods("GET")
	r.HandleFunc("/api/policies", h.CreatePolicy).Methods("POST")
	r.HandleFunc("/api/policies/{id}", h.GetPolicy).Methods("GET")
	r.HandleFunc("/api/policies/{id}", h.UpdatePolicy).Methods("PUT")
	r.HandleFunc("/api/policies/{id}", h.DeletePolicy).Methods("DELETE")
	return r
}

func do(t *testing.T, r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, &buf))
	return rec
}

func created[T any](t *testing.T, rec *httptest.ResponseRecorder, key string) T {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	var v T
	require.NoError(t, json.Unmarshal(body[key], &v))
	return v
}

func TestPolicyLifecycle(t *testing.T) {
	router := newTestRouter(NewHandler(testutil.NewDB(t)))

	holder := created[models.PolicyHolder](t, do(t, router, http.MethodPost, "/api/policy-holders",
		map[string]any{"name": "Meera Iyer", "email": "meera@example.com", "idNumber": "ABCDE1234F"}), "policyHolder")
	vehicle := created[models.Vehicle](t, do(t, router, http.MethodPost, "/api/vehicles",
		map[string]any{"registration": "mh12ab1234", "make": "Maruti", "model": "Swift", "year": 2021, "policyHolderId": holder.ID}), "vehicle")
	assert.Equal(t, "MH12AB1234", vehicle.Registration)

	payload := map[string]any{
		"policyNumber":   "POL-2025-0001",
		"policyHolderId": holder.ID,
		"vehicleId":      vehicle.ID,
		"policyType":     "comprehensive",
		"startDate":      "2025-01-01",
		"endDate":        "2026-01-01",
		"premium":        14500,
		"coverageAmount": 650000,
	}
	policy := created[models.Policy](t, do(t, router, http.MethodPost, "/api/policies", payload), "policy")
	assert.Equal(t, "active", policy.Status)

	rec := do(t, router, http.MethodPost, "/api/policies", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	got := created[models.Policy](t, do(t, router, http.MethodGet, fmt.Sprintf("/api/policies/%d", policy.ID), nil), "policy")
	require.NotNil(t, got.PolicyHolder)
	assert.Equal(t, "Meera Iyer", got.PolicyHolder.Name)
	require.NotNil(t, got.Vehicle)

	payload["status"] = "lapsed"
	updated := created[models.Policy](t, do(t, router, http.MethodPut, fmt.Sprintf("/api/policies/%d", policy.ID), payload), "policy")
	assert.Equal(t, "lapsed", updated.Status)

	list := created[[]models.Policy](t, do(t, router, http.MethodGet, "/api/policies?status=lapsed", nil), "policies")
	assert.Len(t, list, 1)
	list = created[[]models.Policy](t, do(t, router, http.MethodGet, "/api/policies?status=active", nil), "policies")
	assert.Empty(t, list)

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/api/policy-holders/%d", holder.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/api/vehicles/%d", vehicle.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/api/policies/%d", policy.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodDelete, fmt.Sprintf("/api/policy-holders/%d", holder.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodGet, fmt.Sprintf("/api/policy-holders/%d", holder.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePolicyValidation(t *testing.T) {
	router := newTestRouter(NewHandler(testutil.NewDB(t)))

	rec := do(t, router, http.MethodPost, "/api/policies", map[string]any{
		"policyNumber": "P-1", "policyHolderId": 42, "startDate": "2025-01-01", "endDate": "2026-01-01",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation", body.Code)
	assert.Contains(t, body.Details, "policyHolderId")

	rec = do(t, router, http.MethodPost, "/api/policies", map[string]any{
		"policyNumber": "P-1", "policyHolderId": 1, "startDate": "2026-01-01", "endDate": "2025-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/vehicles?policyHolderId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
