package policy

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

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
	case errors.Is(err, ErrHolderNotFound), errors.Is(err, ErrVehicleNotFound), errors.Is(err, ErrPolicyNotFound):
		err = httpx.NotFound(err.Error())
	case errors.Is(err, ErrInUse):
		err = httpx.Conflict(what + " is referenced by other records")
	}
	httpx.WriteError(w, r, err, what)
}

// referenced turns a missing referenced record into a validation error.
func referenced(err error) error {
	switch {
	case errors.Is(err, ErrHolderNotFound):
		return httpx.Validation("policy holder does not exist", map[string]string{"policyHolderId": "does not exist"})
	case errors.Is(err, ErrVehicleNotFound):
		return httpx.Validation("vehicle does not exist", map[string]string{"vehicleId": "does not exist"})
	}
	return err
}

// ---- policy holders ----

func (req holderRequest) toModel() models.PolicyHolder {
	return models.PolicyHolder{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		IDNumber: strings.TrimSpace(req.IDNumber),
	}
}

func (h *Handler) ListHolders(w http.ResponseWriter, r *http.Request) {
	holders, err := h.Repository.ListHolders(h.DB.WithContext(r.Context()))
	if err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policyHolders": holders})
}

func (h *Handler) CreateHolder(w http.ResponseWriter, r *http.Request) {
	var req holderRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	holder := req.toModel()
	if err := h.Repository.CreateHolder(h.DB.WithContext(r.Context()), &holder); err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policyHolder": holder})
}

func (h *Handler) GetHolder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	holder, err := h.Repository.FindHolder(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policyHolder": holder})
}

func (h *Handler) UpdateHolder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	var req holderRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	data := req.toModel()
	holder, err := h.Repository.UpdateHolder(h.DB.WithContext(r.Context()), id, &data)
	if err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policyHolder": holder})
}

func (h *Handler) DeleteHolder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	if err := h.Repository.DeleteHolder(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "policy holder")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "policy holder deleted"})
}

// ---- vehicles ----

func (req vehicleRequest) toModel() models.Vehicle {
	return models.Vehicle{
		Registration:   strings.ToUpper(strings.TrimSpace(req.Registration)),
		Make:           strings.TrimSpace(req.Make),
		Model:          strings.TrimSpace(req.Model),
		Year:           req.Year,
		PolicyHolderID: req.PolicyHolderID,
	}
}

// ListVehicles handles GET /api/vehicles?policyHolderId=
func (h *Handler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	holderID, err := queryID(r, "policyHolderId")
	if err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	vehicles, err := h.Repository.ListVehicles(h.DB.WithContext(r.Context()), holderID)
	if err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vehicles": vehicles})
}

func (h *Handler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	v := req.toModel()
	if err := h.Repository.CreateVehicle(h.DB.WithContext(r.Context()), &v); err != nil {
		h.fail(w, r, referenced(err), "vehicle")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vehicle": v})
}

func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	v, err := h.Repository.FindVehicle(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vehicle": v})
}

func (h *Handler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	var req vehicleRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	data := req.toModel()
	v, err := h.Repository.UpdateVehicle(h.DB.WithContext(r.Context()), id, &data)
	if errors.Is(err, ErrHolderNotFound) {
		err = referenced(err)
	}
	if err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vehicle": v})
}

func (h *Handler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	if err := h.Repository.DeleteVehicle(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "vehicle")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "vehicle deleted"})
}

// ---- policies ----

func (req policyRequest) toModel() (models.Policy, error) {
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return models.Policy{}, httpx.Validation("invalid startDate", map[string]string{"startDate": err.Error()})
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return models.Policy{}, httpx.Validation("invalid endDate", map[string]string{"endDate": err.Error()})
	}
	if !end.After(start) {
		return models.Policy{}, httpx.Validation("endDate must be after startDate", map[string]string{"endDate": "must be after startDate"})
	}
	return models.Policy{
		PolicyNumber:   strings.TrimSpace(req.PolicyNumber),
		PolicyHolderID: req.PolicyHolderID,
		VehicleID:      req.VehicleID,
		PolicyType:     strings.TrimSpace(req.PolicyType),
		StartDate:      start,
		EndDate:        end,
		Premium:        req.Premium,
		CoverageAmount: req.CoverageAmount,
		Status:         strings.TrimSpace(req.Status),
	}, nil
}

// ListPolicies handles GET /api/policies?status=&policyHolderId=
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	holderID, err := queryID(r, "policyHolderId")
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	policies, err := h.Repository.ListPolicies(h.DB.WithContext(r.Context()), PolicyFilter{
		Status:         strings.TrimSpace(r.URL.Query().Get("status")),
		PolicyHolderID: holderID,
	})
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policies": policies})
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	p, err := req.toModel()
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	if err := h.Repository.CreatePolicy(h.DB.WithContext(r.Context()), &p); err != nil {
		h.fail(w, r, referenced(err), "policy")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policy": p})
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	p, err := h.Repository.FindPolicy(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policy": p})
}

func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	var req policyRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	data, err := req.toModel()
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	p, err := h.Repository.UpdatePolicy(h.DB.WithContext(r.Context()), id, &data)
	if errors.Is(err, ErrHolderNotFound) || errors.Is(err, ErrVehicleNotFound) {
		err = referenced(err)
	}
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"policy": p})
}

func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	if err := h.Repository.DeletePolicy(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "policy")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "policy deleted"})
}

func queryID(r *http.Request, name string) (uint, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, httpx.Validation("invalid "+name, map[string]string{name: "must be a positive integer"})
	}
	return uint(id), nil
}
