package surveyor

import (
	"errors"
	"net/http"
	"strings"

	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/models"
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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		err = httpx.NotFound(err.Error())
	case errors.Is(err, ErrHasAssigned):
		err = httpx.Validation("cannot delete surveyor with assigned claims", nil)
	}
	httpx.WriteError(w, r, err, "surveyor")
}

func (req surveyorRequest) toModel() models.Surveyor {
	return models.Surveyor{
		Name:            strings.TrimSpace(req.Name),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Specialization:  strings.TrimSpace(req.Specialization),
		LicenseNumber:   strings.TrimSpace(req.LicenseNumber),
		YearsExperience: req.YearsExperience,
		Address:         strings.TrimSpace(req.Address),
	}
}

// ListSurveyors handles GET /api/surveyors?search=
func (h *Handler) ListSurveyors(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repository.List(h.DB.WithContext(r.Context()), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"surveyors": list})
}

func (h *Handler) CreateSurveyor(w http.ResponseWriter, r *http.Request) {
	var req surveyorRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	s := req.toModel()
	if err := h.Repository.Create(h.DB.WithContext(r.Context()), &s); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"surveyor": s})
}

func (h *Handler) GetSurveyor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.Repository.FindByID(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"surveyor": s})
}

func (h *Handler) UpdateSurveyor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req surveyorRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	data := req.toModel()
	s, err := h.Repository.Update(h.DB.WithContext(r.Context()), id, &data)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"surveyor": s})
}

// DeleteSurveyor handles DELETE /api/surveyors/{id}; blocked with 400 while
// any claim is assigned to the surveyor.
func (h *Handler) DeleteSurveyor(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Repository.Delete(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "surveyor deleted"})
}

// AssignedClaims handles GET /api/surveyors/{id}/claims
func (h *Handler) AssignedClaims(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	claims, err := h.Repository.AssignedClaims(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"claims": claims})
}
