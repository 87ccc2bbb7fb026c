package lead

import (
	"errors"
	"net/http"
	"strconv"
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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSourceNotFound):
		err = httpx.NotFound(err.Error())
	case errors.Is(err, ErrUnknownSource):
		err = httpx.Validation(err.Error(), map[string]string{"sourceId": "does not exist"})
	case errors.Is(err, ErrUnknownUser):
		err = httpx.Validation(err.Error(), map[string]string{"assignedTo": "does not exist"})
	case errors.Is(err, ErrSourceInUse), errors.Is(err, ErrNumbersExhausted):
		err = httpx.Conflict(err.Error())
	}
	httpx.WriteError(w, r, err, what)
}

func (req leadRequest) toModel() (models.Lead, error) {
	category := strings.TrimSpace(strings.ToLower(req.ProductCategory))
	subtype := strings.TrimSpace(strings.ToLower(req.ProductSubtype))
	if details := validateProduct(category, subtype); details != nil {
		return models.Lead{}, httpx.Validation("invalid product", details)
	}
	return models.Lead{
		SourceID:        req.SourceID,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Status:          req.Status,
		Priority:        req.Priority,
		AssignedTo:      req.AssignedTo,
		ProductCategory: category,
		ProductSubtype:  subtype,
		Notes:           req.Notes,
	}, nil
}

// Catalog handles GET /api/leads/catalog
func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, catalog())
}

// ListLeads handles GET /api/leads?status=&priority=&sourceId=&search=
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Status:   strings.TrimSpace(q.Get("status")),
		Priority: strings.TrimSpace(q.Get("priority")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if raw := strings.TrimSpace(q.Get("sourceId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			h.fail(w, r, httpx.Validation("invalid sourceId", map[string]string{"sourceId": "must be a positive integer"}), "lead")
			return
		}
		f.SourceID = uint(id)
	}
	leads, err := h.Repository.List(h.DB.WithContext(r.Context()), f)
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"leads": leads})
}

func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	l, err := req.toModel()
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	if l.Status == "" {
		l.Status = "new"
	}
	if l.Priority == "" {
		l.Priority = "medium"
	}
	if err := h.Repository.Create(h.DB.WithContext(r.Context()), &l); err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": l})
}

func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	l, err := h.Repository.FindByID(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": l})
}

func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	var req leadRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	data, err := req.toModel()
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	l, err := h.Repository.Update(h.DB.WithContext(r.Context()), id, &data)
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"lead": l})
}

func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	if err := h.Repository.Delete(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "lead")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "lead deleted"})
}

// ListSources handles GET /api/lead-sources?active=true
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	sources, err := h.Repository.ListSources(h.DB.WithContext(r.Context()), activeOnly)
	if err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (h *Handler) CreateSource(w http.ResponseWriter, r *http.Request) {
	var req sourceRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	s := models.LeadSource{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := h.Repository.CreateSource(h.DB.WithContext(r.Context()), &s); err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"source": s})
}

func (h *Handler) GetSource(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	s, err := h.Repository.FindSource(h.DB.WithContext(r.Context()), id)
	if err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"source": s})
}

func (h *Handler) UpdateSource(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	var req sourceRequest
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	s, err := h.Repository.UpdateSource(h.DB.WithContext(r.Context()), id, &models.LeadSource{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		IsActive:    req.IsActive == nil || *req.IsActive,
	})
	if err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"source": s})
}

// DeleteSource handles DELETE /api/lead-sources/{id}; 409 while leads use it.
func (h *Handler) DeleteSource(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	if err := h.Repository.DeleteSource(h.DB.WithContext(r.Context()), id); err != nil {
		h.fail(w, r, err, "lead source")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "lead source deleted"})
}
