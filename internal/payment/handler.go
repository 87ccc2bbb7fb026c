package payment

import (
	"errors"
	"net/http"

	"github.com/claimdesk/claims-crm/internal/httpx"
	"github.com/claimdesk/claims-crm/internal/models"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// Summary is the payment ledger of one claim.
type Summary struct {
	Payments     []models.Payment `json:"payments"`
	TotalPaid    float64          `json:"totalPaid"`
	TotalPending float64          `json:"totalPending"`
	Outstanding  *float64         `json:"outstanding"`
}

// List handles GET /api/claims/{id}/payments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.WriteError(w, r, err, "payment")
		return
	}
	db := h.Repo.DB.WithContext(r.Context())
	repo := h.Repo.WithDB(db)

	payments, err := repo.ListByClaimID(id)
	if err != nil {
		if errors.Is(err, ErrClaimNotFound) {
			err = httpx.NotFound(err.Error())
		}
		httpx.WriteError(w, r, err, "payment")
		return
	}
	paid, err := repo.SumByClaimID(id, StatusPaid)
	if err != nil {
		httpx.WriteError(w, r, err, "payment")
		return
	}
	pending, err := repo.SumByClaimID(id, StatusPending)
	if err != nil {
		httpx.WriteError(w, r, err, "payment")
		return
	}

	s := Summary{Payments: payments, TotalPaid: paid, TotalPending: pending}

	// outstanding is only known once an amount has been approved
	var claim models.Claim
	if err := db.Select("approved_amount").First(&claim, id).Error; err != nil {
		httpx.WriteError(w, r, err, "claim")
		return
	}
	if claim.ApprovedAmount != nil {
		left := *claim.ApprovedAmount - paid
		s.Outstanding = &left
	}
	httpx.JSON(w, http.StatusOK, s)
}
