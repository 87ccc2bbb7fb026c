package payment

import (
	"errors"

	"github.com/claimdesk/claims-crm/internal/models"
	"gorm.io/gorm"
)

var ErrClaimNotFound = errors.New("claim not found")

// Payment status values.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Repository reads the payments recorded against claims. Payments are
// written by the settlement system, not through this API.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// WithDB returns a copy bound to db (a request-scoped handle or a tx).
func (r *Repository) WithDB(db *gorm.DB) *Repository {
	if db == nil {
		db = r.DB
	}
	return &Repository{DB: db}
}

// ListByClaimID returns the claim's payments oldest first.
func (r *Repository) ListByClaimID(claimID uint) ([]models.Payment, error) {
	if err := r.claimExists(claimID); err != nil {
		return nil, err
	}
	payments := []models.Payment{}
	err := r.DB.
		Where("claim_id = ?", claimID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

// SumByClaimID adds up payment_amount for the claim, optionally limited to one status.
func (r *Repository) SumByClaimID(claimID uint, status string) (float64, error) {
	var total float64
	q := r.DB.Model(&models.Payment{}).Where("claim_id = ?", claimID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Select("COALESCE(SUM(payment_amount), 0)").Scan(&total).Error
	return total, err
}

func (r *Repository) claimExists(claimID uint) error {
	var count int64
	if err := r.DB.Model(&models.Claim{}).Where("id = ?", claimID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrClaimNotFound
	}
	return nil
}
