package renewal

import (
	"errors"
	"time"

	"github.com/claimdesk/claims-crm/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("renewal not found")
	ErrPolicyNotFound   = errors.New("policy does not exist")
	ErrUserNotAvailable = errors.New("user does not exist or is inactive")
	ErrSameStatus       = errors.New("renewal already has this status")
	ErrStatusChanged    = errors.New("renewal status was changed concurrently")
)

// contactTypes are the activities that count as contacting the customer.
var contactTypes = map[string]bool{
	"call":     true,
	"email":    true,
	"meeting":  true,
	"whatsapp": true,
}

type DueFilter struct {
	From   time.Time
	To     time.Time
	Status string
}

type Repository interface {
	ListDue(db *gorm.DB, f DueFilter) ([]models.PolicyRenewal, error)
	Create(db *gorm.DB, r *models.PolicyRenewal) error
	Detail(db *gorm.DB, id uint) (*Detail, error)
	Assign(db *gorm.DB, id uint, userID *uint) (*models.PolicyRenewal, error)
	ChangeStatus(db *gorm.DB, id uint, newStatus string, changedBy *uint) (*models.RenewalStatusHistory, error)
	LogActivity(db *gorm.DB, a *models.RenewalActivity) error
	ListActivities(db *gorm.DB, id uint) ([]models.RenewalActivity, error)
}

type repositoryImpl struct {
	now func() time.Time
}

func NewRepository() Repository {
	return &repositoryImpl{now: time.Now}
}

// ListDue returns renewals dated within [From, To), soonest first.
func (r *repositoryImpl) ListDue(db *gorm.DB, f DueFilter) ([]models.PolicyRenewal, error) {
	renewals := []models.PolicyRenewal{}
	q := db.Preload("Policy.PolicyHolder").
		Where("renewal_date >= ? AND renewal_date < ?", f.From, f.To).
		Order("renewal_date ASC, id ASC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	err := q.Find(&renewals).Error
	return renewals, err
}

func (r *repositoryImpl) Create(db *gorm.DB, renewal *models.PolicyRenewal) error {
	var policy models.Policy
	if err := db.First(&policy, renewal.PolicyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPolicyNotFound
		}
		return err
	}
	if renewal.AssignedTo != nil {
		if err := activeUser(db, *renewal.AssignedTo); err != nil {
			return err
		}
	}
	if renewal.RenewalDate.IsZero() {
		renewal.RenewalDate = policy.EndDate
	}
	renewal.OriginalPremium = policy.Premium
	renewal.Status = models.RenewalStatusPending
	return db.Create(renewal).Error
}

func (r *repositoryImpl) Detail(db *gorm.DB, id uint) (*Detail, error) {
	d := &Detail{History: []models.RenewalStatusHistory{}, Activities: []models.RenewalActivity{}}
	if err := db.Preload("Policy.PolicyHolder").First(&d.Renewal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := db.Where("renewal_id = ?", id).Order("changed_at ASC, id ASC").Find(&d.History).Error; err != nil {
		return nil, err
	}
	if err := db.Where("renewal_id = ?", id).Order("activity_date DESC, id DESC").Find(&d.Activities).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// Assign sets or clears the responsible user. The user must exist and be active.
func (r *repositoryImpl) Assign(db *gorm.DB, id uint, userID *uint) (*models.PolicyRenewal, error) {
	if userID != nil {
		if err := activeUser(db, *userID); err != nil {
			return nil, err
		}
	}
	res := db.Model(&models.PolicyRenewal{}).Where("id = ?", id).
		Updates(map[string]any{"assigned_to": userID, "updated_at": r.now()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var renewal models.PolicyRenewal
	if err := db.First(&renewal, id).Error; err != nil {
		return nil, err
	}
	return &renewal, nil
}

// ChangeStatus moves the renewal to newStatus and records the transition in
// the same transaction. The update only applies if the status read is still
// current; otherwise a concurrent change won and ErrStatusChanged is returned.
func (r *repositoryImpl) ChangeStatus(db *gorm.DB, id uint, newStatus string, changedBy *uint) (*models.RenewalStatusHistory, error) {
	var entry models.RenewalStatusHistory
	err := db.Transaction(func(tx *gorm.DB) error {
		var current models.PolicyRenewal
		if err := tx.Select("id", "status").First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if current.Status == newStatus {
			return ErrSameStatus
		}

		now := r.now()
		updates := map[string]any{"status": newStatus, "updated_at": now}
		if newStatus == models.RenewalStatusConverted || newStatus == models.RenewalStatusLost {
			updates["conversion_status"] = newStatus
		}
		res := tx.Model(&models.PolicyRenewal{}).
			Where("id = ? AND status = ?", id, current.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		entry = models.RenewalStatusHistory{
			RenewalID: id,
			OldStatus: current.Status,
			NewStatus: newStatus,
			ChangedBy: changedBy,
			ChangedAt: now,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// LogActivity appends an activity and, for customer contacts, bumps the
// renewal's contact_count in the same transaction.
func (r *repositoryImpl) LogActivity(db *gorm.DB, a *models.RenewalActivity) error {
	if a.ActivityDate.IsZero() {
		a.ActivityDate = r.now()
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PolicyRenewal{}).Where("id = ?", a.RenewalID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if !contactTypes[a.ActivityType] {
			return nil
		}
		return tx.Model(&models.PolicyRenewal{}).Where("id = ?", a.RenewalID).
			Updates(map[string]any{"contact_count": gorm.Expr("contact_count + 1"), "updated_at": r.now()}).Error
	})
}

func (r *repositoryImpl) ListActivities(db *gorm.DB, id uint) ([]models.RenewalActivity, error) {
	var count int64
	if err := db.Model(&models.PolicyRenewal{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	activities := []models.RenewalActivity{}
	err := db.Where("renewal_id = ?", id).Order("activity_date DESC, id DESC").Find(&activities).Error
	return activities, err
}

func activeUser(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ? AND is_active = ?", id, true).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotAvailable
	}
	return nil
}
