package lead

import (
	"errors"

	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/utils"
	"gorm.io/gorm"
)

const (
	numberPrefix   = "LEAD"
	numberWidth    = 6
	numberAttempts = 5
)

var (
	ErrNotFound         = errors.New("lead not found")
	ErrSourceNotFound   = errors.New("lead source not found")
	ErrUnknownSource    = errors.New("lead source does not exist")
	ErrUnknownUser      = errors.New("assigned user does not exist")
	ErrSourceInUse      = errors.New("lead source is used by existing leads")
	ErrNumbersExhausted = errors.New("lead number range exhausted")
)

type Filter struct {
	Status   string
	Priority string
	SourceID uint
	Search   string
}

type Repository interface {
	Create(db *gorm.DB, l *models.Lead) error
	List(db *gorm.DB, f Filter) ([]models.Lead, error)
	FindByID(db *gorm.DB, id uint) (*models.Lead, error)
	Update(db *gorm.DB, id uint, data *models.Lead) (*models.Lead, error)
	Delete(db *gorm.DB, id uint) error

	CreateSource(db *gorm.DB, s *models.LeadSource) error
	ListSources(db *gorm.DB, activeOnly bool) ([]models.LeadSource, error)
	FindSource(db *gorm.DB, id uint) (*models.LeadSource, error)
	UpdateSource(db *gorm.DB, id uint, data *models.LeadSource) (*models.LeadSource, error)
	DeleteSource(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Create numbers the lead LEAD###### and inserts it, retrying when a
// concurrent insert takes the same number.
func (r *repositoryImpl) Create(db *gorm.DB, l *models.Lead) error {
	if err := checkRefs(db, l); err != nil {
		return err
	}
	err := utils.RetryOnDuplicate(numberAttempts, func() error {
		number, err := utils.NextSequence(db, &models.Lead{}, "lead_number", numberPrefix, numberWidth)
		if err != nil {
			return err
		}
		l.ID = 0
		l.LeadNumber = number
		return db.Omit("Source").Create(l).Error
	})
	if errors.Is(err, utils.ErrSequenceExhausted) {
		return ErrNumbersExhausted
	}
	return err
}

func (r *repositoryImpl) List(db *gorm.DB, f Filter) ([]models.Lead, error) {
	leads := []models.Lead{}
	q := db.Preload("Source").Order("created_at DESC, id DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.SourceID != 0 {
		q = q.Where("source_id = ?", f.SourceID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ? OR lead_number LIKE ?", like, like, like, like, like)
	}
	err := q.Find(&leads).Error
	return leads, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Lead, error) {
	var l models.Lead
	if err := db.Preload("Source").First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *repositoryImpl) Update(db *gorm.DB, id uint, data *models.Lead) (*models.Lead, error) {
	var existing models.Lead
	if err := db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := checkRefs(db, data); err != nil {
		return nil, err
	}

	existing.SourceID = data.SourceID
	existing.FirstName = data.FirstName
	existing.LastName = data.LastName
	existing.Email = data.Email
	existing.Phone = data.Phone
	existing.AssignedTo = data.AssignedTo
	existing.ProductCategory = data.ProductCategory
	existing.ProductSubtype = data.ProductSubtype
	existing.Notes = data.Notes
	if data.Status != "" {
		existing.Status = data.Status
	}
	if data.Priority != "" {
		existing.Priority = data.Priority
	}
	if err := db.Omit("Source").Save(&existing).Error; err != nil {
		return nil, err
	}
	return r.FindByID(db, id)
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	res := db.Delete(&models.Lead{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) CreateSource(db *gorm.DB, s *models.LeadSource) error {
	active := s.IsActive
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		// is_active defaults to true on insert, so false needs its own write
		if !active {
			s.IsActive = false
			return tx.Model(s).Update("is_active", false).Error
		}
		return nil
	})
}

func (r *repositoryImpl) ListSources(db *gorm.DB, activeOnly bool) ([]models.LeadSource, error) {
	sources := []models.LeadSource{}
	q := db.Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&sources).Error
	return sources, err
}

func (r *repositoryImpl) FindSource(db *gorm.DB, id uint) (*models.LeadSource, error) {
	var s models.LeadSource
	if err := db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repositoryImpl) UpdateSource(db *gorm.DB, id uint, data *models.LeadSource) (*models.LeadSource, error) {
	existing, err := r.FindSource(db, id)
	if err != nil {
		return nil, err
	}
	existing.Name = data.Name
	existing.Description = data.Description
	existing.IsActive = data.IsActive
	if err := db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteSource refuses while any lead references the source.
func (r *repositoryImpl) DeleteSource(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Lead{}).Where("source_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrSourceInUse
		}
		res := tx.Delete(&models.LeadSource{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSourceNotFound
		}
		return nil
	})
}

func checkRefs(db *gorm.DB, l *models.Lead) error {
	if l.SourceID != nil {
		var count int64
		if err := db.Model(&models.LeadSource{}).Where("id = ?", *l.SourceID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUnknownSource
		}
	}
	if l.AssignedTo != nil {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", *l.AssignedTo).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUnknownUser
		}
	}
	return nil
}
