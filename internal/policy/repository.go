package policy

import (
	"errors"

	"github.com/claimdesk/claims-crm/internal/models"
	"gorm.io/gorm"
)

var (
	ErrHolderNotFound  = errors.New("policy holder not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrPolicyNotFound  = errors.New("policy not found")
	ErrInUse           = errors.New("record is referenced by other records")
)

type PolicyFilter struct {
	Status         string
	PolicyHolderID uint
}

type Repository interface {
	CreateHolder(db *gorm.DB, h *models.PolicyHolder) error
	ListHolders(db *gorm.DB) ([]models.PolicyHolder, error)
	FindHolder(db *gorm.DB, id uint) (*models.PolicyHolder, error)
	UpdateHolder(db *gorm.DB, id uint, data *models.PolicyHolder) (*models.PolicyHolder, error)
	DeleteHolder(db *gorm.DB, id uint) error

	CreateVehicle(db *gorm.DB, v *models.Vehicle) error
	ListVehicles(db *gorm.DB, holderID uint) ([]models.Vehicle, error)
	FindVehicle(db *gorm.DB, id uint) (*models.Vehicle, error)
	UpdateVehicle(db *gorm.DB, id uint, data *models.Vehicle) (*models.Vehicle, error)
	DeleteVehicle(db *gorm.DB, id uint) error

	CreatePolicy(db *gorm.DB, p *models.Policy) error
	ListPolicies(db *gorm.DB, f PolicyFilter) ([]models.Policy, error)
	FindPolicy(db *gorm.DB, id uint) (*models.Policy, error)
	UpdatePolicy(db *gorm.DB, id uint, data *models.Policy) (*models.Policy, error)
	DeletePolicy(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) CreateHolder(db *gorm.DB, h *models.PolicyHolder) error {
	return db.Create(h).Error
}

func (r *repositoryImpl) ListHolders(db *gorm.DB) ([]models.PolicyHolder, error) {
	holders := []models.PolicyHolder{}
	err := db.Order("name ASC").Find(&holders).Error
	return holders, err
}

func (r *repositoryImpl) FindHolder(db *gorm.DB, id uint) (*models.PolicyHolder, error) {
	var h models.PolicyHolder
	if err := db.First(&h, id).Error; err != nil {
		return nil, notFound(err, ErrHolderNotFound)
	}
	return &h, nil
}

func (r *repositoryImpl) UpdateHolder(db *gorm.DB, id uint, data *models.PolicyHolder) (*models.PolicyHolder, error) {
	existing, err := r.FindHolder(db, id)
	if err != nil {
		return nil, err
	}
	existing.Name = data.Name
	existing.Email = data.Email
	existing.Phone = data.Phone
	existing.Address = data.Address
	existing.IDNumber = data.IDNumber
	if err := db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// DeleteHolder refuses while policies reference the holder.
func (r *repositoryImpl) DeleteHolder(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Policy{}).Where("policy_holder_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}
		if err := tx.Model(&models.Vehicle{}).Where("policy_holder_id = ?", id).Update("policy_holder_id", nil).Error; err != nil {
			return err
		}
		return deleteByID(tx, &models.PolicyHolder{}, id, ErrHolderNotFound)
	})
}

func (r *repositoryImpl) CreateVehicle(db *gorm.DB, v *models.Vehicle) error {
	if v.PolicyHolderID != nil {
		if _, err := r.FindHolder(db, *v.PolicyHolderID); err != nil {
			return err
		}
	}
	return db.Create(v).Error
}

func (r *repositoryImpl) ListVehicles(db *gorm.DB, holderID uint) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	q := db.Order("registration ASC")
	if holderID != 0 {
		q = q.Where("policy_holder_id = ?", holderID)
	}
	err := q.Find(&vehicles).Error
	return vehicles, err
}

func (r *repositoryImpl) FindVehicle(db *gorm.DB, id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := db.First(&v, id).Error; err != nil {
		return nil, notFound(err, ErrVehicleNotFound)
	}
	return &v, nil
}

func (r *repositoryImpl) UpdateVehicle(db *gorm.DB, id uint, data *models.Vehicle) (*models.Vehicle, error) {
	existing, err := r.FindVehicle(db, id)
	if err != nil {
		return nil, err
	}
	if data.PolicyHolderID != nil {
		if _, err := r.FindHolder(db, *data.PolicyHolderID); err != nil {
			return nil, err
		}
	}
	existing.Registration = data.Registration
	existing.Make = data.Make
	existing.Model = data.Model
	existing.Year = data.Year
	existing.PolicyHolderID = data.PolicyHolderID
	if err := db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *repositoryImpl) DeleteVehicle(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&models.Policy{}).Where("vehicle_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}
		return deleteByID(tx, &models.Vehicle{}, id, ErrVehicleNotFound)
	})
}

func (r *repositoryImpl) CreatePolicy(db *gorm.DB, p *models.Policy) error {
	if err := r.checkRefs(db, p); err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = "active"
	}
	return db.Create(p).Error
}

func (r *repositoryImpl) ListPolicies(db *gorm.DB, f PolicyFilter) ([]models.Policy, error) {
	policies := []models.Policy{}
	q := db.Preload("PolicyHolder").Preload("Vehicle").Order("created_at DESC, id DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PolicyHolderID != 0 {
		q = q.Where("policy_holder_id = ?", f.PolicyHolderID)
	}
	err := q.Find(&policies).Error
	return policies, err
}

func (r *repositoryImpl) FindPolicy(db *gorm.DB, id uint) (*models.Policy, error) {
	var p models.Policy
	if err := db.Preload("PolicyHolder").Preload("Vehicle").First(&p, id).Error; err != nil {
		return nil, notFound(err, ErrPolicyNotFound)
	}
	return &p, nil
}

func (r *repositoryImpl) UpdatePolicy(db *gorm.DB, id uint, data *models.Policy) (*models.Policy, error) {
	var existing models.Policy
	if err := db.First(&existing, id).Error; err != nil {
		return nil, notFound(err, ErrPolicyNotFound)
	}
	if err := r.checkRefs(db, data); err != nil {
		return nil, err
	}
	existing.PolicyNumber = data.PolicyNumber
	existing.PolicyHolderID = data.PolicyHolderID
	existing.VehicleID = data.VehicleID
	existing.PolicyType = data.PolicyType
	existing.StartDate = data.StartDate
	existing.EndDate = data.EndDate
	existing.Premium = data.Premium
	existing.CoverageAmount = data.CoverageAmount
	if data.Status != "" {
		existing.Status = data.Status
	}
	if err := db.Omit("PolicyHolder", "Vehicle").Save(&existing).Error; err != nil {
		return nil, err
	}
	return r.FindPolicy(db, id)
}

// DeletePolicy refuses while claims or renewals reference the policy.
func (r *repositoryImpl) DeletePolicy(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Claim{}, &models.PolicyRenewal{}} {
			var refs int64
			if err := tx.Model(model).Where("policy_id = ?", id).Count(&refs).Error; err != nil {
				return err
			}
			if refs > 0 {
				return ErrInUse
			}
		}
		return deleteByID(tx, &models.Policy{}, id, ErrPolicyNotFound)
	})
}

func (r *repositoryImpl) checkRefs(db *gorm.DB, p *models.Policy) error {
	if _, err := r.FindHolder(db, p.PolicyHolderID); err != nil {
		return err
	}
	if p.VehicleID != nil {
		if _, err := r.FindVehicle(db, *p.VehicleID); err != nil {
			return err
		}
	}
	return nil
}

func deleteByID(db *gorm.DB, model any, id uint, missing error) error {
	res := db.Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return missing
	}
	return nil
}

func notFound(err, missing error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return err
}
