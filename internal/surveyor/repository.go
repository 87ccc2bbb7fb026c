package surveyor

import (
	"errors"

	"github.com/claimdesk/claims-crm/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("surveyor not found")
	ErrHasAssigned = errors.New("surveyor has assigned claims")
)

type Repository interface {
	Create(db *gorm.DB, s *models.Surveyor) error
	List(db *gorm.DB, search string) ([]models.Surveyor, error)
	FindByID(db *gorm.DB, id uint) (*models.Surveyor, error)
	Update(db *gorm.DB, id uint, data *models.Surveyor) (*models.Surveyor, error)
	Delete(db *gorm.DB, id uint) error
	AssignedClaims(db *gorm.DB, id uint) ([]models.Claim, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, s *models.Surveyor) error {
	return db.Create(s).Error
}

func (r *repositoryImpl) List(db *gorm.DB, search string) ([]models.Surveyor, error) {
	surveyors := []models.Surveyor{}
	q := db.Order("name ASC")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR specialization LIKE ? OR email LIKE ?", like, like, like)
	}
	err := q.Find(&surveyors).Error
	return surveyors, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Surveyor, error) {
	var s models.Surveyor
	if err := db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repositoryImpl) Update(db *gorm.DB, id uint, data *models.Surveyor) (*models.Surveyor, error) {
	existing, err := r.FindByID(db, id)
	if err != nil {
		return nil, err
	}

	existing.Name = data.Name
	existing.Email = data.Email
	existing.Phone = data.Phone
	existing.Specialization = data.Specialization
	existing.LicenseNumber = data.LicenseNumber
	existing.YearsExperience = data.YearsExperience
	existing.Address = data.Address

	if err := db.Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete removes the surveyor only while no claim is assigned to it. The
// check and the delete are one statement, so an assignment made in between
// cannot be orphaned.
func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	res := db.Where("id = ?", id).
		Where("NOT EXISTS (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&models.ClaimSurveyorAssignment{}).
			Select("1").
			Where("claim_surveyors.surveyor_id = surveyors.id")).
		Delete(&models.Surveyor{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := r.FindByID(db, id); err != nil {
		return err
	}
	return ErrHasAssigned
}

func (r *repositoryImpl) AssignedClaims(db *gorm.DB, id uint) ([]models.Claim, error) {
	if _, err := r.FindByID(db, id); err != nil {
		return nil, err
	}
	claims := []models.Claim{}
	err := db.Joins("JOIN claim_surveyors ON claim_surveyors.claim_id = claims.id").
		Where("claim_surveyors.surveyor_id = ?", id).
		Order("claim_surveyors.assigned_at DESC").
		Find(&claims).Error
	return claims, err
}
