package user

import (
	"errors"

	"github.com/claimdesk/claims-crm/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

const settingsID = 1

var defaultRoles = []models.Role{
	{Name: models.RoleAdmin, Description: "Full access including users and settings", Permissions: []string{"*"}},
	{Name: models.RoleManager, Description: "Manages claims, renewals and leads", Permissions: []string{
		"claims:read", "claims:write", "renewals:read", "renewals:write", "leads:read", "leads:write", "surveyors:write", "policies:write",
	}},
	{Name: models.RoleAgent, Description: "Works claims, renewals and leads", Permissions: []string{
		"claims:read", "claims:write", "renewals:read", "renewals:write", "leads:read", "leads:write",
	}},
	{Name: models.RoleSurveyor, Description: "Records surveys on assigned claims", Permissions: []string{
		"claims:read", "surveys:write", "documents:write",
	}},
}

type Repository interface {
	List(db *gorm.DB) ([]models.User, error)
	FindByID(db *gorm.DB, id uint) (*models.User, error)
	Create(db *gorm.DB, u *models.User) error
	Update(db *gorm.DB, id uint, fields map[string]any) (*models.User, error)
	Delete(db *gorm.DB, id uint) error

	Roles(db *gorm.DB) ([]models.Role, error)
	Settings(db *gorm.DB) (*models.Settings, error)
	SaveSettings(db *gorm.DB, s *models.Settings) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) List(db *gorm.DB) ([]models.User, error) {
	users := []models.User{}
	err := db.Order("full_name ASC, id ASC").Find(&users).Error
	return users, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) Create(db *gorm.DB, u *models.User) error {
	active := u.IsActive
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		// is_active defaults to true on insert
		if !active {
			u.IsActive = false
			return tx.Model(u).Update("is_active", false).Error
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

// Update writes fields as a map so false and empty values are stored.
func (r *repositoryImpl) Update(db *gorm.DB, id uint, fields map[string]any) (*models.User, error) {
	res := db.Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(db, id)
}

// Delete removes the user and clears the assignments that pointed at them.
func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&models.PolicyRenewal{}).Where("assigned_to = ?", id).Update("assigned_to", nil).Error; err != nil {
			return err
		}
		return tx.Model(&models.Lead{}).Where("assigned_to = ?", id).Update("assigned_to", nil).Error
	})
}

// Roles seeds the default roles on first read.
func (r *repositoryImpl) Roles(db *gorm.DB) ([]models.Role, error) {
	var count int64
	if err := db.Model(&models.Role{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		seed := make([]models.Role, len(defaultRoles))
		copy(seed, defaultRoles)
		if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&seed).Error; err != nil {
			return nil, err
		}
	}
	roles := []models.Role{}
	err := db.Order("id ASC").Find(&roles).Error
	return roles, err
}

// Settings returns the singleton row, creating it with defaults on first read.
func (r *repositoryImpl) Settings(db *gorm.DB) (*models.Settings, error) {
	s := models.Settings{ID: settingsID}
	err := db.Where(models.Settings{ID: settingsID}).
		Attrs(models.Settings{CompanyName: "Claims CRM", Currency: "INR", RenewalWindowDays: 30}).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repositoryImpl) SaveSettings(db *gorm.DB, s *models.Settings) error {
	s.ID = settingsID
	return db.Save(s).Error
}
