package claim

import (
	"errors"
	"fmt"
	"time"

	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrClaimNotFound      = errors.New("claim not found")
	ErrPolicyNotFound     = errors.New("policy does not exist")
	ErrSurveyorNotFound   = errors.New("surveyor not found")
	ErrAssignmentNotFound = errors.New("no surveyor assigned to claim")
	ErrSurveyNotFound     = errors.New("no survey recorded for claim")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrNumbersExhausted   = errors.New("daily claim number range exhausted")
)

type Repository interface {
	Create(db *gorm.DB, c *models.Claim) error
	List(db *gorm.DB, status string) ([]models.Claim, error)
	FindByID(db *gorm.DB, id uint) (*models.Claim, error)
	Detail(db *gorm.DB, id uint) (*Detail, error)
	UpdateStatus(db *gorm.DB, id uint, status string, approvedAmount *float64) (*models.Claim, error)

	AssignSurveyor(db *gorm.DB, claimID, surveyorID uint) (*models.ClaimSurveyorAssignment, error)
	FindAssignment(db *gorm.DB, claimID uint) (*models.ClaimSurveyorAssignment, error)
	RemoveAssignment(db *gorm.DB, claimID uint) error

	UpsertSurvey(db *gorm.DB, s *models.ClaimSurvey) (*models.ClaimSurvey, error)
	FindSurvey(db *gorm.DB, claimID uint) (*models.ClaimSurvey, error)
	DeleteSurvey(db *gorm.DB, claimID uint) error

	ListDocuments(db *gorm.DB, claimID uint) ([]models.Document, error)
	CreateDocument(db *gorm.DB, d *models.Document) error
	FindDocument(db *gorm.DB, claimID, docID uint) (*models.Document, error)
	DeleteDocument(db *gorm.DB, claimID, docID uint) error

	ListNotes(db *gorm.DB, claimID uint) ([]models.ClaimNote, error)
	CreateNote(db *gorm.DB, n *models.ClaimNote) error
}

type repositoryImpl struct {
	now func() time.Time
}

func NewRepository() Repository {
	return &repositoryImpl{now: time.Now}
}

// Create assigns the next claim number of the day and inserts the claim as
// pending. A concurrent insert that takes the same number makes it retry.
func (r *repositoryImpl) Create(db *gorm.DB, c *models.Claim) error {
	if err := mustExist(db, &models.Policy{}, c.PolicyID, ErrPolicyNotFound); err != nil {
		return err
	}

	c.Status = models.ClaimStatusPending
	err := utils.RetryOnDuplicate(numberAttempts, func() error {
		number, err := nextNumber(db, r.now())
		if err != nil {
			return err
		}
		c.ID = 0
		c.ClaimNumber = number
		return db.Create(c).Error
	})
	if errors.Is(err, utils.ErrSequenceExhausted) {
		return ErrNumbersExhausted
	}
	return err
}

func (r *repositoryImpl) List(db *gorm.DB, status string) ([]models.Claim, error) {
	claims := []models.Claim{}
	q := db.Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&claims).Error
	return claims, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*models.Claim, error) {
	var c models.Claim
	if err := db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) Detail(db *gorm.DB, id uint) (*Detail, error) {
	c, err := r.FindByID(db, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{
		Claim:     *c,
		Documents: []models.Document{},
		Notes:     []models.ClaimNote{},
		Survey:    []models.ClaimSurvey{},
		Payments:  []models.Payment{},
	}
	if err := db.Where("claim_id = ?", id).Order("upload_date DESC").Find(&d.Documents).Error; err != nil {
		return nil, err
	}
	if err := db.Where("claim_id = ?", id).Order("created_at DESC").Find(&d.Notes).Error; err != nil {
		return nil, err
	}
	if err := db.Where("claim_id = ?", id).Find(&d.Survey).Error; err != nil {
		return nil, err
	}
	if err := db.Where("claim_id = ?", id).Order("payment_date DESC").Find(&d.Payments).Error; err != nil {
		return nil, err
	}
	d.Documents = orEmpty(d.Documents)
	d.Notes = orEmpty(d.Notes)
	d.Survey = orEmpty(d.Survey)
	d.Payments = orEmpty(d.Payments)
	return d, nil
}

// UpdateStatus is a single UPDATE; approvedAmount is only written when given.
func (r *repositoryImpl) UpdateStatus(db *gorm.DB, id uint, status string, approvedAmount *float64) (*models.Claim, error) {
	updates := map[string]any{"status": status, "updated_at": r.now()}
	if approvedAmount != nil {
		updates["approved_amount"] = *approvedAmount
	}
	res := db.Model(&models.Claim{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrClaimNotFound
	}
	return r.FindByID(db, id)
}

// AssignSurveyor replaces the claim's assignment with one UPSERT keyed on
// claim_id, so concurrent calls leave exactly one row.
func (r *repositoryImpl) AssignSurveyor(db *gorm.DB, claimID, surveyorID uint) (*models.ClaimSurveyorAssignment, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Claim{}, claimID, ErrClaimNotFound); err != nil {
			return err
		}
		if err := mustExist(tx, &models.Surveyor{}, surveyorID, ErrSurveyorNotFound); err != nil {
			return err
		}
		a := models.ClaimSurveyorAssignment{ClaimID: claimID, SurveyorID: surveyorID, AssignedAt: r.now()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "claim_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"surveyor_id", "assigned_at"}),
		}).Create(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return r.FindAssignment(db, claimID)
}

func (r *repositoryImpl) FindAssignment(db *gorm.DB, claimID uint) (*models.ClaimSurveyorAssignment, error) {
	var a models.ClaimSurveyorAssignment
	if err := db.Preload("Surveyor").Where("claim_id = ?", claimID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repositoryImpl) RemoveAssignment(db *gorm.DB, claimID uint) error {
	res := db.Where("claim_id = ?", claimID).Delete(&models.ClaimSurveyorAssignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// UpsertSurvey writes the survey and, when it is completed, moves the claim
// to surveyed. Both writes commit together or not at all.
func (r *repositoryImpl) UpsertSurvey(db *gorm.DB, s *models.ClaimSurvey) (*models.ClaimSurvey, error) {
	if s.Status == "" {
		s.Status = models.SurveyStatusPending
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &models.Claim{}, s.ClaimID, ErrClaimNotFound); err != nil {
			return err
		}
		if err := mustExist(tx, &models.Surveyor{}, s.SurveyorID, ErrSurveyorNotFound); err != nil {
			return err
		}

		s.ID = 0
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "claim_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"surveyor_id", "survey_date", "location", "report", "amount", "status", "updated_at",
			}),
		}).Create(s).Error
		if err != nil {
			return err
		}

		if s.Status != models.SurveyStatusCompleted {
			return nil
		}
		res := tx.Model(&models.Claim{}).Where("id = ?", s.ClaimID).
			Updates(map[string]any{"status": models.ClaimStatusSurveyed, "updated_at": r.now()})
		if res.Error != nil {
			return fmt.Errorf("mark claim surveyed: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("mark claim surveyed: %d rows updated", res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindSurvey(db, s.ClaimID)
}

func (r *repositoryImpl) FindSurvey(db *gorm.DB, claimID uint) (*models.ClaimSurvey, error) {
	var s models.ClaimSurvey
	if err := db.Where("claim_id = ?", claimID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repositoryImpl) DeleteSurvey(db *gorm.DB, claimID uint) error {
	res := db.Where("claim_id = ?", claimID).Delete(&models.ClaimSurvey{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSurveyNotFound
	}
	return nil
}

func (r *repositoryImpl) ListDocuments(db *gorm.DB, claimID uint) ([]models.Document, error) {
	if err := mustExist(db, &models.Claim{}, claimID, ErrClaimNotFound); err != nil {
		return nil, err
	}
	docs := []models.Document{}
	err := db.Where("claim_id = ?", claimID).Order("upload_date DESC").Find(&docs).Error
	return orEmpty(docs), err
}

func (r *repositoryImpl) CreateDocument(db *gorm.DB, d *models.Document) error {
	if err := mustExist(db, &models.Claim{}, d.ClaimID, ErrClaimNotFound); err != nil {
		return err
	}
	if d.UploadDate.IsZero() {
		d.UploadDate = r.now()
	}
	return db.Create(d).Error
}

func (r *repositoryImpl) FindDocument(db *gorm.DB, claimID, docID uint) (*models.Document, error) {
	var d models.Document
	if err := db.Where("id = ? AND claim_id = ?", docID, claimID).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repositoryImpl) DeleteDocument(db *gorm.DB, claimID, docID uint) error {
	res := db.Where("id = ? AND claim_id = ?", docID, claimID).Delete(&models.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *repositoryImpl) ListNotes(db *gorm.DB, claimID uint) ([]models.ClaimNote, error) {
	if err := mustExist(db, &models.Claim{}, claimID, ErrClaimNotFound); err != nil {
		return nil, err
	}
	notes := []models.ClaimNote{}
	err := db.Where("claim_id = ?", claimID).Order("created_at DESC, id DESC").Find(&notes).Error
	return orEmpty(notes), err
}

func (r *repositoryImpl) CreateNote(db *gorm.DB, n *models.ClaimNote) error {
	if err := mustExist(db, &models.Claim{}, n.ClaimID, ErrClaimNotFound); err != nil {
		return err
	}
	return db.Create(n).Error
}

// mustExist returns notFound when no row of model has the given id.
func mustExist(db *gorm.DB, model any, id uint, notFound error) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
