package db

import (
	"fmt"
	"log"
	"time"

	"github.com/claimdesk/claims-crm/internal/models"
	"gorm.io/gorm"
)

type SchemaMigration struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:100;not null"`
	AppliedAt time.Time `gorm:"not null"`
}

type migration struct {
	name string
	up   func(tx *gorm.DB) error
}

// migrations is the ordered schema history. The version of an entry is its
// 1-based index; entries are never reordered or edited once released.
var migrations = []migration{
	{"core claim tables", func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&models.PolicyHolder{},
			&models.Vehicle{},
			&models.Policy{},
			&models.Surveyor{},
			&models.Claim{},
			&models.ClaimSurveyorAssignment{},
			&models.ClaimSurvey{},
			&models.Document{},
			&models.ClaimNote{},
			&models.Payment{},
		)
	}},
	{"renewal tracking", func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&models.PolicyRenewal{},
			&models.RenewalActivity{},
			&models.RenewalStatusHistory{},
		)
	}},
	{"leads", func(tx *gorm.DB) error {
		return tx.AutoMigrate(&models.LeadSource{}, &models.Lead{})
	}},
	{"users roles settings", func(tx *gorm.DB) error {
		return tx.AutoMigrate(&models.User{}, &models.Role{}, &models.Settings{})
	}},
}

// Migrate applies every migration newer than the recorded schema version.
// Each one runs in its own transaction together with its bookkeeping row.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to prepare schema_migrations: %w", err)
	}

	var current int
	if err := database.Model(&SchemaMigration{}).Select("COALESCE(MAX(version), 0)").Scan(&current).Error; err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		m := migrations[i]
		version := i + 1
		err := database.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: version, Name: m.name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", version, m.name, err)
		}
		log.Printf("Applied migration %d: %s", version, m.name)
	}
	return nil
}

// SchemaVersion returns the latest applied migration version.
func SchemaVersion(database *gorm.DB) (int, error) {
	var v int
	err := database.Model(&SchemaMigration{}).Select("COALESCE(MAX(version), 0)").Scan(&v).Error
	return v, err
}
