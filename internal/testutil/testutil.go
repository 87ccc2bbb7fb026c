// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/utils"
	"github.com/claimdesk/claims-crm/internal/utils/db"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated, isolated in-memory SQLite database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:test_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	database, err := db.Open(sqlite.Open(dsn), logger.Silent)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(database) })
	return database
}

func SeedPolicy(t *testing.T, database *gorm.DB) *models.Policy {
	t.Helper()
	holder := models.PolicyHolder{Name: "Asha Kulkarni", Email: "asha@example.com", Phone: "9820000000"}
	if err := database.Create(&holder).Error; err != nil {
		t.Fatalf("seed holder: %v", err)
	}
	policy := models.Policy{
		PolicyNumber:   "POL-" + uuid.NewString()[:8],
		PolicyHolderID: holder.ID,
		PolicyType:     "comprehensive",
		StartDate:      time.Now().AddDate(-1, 0, 0),
		EndDate:        time.Now().AddDate(0, 0, 20),
		Premium:        12000,
		CoverageAmount: 500000,
		Status:         "active",
	}
	if err := database.Create(&policy).Error; err != nil {
		t.Fatalf("seed policy: %v", err)
	}
	return &policy
}

func SeedSurveyor(t *testing.T, database *gorm.DB, name string) *models.Surveyor {
	t.Helper()
	s := models.Surveyor{Name: name, Email: name + "@survey.example.com", Specialization: "motor", YearsExperience: 5}
	if err := database.Create(&s).Error; err != nil {
		t.Fatalf("seed surveyor: %v", err)
	}
	return &s
}

func SeedClaim(t *testing.T, database *gorm.DB, policyID uint, number string) *models.Claim {
	t.Helper()
	c := models.Claim{
		ClaimNumber:         number,
		PolicyID:            policyID,
		IncidentDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ReportDate:          time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		IncidentDescription: "rear-end collision",
		EstimatedAmount:     45000,
		Status:              models.ClaimStatusPending,
	}
	if err := database.Create(&c).Error; err != nil {
		t.Fatalf("seed claim: %v", err)
	}
	return &c
}

func SeedUser(t *testing.T, database *gorm.DB, email, role, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := models.User{FullName: "User " + role, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	if err := database.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &u
}
