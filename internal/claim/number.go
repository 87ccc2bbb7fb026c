package claim

import (
	"time"

	"github.com/claimdesk/claims-crm/internal/models"
	"github.com/claimdesk/claims-crm/internal/utils"
	"gorm.io/gorm"
)

const numberAttempts = 5

// numberPrefix is CLM-YYMMDD- for the UTC day of t.
func numberPrefix(t time.Time) string {
	return "CLM-" + t.UTC().Format("060102") + "-"
}

// nextNumber returns the next free claim number of the day: CLM-YYMMDD-NNN.
func nextNumber(db *gorm.DB, now time.Time) (string, error) {
	return utils.NextSequence(db, &models.Claim{}, "claim_number", numberPrefix(now), 3)
}
