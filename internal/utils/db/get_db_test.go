package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/claimdesk/claims-crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDBSQLiteIsMigrated(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", DBPath: filepath.Join(t.TempDir(), "claims.db"), Environment: "test"}
	database, err := GetDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(database) })

	v, err := SchemaVersion(database)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestGetDBRejectsUnknownDriver(t *testing.T) {
	_, err := GetDB(context.Background(), &config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
