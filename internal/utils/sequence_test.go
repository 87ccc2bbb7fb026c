package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ticket struct {
	ID     uint
	Number string `gorm:"size:20;uniqueIndex"`
}

func newSequenceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:seq_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ticket{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestNextSequence(t *testing.T) {
	db := newSequenceDB(t)

	n, err := NextSequence(db, &ticket{}, "number", "T-", 3)
	require.NoError(t, err)
	assert.Equal(t, "T-001", n)

	require.NoError(t, db.Create(&[]ticket{{Number: "T-001"}, {Number: "T-007"}, {Number: "X-050"}}).Error)
	n, err = NextSequence(db, &ticket{}, "number", "T-", 3)
	require.NoError(t, err)
	assert.Equal(t, "T-008", n)

	require.NoError(t, db.Create(&ticket{Number: "T-999"}).Error)
	_, err = NextSequence(db, &ticket{}, "number", "T-", 3)
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestRetryOnDuplicate(t *testing.T) {
	db := newSequenceDB(t)
	require.NoError(t, db.Create(&ticket{Number: "T-001"}).Error)

	t.Run("retries until a free number", func(t *testing.T) {
		calls := 0
		err := RetryOnDuplicate(5, func() error {
			calls++
			number := "T-001"
			if calls == 3 {
				number = "T-002"
			}
			return db.Create(&ticket{Number: number}).Error
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		calls := 0
		err := RetryOnDuplicate(2, func() error {
			calls++
			return db.Create(&ticket{Number: "T-001"}).Error
		})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		assert.Equal(t, 2, calls)
	})

	t.Run("other errors stop immediately", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		err := RetryOnDuplicate(5, func() error {
			calls++
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
