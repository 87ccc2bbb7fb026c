package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	a, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	b, err := GenerateTemporaryPassword()
	require.NoError(t, err)
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-01-02T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = ParseDate("02/01/2025")
	assert.Error(t, err)

	empty := ""
	opt, err := ParseOptionalDate(&empty)
	require.NoError(t, err)
	assert.Nil(t, opt)
}
