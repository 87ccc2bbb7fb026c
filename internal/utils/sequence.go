package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// ErrSequenceExhausted is returned when every number for a prefix is taken.
var ErrSequenceExhausted = errors.New("sequence exhausted")

// NextSequence returns prefix followed by the highest existing zero-padded
// suffix plus one. column must only hold values of the form prefix+digits.
func NextSequence(db *gorm.DB, model any, column, prefix string, width int) (string, error) {
	var values []string
	err := db.Model(model).
		Where(column+" LIKE ?", prefix+"%").
		Order(column+" DESC").
		Limit(1).
		Pluck(column, &values).Error
	if err != nil {
		return "", fmt.Errorf("failed to query max %s: %w", column, err)
	}

	next := 1
	if len(values) > 0 {
		n, err := strconv.Atoi(strings.TrimPrefix(values[0], prefix))
		if err == nil {
			next = n + 1
		}
	}
	if next > int(math.Pow10(width))-1 {
		return "", ErrSequenceExhausted
	}
	return fmt.Sprintf("%s%0*d", prefix, width, next), nil
}

// RetryOnDuplicate runs insert up to attempts times while it fails with a
// unique-key violation, which means a concurrent insert took the number.
func RetryOnDuplicate(attempts int, insert func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = insert()
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return fmt.Errorf("no free number after %d attempts: %w", attempts, err)
}
