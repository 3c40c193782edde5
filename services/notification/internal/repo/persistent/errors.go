package persistent

import (
	"errors"
	"fmt"
	"strings"

	"task-notify/services/notification/internal/entity"

	"gorm.io/gorm"
)

// translate maps driver and gorm errors onto entity errors.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	case isDuplicateKey(err):
		return fmt.Errorf("%s: %w", what, entity.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
