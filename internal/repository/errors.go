package repository

import (
	"errors"
	"fmt"
	"strings"

	"brolearn_backend/internal/util"

	"gorm.io/gorm"
)

// translateError turns driver errors into the util error kinds so services
// never depend on gorm.
func translateError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, util.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, util.ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %v", op, util.ErrPersistence, err)
	}
}

// isUniqueViolation covers connections opened without TranslateError.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
