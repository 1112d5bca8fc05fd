package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite (error code 2067)
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsPermissionDenied reports whether err was raised by one of the
// multi-tenant ownership triggers (RAISE(FAIL, 'Permission denied: ...')).
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "Permission denied")
}
