package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"signet/internal/domain"
)

var errDBUnavailable = fmt.Errorf("%w: db unavailable", domain.ErrStoreUnavailable)

// storeError classifies a driver error. Record-not-found is handled by callers
// before reaching here.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// validID reports whether id can be used against a uuid column. Anything else
// cannot exist in the table.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func stringPtrIfNotEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
