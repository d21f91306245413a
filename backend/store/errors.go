// Package store persists users, courses and completion records with gorm.
package store

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicate        = errors.New("duplicate record")
	ErrNoPendingSession = errors.New("no pending checkout session")
)

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		// a referenced user, course or lesson row is gone
		return ErrNotFound
	default:
		return err
	}
}
