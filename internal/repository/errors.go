package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusMismatch = errors.New("status does not allow this change")
	ErrDuplicate      = errors.New("duplicate record")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
