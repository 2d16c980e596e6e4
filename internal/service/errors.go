package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nurpe/recycle-disposals/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrUpstream          = errors.New("upstream failure")
)

// notFound maps a missing record onto ErrNotFound naming what was looked up.
func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

func conflict(err error, what string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("%w: %s", ErrConflict, what)
	}
	return err
}

// upstream turns a timed-out store call into ErrUpstream.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrUpstream) {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return err
}
