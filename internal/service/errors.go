package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// --- Error Definitions ---
var (
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrTrainingNotFound   = errors.New("training not found")
	ErrForbidden          = errors.New("not allowed for this session")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenGeneration    = errors.New("failed to generate authentication token")
	ErrAdminDisabled      = errors.New("admin login is disabled")
	ErrWrongAdminPassword = errors.New("wrong admin password")
	ErrImageType          = errors.New("uploaded file is not an image")
	ErrImageTooLarge      = errors.New("uploaded image is too large")
)

// StatsCache is implemented by cache.StatsCache.
type StatsCache interface {
	Load(ctx context.Context, dst any) (bool, error)
	Store(ctx context.Context, v any) error
	Invalidate(ctx context.Context) error
}

// SessionDenylist is implemented by cache.TokenDenylist.
type SessionDenylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Kicker asks the reconciler for an early pass.
type Kicker interface {
	Kick()
}

type noopKicker struct{}

func (noopKicker) Kick() {}

type noopCache struct{}

func (noopCache) Load(context.Context, any) (bool, error) { return false, nil }
func (noopCache) Store(context.Context, any) error        { return nil }
func (noopCache) Invalidate(context.Context) error        { return nil }

type noopDenylist struct{}

func (noopDenylist) Revoke(context.Context, string, time.Time) error { return nil }
func (noopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
