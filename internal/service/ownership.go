package service

import (
	"context"
	"errors"
	"fmt"

	"musefeed/internal/models"

	"gorm.io/gorm"
)

// ErrOwnershipDenied is wrapped by every ownership denial. Absent records and
// records owned by someone else are indistinguishable.
var ErrOwnershipDenied = errors.New("ownership denied")

// verifyOwnership performs the single owner-scoped lookup; lookup must return
// gorm.ErrRecordNotFound unless id exists and belongs to callerID. Store faults
// are reported as INTERNAL_ERROR and never as denial.
func verifyOwnership[T any](
	ctx context.Context,
	kind string,
	lookup func(ctx context.Context, id, ownerID uint) (*T, error),
	id, callerID uint,
) (*T, error) {
	if callerID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	rec, err := lookup(ctx, id, callerID)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, denied(kind)
	default:
		return nil, models.NewInternalError(err)
	}
}

func denied(kind string) *models.AppError {
	return models.NewForbiddenError(fmt.Sprintf("Only the owner can modify this %s", kind), ErrOwnershipDenied)
}

// storeError maps a repository error for resource id onto the error taxonomy.
func storeError(err error, resource string, id uint) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}
