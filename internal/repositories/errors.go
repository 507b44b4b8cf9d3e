package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// storeError classifies a driver failure. Timeouts and network failures are
// retryable; anything else is internal.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Unavailable(wrapped)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || mongo.IsDuplicateKeyError(err) {
		return apperrors.Wrap(apperrors.KindConflict, "record already exists", wrapped)
	}
	return apperrors.Internal(wrapped)
}
