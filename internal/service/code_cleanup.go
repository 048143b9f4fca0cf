package service

import (
	"context"
	"time"

	"bitwise74/todo-api/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CodeCleanup periodically clears verification codes that can no longer be
// used. It returns once ctx is done.
func CodeCleanup(ctx context.Context, every, ttl time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	zap.L().Debug("Code cleanup attached", zap.Duration("tick_every", every))

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := SweepExpiredCodes(ctx, db, now, ttl)
			if err != nil {
				zap.L().Error("Failed to clean up expired verification codes", zap.Error(err))
				continue
			}

			if n > 0 {
				zap.L().Debug("Cleaned up expired verification codes", zap.Int64("count", n))
			}
		}
	}
}

// SweepExpiredCodes clears every code issued at or before now-ttl
func SweepExpiredCodes(ctx context.Context, db *gorm.DB, now time.Time, ttl time.Duration) (int64, error) {
	r := db.WithContext(ctx).
		Model(&model.User{}).
		Where("verification_code_issued_at IS NOT NULL AND verification_code_issued_at <= ?", now.Add(-ttl)).
		Updates(map[string]any{
			"verification_code_hash":      nil,
			"verification_code_issued_at": nil,
		})

	return r.RowsAffected, r.Error
}
