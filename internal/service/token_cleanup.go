package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenCleanup periodically removes password reset tokens that are past
// their TTL. It stops when ctx is done.
func TokenCleanup(ctx context.Context, t time.Duration, r *PasswordResets) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := r.PruneExpired(ctx)
				if err != nil {
					zap.L().Error("Failed to clean up expired reset tokens", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Cleaned up expired reset tokens", zap.Int64("count", n))
				}
			}
		}
	}()
}
