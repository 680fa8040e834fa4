package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/article-platform/internal/repository"
)

// StartLedgerPruner periodically deletes revocation records whose original
// token TTL has elapsed. A pruned record's token is already unverifiable
// through natural expiry, so removal is not observable. Stops when ctx is
// cancelled.
func StartLedgerPruner(ctx context.Context, ledger repository.RevokedTokenRepository, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := ledger.DeleteExpired(ctx, time.Now())
				if err != nil {
					logger.Warn("ledger prune failed", zap.Error(err))
					continue
				}
				if deleted > 0 {
					logger.Info("pruned expired revocation records", zap.Int64("count", deleted))
				}
			}
		}
	}()
}
