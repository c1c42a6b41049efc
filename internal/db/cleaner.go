package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartUnverifiedCleaner deletes accounts that never confirmed their
// email, with interval
func StartUnverifiedCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanUnverified(ctx, db, retention, log)
			}
		}
	}()
}

// cleanUnverified removes users still unverified past the retention window.
func cleanUnverified(ctx context.Context, db *sql.DB, retention time.Duration, log *zap.Logger) {
	cutoff := time.Now().Add(-retention)
	res, err := db.ExecContext(ctx, `
        DELETE FROM users
         WHERE verified = false
           AND verification_token IS NOT NULL
           AND created_at < $1
    `, cutoff)
	if err != nil {
		log.Error("failed to clean unverified accounts", zap.Error(err))
		return
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		log.Info("cleaned unverified accounts", zap.Int64("removed", rows))
	}
}
