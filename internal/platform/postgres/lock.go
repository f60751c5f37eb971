package postgres

import (
	"context"

	"github.com/phrazzld/academy-api/internal/store"
)

// SeedLockKey identifies the advisory lock held while seeding content.
const SeedLockKey int64 = 0x61636164656d79 // "academy"

// AcquireSeedLock blocks until the seed advisory lock is held. The lock is
// transaction scoped, so db must be a transaction; it is released on commit
// or rollback.
func AcquireSeedLock(ctx context.Context, db store.DBTX) error {
	if _, err := db.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, SeedLockKey); err != nil {
		return MapError(err)
	}
	return nil
}
