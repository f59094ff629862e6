package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// Lock takes an exclusive file lock next to the cache directory so that two
// builds never populate the same cache at once. The lock file lives beside
// the cache rather than in it to keep the cache a plain directory of
// artifacts. Lock always works on the real filesystem.
func (c *Cache) Lock(ctx context.Context) (func(), error) {
	fileLock := flock.New(c.root + ".lock")

	locked, err := fileLock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cache %s: %w", c.root, err)
	}

	if !locked {
		return nil, fmt.Errorf("cache %s is locked by another build", c.root)
	}

	return func() { fileLock.Unlock() }, nil
}
