package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Lock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "modcache")

	c, err := New(afero.NewOsFs(), dir)
	require.NoError(t, err)

	unlock, err := c.Lock(context.Background())
	require.NoError(t, err)

	// A second build sharing the directory cannot take the lock
	other, err := New(afero.NewOsFs(), dir)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 600*time.Millisecond)
	defer cancel()

	_, err = other.Lock(ctx)
	assert.Error(t, err)

	unlock()

	unlockOther, err := other.Lock(context.Background())
	require.NoError(t, err)
	unlockOther()
}
