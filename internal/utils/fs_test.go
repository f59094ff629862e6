package utils

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	err := AtomicWriteFile(fs, "/out/mods/a.jar", []byte("first"), 0o644)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/out/mods/a.jar")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), data)

	// Replacing leaves no temp files behind
	err = AtomicWriteFile(fs, "/out/mods/a.jar", []byte("second"), 0o644)
	require.NoError(t, err)

	entries, err := afero.ReadDir(fs, "/out/mods")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	data, err = afero.ReadFile(fs, "/out/mods/a.jar")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestCopyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/launch.sh", []byte("#!/bin/sh"), 0o755))

	err := CopyFile(fs, "/src/launch.sh", "/dst/nested/launch.sh")
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/dst/nested/launch.sh")
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh", string(data))

	info, err := fs.Stat("/dst/nested/launch.sh")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	assert.True(t, info.Mode().IsRegular())

	err = CopyFile(fs, "/src/missing", "/dst/missing")
	assert.Error(t, err)
}
