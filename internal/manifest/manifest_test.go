package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validHash = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

const validManifest = `{
	// comments are allowed
	"name": "Community Pack",
	"minecraft": {
		"version": "1.12.2",
		"modLoaders": [{"id": "forge-14.23.5.2860", "primary": true}]
	},
	"externalDeps": [
		{"name": "X", "url": "https://x/1.jar", "hash": "` + validHash + `"},
	],
	"files": [
		{"projectID": 238222, "fileID": 2988823, "required": true}
	]
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	m, err := Load(writeManifest(t, validManifest))
	require.NoError(t, err)

	assert.Equal(t, "Community Pack", m.Name)
	assert.Equal(t, "1.12.2", m.Minecraft.Version)
	assert.Equal(t, "14.23.5.2860", m.LoaderVersion())
	assert.Equal(t, "Community Pack modlist", m.Title())

	require.Len(t, m.ExternalDeps, 1)
	assert.Equal(t, "X", m.ExternalDeps[0].Name)
	assert.Equal(t, "1.jar", m.ExternalDeps[0].FileName())

	require.Len(t, m.Files, 1)
	assert.Equal(t, IndexedArtifact{ProjectID: 238222, FileID: 2988823, Required: true}, m.Files[0])
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "not json",
			content:     "externalDeps = []",
			errContains: "malformed manifest",
		},
		{
			name:        "missing externalDeps",
			content:     `{"files": [], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "externalDeps",
		},
		{
			name:        "missing files",
			content:     `{"externalDeps": [], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: `"files"`,
		},
		{
			name:        "missing minecraft",
			content:     `{"externalDeps": [], "files": []}`,
			errContains: "minecraft.version",
		},
		{
			name:        "missing version",
			content:     `{"externalDeps": [], "files": [], "minecraft": {"modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "minecraft.version",
		},
		{
			name:        "missing modLoaders",
			content:     `{"externalDeps": [], "files": [], "minecraft": {"version": "1.12.2"}}`,
			errContains: "minecraft.modLoaders",
		},
		{
			name:        "empty modLoaders",
			content:     `{"externalDeps": [], "files": [], "minecraft": {"version": "1.12.2", "modLoaders": []}}`,
			errContains: "minecraft.modLoaders",
		},
		{
			name: "invalid hash",
			content: `{"externalDeps": [{"name": "X", "url": "https://x/1.jar", "hash": "abc123"}],
				"files": [], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "invalid sha256 digest",
		},
		{
			name: "non-http url",
			content: `{"externalDeps": [{"name": "X", "url": "ftp://x/1.jar", "hash": "` + validHash + `"}],
				"files": [], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "not an http(s) location",
		},
		{
			name: "url without file name",
			content: `{"externalDeps": [{"name": "X", "url": "https://x/", "hash": "` + validHash + `"}],
				"files": [], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "no usable file name",
		},
		{
			name: "url ending in a directory",
			content: `{"externalDeps": [{"name": "X", "url": "https://x/mods/", "hash": "` + validHash + `"}],
				"files": [], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "no usable file name",
		},
		{
			name: "duplicate file name",
			content: `{"externalDeps": [
					{"name": "X", "url": "https://x/1.jar", "hash": "` + validHash + `"},
					{"name": "Y", "url": "https://y/1.jar", "hash": "` + validHash + `"}],
				"files": [], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "already used by X",
		},
		{
			name:        "bad indexed ids",
			content:     `{"externalDeps": [], "files": [{"projectID": 0, "fileID": 1}], "minecraft": {"version": "1.12.2", "modLoaders": [{"id": "forge-1"}]}}`,
			errContains: "files[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.content)

			_, err := Load(path)
			require.Error(t, err)

			var merr *Error
			require.True(t, errors.As(err, &merr), "expected *manifest.Error, got %T", err)
			assert.Equal(t, path, merr.Path)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")

	_, err := Load(path)
	require.Error(t, err)

	var merr *Error
	assert.True(t, errors.As(err, &merr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestManifest_Loader(t *testing.T) {
	m := &Manifest{Minecraft: Minecraft{ModLoaders: []ModLoader{
		{ID: "forge-1.0"},
		{ID: "forge-2.0", Primary: true},
	}}}
	assert.Equal(t, "forge-2.0", m.Loader().ID)
	assert.Equal(t, "2.0", m.LoaderVersion())

	m.Minecraft.ModLoaders[1].Primary = false
	assert.Equal(t, "forge-1.0", m.Loader().ID)
	assert.Equal(t, "Modlist", m.Title())
}
