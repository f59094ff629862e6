package installer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/mpb/internal/logging"
)

// mockCommander implements Commander interface for testing
type mockCommander struct {
	runFunc func() error
}

func (m *mockCommander) Run() error {
	return m.runFunc()
}

type invocation struct {
	dir  string
	name string
	args []string
}

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	vanillaHits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/maven/1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860-installer.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("installer"))
	})
	mux.HandleFunc("/vanilla/server.jar", func(w http.ResponseWriter, r *http.Request) {
		vanillaHits++
		w.Write([]byte("vanilla"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, &vanillaHits
}

func newTestInstaller(t *testing.T, srv *httptest.Server, dir string, run func(invocation) error) (*Installer, *[]invocation) {
	t.Helper()

	inst := New(dir, Options{
		MavenURL:   srv.URL + "/maven/",
		VanillaURL: srv.URL + "/vanilla/server.jar",
		JavaPath:   "/opt/java/bin/java",
		Logger:     logging.Discard(),
	})

	calls := &[]invocation{}
	inst.execCommand = func(dir, name string, args ...string) Commander {
		call := invocation{dir: dir, name: name, args: args}
		*calls = append(*calls, call)
		return &mockCommander{runFunc: func() error { return run(call) }}
	}

	return inst, calls
}

func TestInstallerURL(t *testing.T) {
	got := InstallerURL("https://maven.example.com/forge/", "1.12.2", "14.23.5.2860")
	assert.Equal(t, "https://maven.example.com/forge/1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860-installer.jar", got)
}

func TestVanillaURL(t *testing.T) {
	tests := []struct {
		name      string
		mc        string
		override  string
		wantURL   string
		wantKnown bool
	}{
		{"built in", "1.12.2", "", VanillaServers["1.12.2"], true},
		{"override", "1.12.2", "https://example.com/s.jar", "https://example.com/s.jar", true},
		{"override for unknown version", "1.7.10", "https://example.com/s.jar", "https://example.com/s.jar", true},
		{"unknown", "1.7.10", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, ok := VanillaURL(tt.mc, tt.override)
			assert.Equal(t, tt.wantKnown, ok)
			assert.Equal(t, tt.wantURL, url)
		})
	}
}

func TestGetInstallCommand(t *testing.T) {
	cmd := GetInstallCommand("java", "/srv")

	assert.Equal(t, "/srv", cmd.Dir)
	assert.Equal(t, "java", cmd.Path)
	assert.Equal(t, []string{"-jar", "forge-installer.jar", "--installServer"}, cmd.Args)
	assert.Equal(t, "java -jar forge-installer.jar --installServer", cmd.String())
}

func TestInstall(t *testing.T) {
	srv, vanillaHits := newTestServer(t)
	dir := filepath.Join(t.TempDir(), "server")

	inst, calls := newTestInstaller(t, srv, dir, func(call invocation) error {
		data, err := os.ReadFile(filepath.Join(call.dir, InstallerJar))
		require.NoError(t, err)
		assert.Equal(t, "installer", string(data))

		return os.WriteFile(filepath.Join(call.dir, InstallerJar+".log"), []byte("log"), 0o644)
	})

	require.NoError(t, inst.Install(context.Background(), "1.12.2", "14.23.5.2860"))

	require.Len(t, *calls, 1)
	assert.Equal(t, dir, (*calls)[0].dir)
	assert.Equal(t, "/opt/java/bin/java", (*calls)[0].name)
	assert.Equal(t, []string{"-jar", InstallerJar, "--installServer"}, (*calls)[0].args)

	data, err := os.ReadFile(filepath.Join(dir, "minecraft_server.1.12.2.jar"))
	require.NoError(t, err)
	assert.Equal(t, "vanilla", string(data))
	assert.Equal(t, 1, *vanillaHits)

	assert.NoFileExists(t, filepath.Join(dir, InstallerJar))
	assert.NoFileExists(t, filepath.Join(dir, InstallerJar+".log"))
}

func TestInstall_VanillaPresent(t *testing.T) {
	srv, vanillaHits := newTestServer(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minecraft_server.1.12.2.jar"), []byte("local"), 0o644))

	inst, _ := newTestInstaller(t, srv, dir, func(invocation) error { return nil })
	require.NoError(t, inst.Install(context.Background(), "1.12.2", "14.23.5.2860"))

	assert.Equal(t, 0, *vanillaHits)

	data, err := os.ReadFile(filepath.Join(dir, "minecraft_server.1.12.2.jar"))
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))
}

func TestInstall_MissingInstaller(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()

	inst, calls := newTestInstaller(t, srv, dir, func(invocation) error { return nil })
	err := inst.Install(context.Background(), "1.12.2", "0.0.0")
	require.Error(t, err)

	var installErr *Error
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, "installer download", installErr.Step)
	assert.Contains(t, err.Error(), "404")
	assert.Empty(t, *calls)
	assert.NoFileExists(t, filepath.Join(dir, InstallerJar))
}

func TestInstall_RunFailure(t *testing.T) {
	srv, _ := newTestServer(t)
	dir := t.TempDir()

	runErr := errors.New("java not found")
	inst, _ := newTestInstaller(t, srv, dir, func(invocation) error { return runErr })

	err := inst.Install(context.Background(), "1.12.2", "14.23.5.2860")
	require.Error(t, err)

	var installErr *Error
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, "installer run", installErr.Step)
	assert.ErrorIs(t, err, runErr)
	assert.NoFileExists(t, filepath.Join(dir, InstallerJar), "installer is removed after a failed run")
}
