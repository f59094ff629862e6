// Package installer downloads the mod loader installer and runs it against
// the server bundle.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Norgate-AV/mpb/internal/logging"
	"github.com/Norgate-AV/mpb/internal/version"
)

// Defaults for installer downloads
const (
	DefaultRetries = 3
	DefaultTimeout = 5 * time.Minute
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// Options configures an Installer
type Options struct {
	// Maven base the installer is fetched from
	MavenURL string

	// Vanilla server jar URL, overriding the built-in table
	VanillaURL string

	// Java executable
	JavaPath string

	// Transport level retries for each download
	Retries int

	// Per-request timeout
	Timeout time.Duration

	Logger *slog.Logger
}

// Installer prepares a server directory by running the loader installer
type Installer struct {
	dir         string
	opts        Options
	client      *retryablehttp.Client
	log         *slog.Logger
	execCommand func(dir, name string, args ...string) Commander
}

// New creates an installer working inside the server directory dir
func New(dir string, opts Options) *Installer {
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if opts.JavaPath == "" {
		opts.JavaPath = "java"
	}

	log := logging.OrDiscard(opts.Logger)

	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = log

	return &Installer{
		dir:    dir,
		opts:   opts,
		client: client,
		log:    log,
		execCommand: func(dir, name string, args ...string) Commander {
			cmd := exec.Command(name, args...)
			cmd.Dir = dir
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr
			return cmd
		},
	}
}

// Install downloads the server jars for the given versions and runs the
// installer. The installer jar and its log are removed afterwards.
func (i *Installer) Install(ctx context.Context, mcVersion, loaderVersion string) error {
	if err := os.MkdirAll(i.dir, 0o755); err != nil {
		return &Error{Step: "prepare", Err: err}
	}

	if err := i.downloadVanilla(ctx, mcVersion); err != nil {
		return &Error{Step: "vanilla download", Err: err}
	}

	installerURL := InstallerURL(i.opts.MavenURL, mcVersion, loaderVersion)
	jar := filepath.Join(i.dir, InstallerJar)

	i.log.Info("downloading installer", "url", installerURL)
	if err := i.download(ctx, installerURL, jar); err != nil {
		return &Error{Step: "installer download", Err: err}
	}

	defer i.cleanup()

	cmd := GetInstallCommand(i.opts.JavaPath, i.dir)
	i.log.Info("running installer", "command", cmd.String())

	if err := i.execute(cmd); err != nil {
		return &Error{Step: "installer run", Err: err}
	}

	i.log.Info("server installed", "dir", i.dir)
	return nil
}

func (i *Installer) downloadVanilla(ctx context.Context, mcVersion string) error {
	url, ok := VanillaURL(mcVersion, i.opts.VanillaURL)
	if !ok {
		i.log.Debug("no vanilla server known, leaving it to the installer", "minecraft", mcVersion)
		return nil
	}

	dest := filepath.Join(i.dir, VanillaJar(mcVersion))
	if _, err := os.Stat(dest); err == nil {
		i.log.Debug("vanilla server present", "path", dest)
		return nil
	}

	i.log.Info("downloading vanilla server", "url", url)
	return i.download(ctx, url, dest)
}

func (i *Installer) execute(cmd *ShellCommand) error {
	err := i.execCommand(cmd.Dir, cmd.Path, cmd.Args...).Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("installer exited with code %d: %w", exitErr.ExitCode(), err)
	}

	return err
}

// download streams url into dest through a temporary file
func (i *Installer) download(ctx context.Context, url, dest string) (err error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := i.client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(dest), err)
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), dest)
}

func (i *Installer) cleanup() {
	for _, name := range []string{InstallerJar, InstallerJar + ".log"} {
		path := filepath.Join(i.dir, name)

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.log.Warn("failed to remove installer leftover", "path", path, "error", err)
		}
	}
}
