package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Norgate-AV/mpb/internal/resolve"
)

// Default configuration values
const (
	DefaultRetries     = 3
	DefaultJobs        = 4
	DefaultTimeout     = 5 * time.Minute
	DefaultMetadataURL = resolve.DefaultMetadataURL
	DefaultForgeMaven  = "https://maven.minecraftforge.net/net/minecraftforge/forge"
	DefaultJavaPath    = "java"
)

// Holds the configuration options for mpb
type Config struct {
	// Pack root containing manifest.json and the static directories
	Dir string

	// Fetch-and-verify attempts per hashed artifact
	Retries int

	// Hashed artifacts processed concurrently
	Jobs int

	// Per-request download timeout
	Timeout time.Duration

	// Reject downloads larger than this many bytes (0 disables the limit)
	MaxDownloadSize int64

	// Metadata service used to resolve indexed files
	MetadataURL string

	// Maven repository the Forge installer is downloaded from
	ForgeMavenURL string

	// Vanilla server jar URL, overriding the built-in table
	VanillaServerURL string

	// Java executable used to run the installer
	JavaPath string

	// Skip the runtime installer step
	SkipInstall bool

	// Ignore cached downloads and resolutions
	NoCache bool

	// Append the short git revision to archive names
	SHA bool

	// Append a name to archive names
	Name string

	// Enable verbose output
	Verbose bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Dir:              viper.GetString("dir"),
		Retries:          viper.GetInt("retries"),
		Jobs:             viper.GetInt("jobs"),
		Timeout:          viper.GetDuration("timeout"),
		MaxDownloadSize:  viper.GetInt64("max_download_size"),
		MetadataURL:      viper.GetString("metadata_url"),
		ForgeMavenURL:    viper.GetString("forge_maven_url"),
		VanillaServerURL: viper.GetString("vanilla_server_url"),
		JavaPath:         viper.GetString("java_path"),
		SkipInstall:      viper.GetBool("skip_install"),
		NoCache:          viper.GetBool("no_cache"),
		SHA:              viper.GetBool("sha"),
		Name:             viper.GetString("name"),
		Verbose:          viper.GetBool("verbose"),
	}

	// Apply defaults if not set
	if cfg.MetadataURL == "" {
		cfg.MetadataURL = DefaultMetadataURL
	}

	if cfg.ForgeMavenURL == "" {
		cfg.ForgeMavenURL = DefaultForgeMaven
	}

	if cfg.JavaPath == "" {
		cfg.JavaPath = DefaultJavaPath
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Dir == "" {
		c.Dir = "."
	}

	abs, err := filepath.Abs(c.Dir)
	if err != nil {
		return fmt.Errorf("invalid pack directory: %v", err)
	}

	c.Dir = abs

	if c.Retries < 1 {
		return fmt.Errorf("invalid retries: %d (must be at least 1)", c.Retries)
	}

	if c.Jobs < 1 {
		return fmt.Errorf("invalid jobs: %d (must be at least 1)", c.Jobs)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}

	if c.MaxDownloadSize < 0 {
		return fmt.Errorf("invalid max download size: %d", c.MaxDownloadSize)
	}

	return nil
}

// Layout returns the working paths derived from the pack directory
func (c *Config) Layout() Layout {
	return NewLayout(c.Dir)
}
