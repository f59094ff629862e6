package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct {
	// globalDir overrides the user config directory, used by tests
	globalDir string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForBuild loads configuration for the build and clean commands.
// Precedence, lowest first: defaults, global config, local .mpb.* config,
// command line flags.
func (l *Loader) LoadForBuild(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(cmd)
	l.bindCommandFlags(cmd)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("retries", DefaultRetries)
	viper.SetDefault("jobs", DefaultJobs)
	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("metadata_url", DefaultMetadataURL)
	viper.SetDefault("forge_maven_url", DefaultForgeMaven)
	viper.SetDefault("java_path", DefaultJavaPath)
}

// loadGlobalConfig loads <user config dir>/mpb/config.*
func (l *Loader) loadGlobalConfig() {
	globalDir := l.globalDir
	if globalDir == "" {
		userDir, err := os.UserConfigDir()
		if err != nil {
			return
		}

		globalDir = filepath.Join(userDir, "mpb")
	}

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.MergeInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads the nearest .mpb.* above the pack directory
func (l *Loader) loadLocalConfig(cmd *cobra.Command) {
	dir := "."
	if f := cmd.Flags().Lookup("dir"); f != nil && f.Value.String() != "" {
		dir = f.Value.String()
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return // silently ignore, config.Load() will handle validation
	}

	localPath := FindLocalConfig(absDir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	bindings := map[string]string{
		"dir":                "dir",
		"retries":            "retries",
		"jobs":               "jobs",
		"timeout":            "timeout",
		"sha":                "sha",
		"name":               "name",
		"no_cache":           "no-cache",
		"skip_install":       "skip-install",
		"verbose":            "verbose",
		"java_path":          "java",
		"metadata_url":       "metadata-url",
		"forge_maven_url":    "forge-maven",
		"max_download_size":  "max-download-size",
		"vanilla_server_url": "vanilla-url",
	}

	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
