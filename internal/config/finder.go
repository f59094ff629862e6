package config

import (
	"os"
	"path/filepath"
)

// localConfigExts are the local config formats, in lookup order
var localConfigExts = []string{"yml", "yaml", "json", "toml"}

// FindLocalConfig returns the nearest .mpb.<ext> at or above packDir, or ""
// when there is none. The walk ends at the enclosing git repository root,
// so a pack never picks up configuration from outside its repository.
func FindLocalConfig(packDir string) string {
	dir := filepath.Clean(packDir)

	for {
		if path := localConfigIn(dir); path != "" {
			return path
		}

		if isRepoRoot(dir) {
			return ""
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}

		dir = parent
	}
}

func localConfigIn(dir string) string {
	for _, ext := range localConfigExts {
		path := filepath.Join(dir, ".mpb."+ext)

		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}

	return ""
}

// isRepoRoot reports whether dir holds a .git directory or, for worktrees
// and submodules, a .git file
func isRepoRoot(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}
