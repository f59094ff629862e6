package bundle

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Norgate-AV/mpb/internal/utils"
)

// CopyDirs copies each named directory under base into dest, merging with
// whatever dest already holds. Missing source directories are skipped.
func CopyDirs(fs afero.Fs, base, dest string, dirs []string, log *slog.Logger) error {
	for _, dir := range dirs {
		src := filepath.Join(base, dir)

		exists, err := afero.DirExists(fs, src)
		if err != nil {
			return err
		}

		if !exists {
			log.Debug("directory not present, skipping", "dir", dir)
			continue
		}

		if err := CopyDir(fs, src, filepath.Join(dest, dir)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", dir, err)
		}
	}

	return nil
}

// CopyDir recursively copies src into dst, overwriting files that exist
// in both
func CopyDir(fs afero.Fs, src, dst string) error {
	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return fs.MkdirAll(target, 0o755)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return utils.CopyFile(fs, path, target)
	})
}

// CopyFiles copies the named files from base into dest. Missing files are
// logged and skipped.
func CopyFiles(fs afero.Fs, base, dest string, files []string, log *slog.Logger) error {
	for _, name := range files {
		src := filepath.Join(base, name)

		exists, err := afero.Exists(fs, src)
		if err != nil {
			return err
		}

		if !exists {
			log.Warn("file not present, skipping", "file", name)
			continue
		}

		if err := utils.CopyFile(fs, src, filepath.Join(dest, name)); err != nil {
			return fmt.Errorf("failed to copy %s: %w", name, err)
		}
	}

	return nil
}
