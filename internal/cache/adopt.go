package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Adopt copies every file in sourceDir that is not cached yet into the
// cache and returns how many were adopted. It recovers downloads from a
// previous or interrupted build. Existing entries are never overwritten,
// so adopting the same directory twice is a no-op the second time.
func (c *Cache) Adopt(sourceDir string) (int, error) {
	names, err := listFiles(c.fs, sourceDir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", sourceDir, err)
	}

	adopted := 0
	for _, name := range names {
		if c.Has(name) {
			continue
		}

		data, err := afero.ReadFile(c.fs, filepath.Join(sourceDir, name))
		if err != nil {
			return adopted, fmt.Errorf("failed to read %s: %w", name, err)
		}

		if err := c.Put(name, data); err != nil {
			return adopted, err
		}

		adopted++
	}

	return adopted, nil
}

// listFiles returns the regular files directly inside dir. A missing
// directory yields no files.
func listFiles(fs afero.Fs, dir string) ([]string, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	var names []string
	for _, info := range infos {
		if !info.Mode().IsRegular() || isTemp(info.Name()) {
			continue
		}

		names = append(names, info.Name())
	}

	return names, nil
}

// isTemp matches the leftovers of an interrupted atomic write
func isTemp(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}
