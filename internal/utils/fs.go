package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// AtomicWriteFile writes data to a temporary file next to dst and renames it
// into place, so readers never observe a partially written file
func AtomicWriteFile(fs afero.Fs, dst string, data []byte, mode os.FileMode) (err error) {
	dir := filepath.Dir(dst)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tf, err := afero.TempFile(fs, dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tfName := tf.Name()
	defer func() {
		if err != nil {
			fs.Remove(tfName)
		}
	}()

	if _, err := tf.Write(data); err != nil {
		tf.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tf.Close(); err != nil {
		return err
	}

	if err := fs.Chmod(tfName, mode); err != nil {
		return err
	}

	return fs.Rename(tfName, dst)
}

// CopyFile copies a file from src to dst, preserving its permission bits
func CopyFile(fs afero.Fs, src, dst string) error {
	srcFile, err := fs.Open(src)
	if err != nil {
		return err
	}

	defer srcFile.Close()

	// Create parent directory if needed
	if err := fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := fs.Create(dst)
	if err != nil {
		return err
	}

	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := fs.Stat(src)
	if err != nil {
		return err
	}

	return fs.Chmod(dst, srcInfo.Mode().Perm())
}
