package bundle

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// ArchiveName returns <outDir>/<base>[-<name>][-<sha>].zip
func ArchiveName(outDir, base, name, sha string) string {
	parts := []string{base}
	if name != "" {
		parts = append(parts, name)
	}

	if sha != "" {
		parts = append(parts, sha)
	}

	return filepath.Join(outDir, strings.Join(parts, "-")+".zip")
}

// Zip archives the contents of srcDir into dest. Entry names are relative
// to srcDir and use forward slashes.
func Zip(fs afero.Fs, srcDir, dest string) (err error) {
	if err := fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	out, err := fs.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}

		if err != nil {
			fs.Remove(dest)
		}
	}()

	zw := zip.NewWriter(out)

	err = afero.Walk(fs, srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		if rel == "." {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(rel)

		if info.IsDir() {
			header.Name += "/"
			_, err := zw.CreateHeader(header)
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := fs.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", srcDir, err)
	}

	return zw.Close()
}
