// Package bundle assembles the client and server output trees and packs
// them into zip archives.
package bundle

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/Norgate-AV/mpb/internal/config"
	"github.com/Norgate-AV/mpb/internal/logging"
	"github.com/Norgate-AV/mpb/internal/utils"
)

// Assembler builds the client overlay and the server installation
type Assembler struct {
	fs     afero.Fs
	layout config.Layout
	name   string
	sha    string
	log    *slog.Logger
}

// NewAssembler creates an assembler for layout. name and sha, when set,
// are appended to the archive names.
func NewAssembler(fs afero.Fs, layout config.Layout, name, sha string, log *slog.Logger) *Assembler {
	return &Assembler{
		fs:     fs,
		layout: layout,
		name:   name,
		sha:    sha,
		log:    logging.OrDiscard(log),
	}
}

// Prepare creates the output directories
func (a *Assembler) Prepare() error {
	for _, dir := range []string{a.layout.Overrides, a.layout.Server, a.layout.Mods, a.layout.Cache} {
		if err := a.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	return nil
}

// BuildClient copies the static directories and the staged mods into the
// client overrides, adds the manifest and zips the client tree. It returns
// the archive path.
func (a *Assembler) BuildClient() (string, error) {
	if err := CopyDirs(a.fs, a.layout.Base, a.layout.Overrides, config.ClientDirs, a.log); err != nil {
		return "", err
	}
	a.log.Info("directories copied to client")

	if err := utils.CopyFile(a.fs, a.layout.Manifest, filepath.Join(a.layout.Client, "manifest.json")); err != nil {
		return "", fmt.Errorf("failed to copy manifest: %w", err)
	}

	archive := ArchiveName(a.layout.Out, "client", a.name, a.sha)
	if err := Zip(a.fs, a.layout.Client, archive); err != nil {
		return "", err
	}

	a.log.Info("client archive made", "path", archive)
	return archive, nil
}

// StageServer copies the root files and static directories into the
// server tree
func (a *Assembler) StageServer() error {
	if err := CopyFiles(a.fs, a.layout.Base, a.layout.Server, config.ServerFiles, a.log); err != nil {
		return err
	}

	if err := CopyDirs(a.fs, a.layout.Base, a.layout.Server, config.ServerDirs, a.log); err != nil {
		return err
	}

	a.log.Info("directories copied to server")
	return nil
}

// ArchiveServer zips the server tree and returns the archive path
func (a *Assembler) ArchiveServer() (string, error) {
	archive := ArchiveName(a.layout.Out, "server", a.name, a.sha)
	if err := Zip(a.fs, a.layout.Server, archive); err != nil {
		return "", err
	}

	a.log.Info("server archive made", "path", archive)
	return archive, nil
}

// WriteModlist writes the modlist page into the output directory
func (a *Assembler) WriteModlist(title string, mods []string) error {
	if err := WriteModlist(a.fs, a.layout.Modlist, title, mods); err != nil {
		return err
	}

	a.log.Info("modlist written", "path", a.layout.Modlist, "mods", len(mods))
	return nil
}
