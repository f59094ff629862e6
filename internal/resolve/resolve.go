// Package resolve turns indexed manifest entries (project ID, file ID) into
// concrete download locations using the metadata service.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Norgate-AV/mpb/internal/fetch"
	"github.com/Norgate-AV/mpb/internal/manifest"
	"github.com/Norgate-AV/mpb/internal/utils"
)

// DefaultMetadataURL is the metadata service queried for indexed files
const DefaultMetadataURL = "https://cursemeta.dries007.net"

// File is a resolved indexed artifact
type File struct {
	ProjectID   int    `json:"projectID"`
	FileID      int    `json:"fileID"`
	FileName    string `json:"FileName"`
	DownloadURL string `json:"DownloadURL"`
}

// Resolver looks up the file name and download URL of an indexed artifact
type Resolver interface {
	Resolve(ctx context.Context, projectID, fileID int) (File, error)
}

// HTTPResolver queries <base>/<projectID>/<fileID>.json
type HTTPResolver struct {
	base    string
	fetcher fetch.Fetcher
}

// NewHTTPResolver creates a resolver for the metadata service at base
func NewHTTPResolver(base string, fetcher fetch.Fetcher) *HTTPResolver {
	if base == "" {
		base = DefaultMetadataURL
	}

	return &HTTPResolver{
		base:    strings.TrimSuffix(base, "/"),
		fetcher: fetcher,
	}
}

// Resolve performs a single metadata lookup. Every failure is returned as
// *ResolutionError.
func (r *HTTPResolver) Resolve(ctx context.Context, projectID, fileID int) (File, error) {
	url := fmt.Sprintf("%s/%d/%d.json", r.base, projectID, fileID)

	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return File{}, &ResolutionError{ProjectID: projectID, FileID: fileID, Err: err}
	}

	var meta struct {
		FileName    string `json:"FileName"`
		DownloadURL string `json:"DownloadURL"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return File{}, &ResolutionError{ProjectID: projectID, FileID: fileID, Err: fmt.Errorf("malformed metadata: %w", err)}
	}

	f := File{
		ProjectID:   projectID,
		FileID:      fileID,
		FileName:    meta.FileName,
		DownloadURL: meta.DownloadURL,
	}

	if err := f.validate(); err != nil {
		return File{}, &ResolutionError{ProjectID: projectID, FileID: fileID, Err: err}
	}

	return f, nil
}

// DiskName is the name the artifact is stored under: the resolved file
// name, or the last segment of the download URL when none was given
func (f File) DiskName() string {
	if f.FileName != "" {
		return f.FileName
	}

	name, _ := utils.FileNameFromURL(f.DownloadURL)
	return name
}

func (f File) validate() error {
	if f.DownloadURL == "" {
		return fmt.Errorf("metadata has no download url")
	}

	if !utils.ValidFileName(f.DiskName()) {
		return fmt.Errorf("metadata has unusable file name %q", f.DiskName())
	}

	return nil
}

// ResolveAll resolves files in manifest order, one lookup at a time. The
// metadata service is rate limited, so lookups are never parallel. The
// first failure aborts.
func ResolveAll(ctx context.Context, r Resolver, files []manifest.IndexedArtifact, log *slog.Logger) ([]File, error) {
	resolved := make([]File, 0, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		file, err := r.Resolve(ctx, f.ProjectID, f.FileID)
		if err != nil {
			return nil, err
		}

		log.Debug("resolved indexed artifact", "project", f.ProjectID, "file", f.FileID, "name", file.FileName)
		resolved = append(resolved, file)
	}

	return resolved, nil
}
