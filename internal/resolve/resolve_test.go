package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/mpb/internal/fetch"
	"github.com/Norgate-AV/mpb/internal/logging"
	"github.com/Norgate-AV/mpb/internal/manifest"
)

// mapFetcher serves canned bodies by URL and records requests
type mapFetcher struct {
	bodies map[string]string
	calls  []string
}

func (f *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)

	body, ok := f.bodies[url]
	if !ok {
		return nil, &fetch.NetworkError{URL: url, StatusCode: 404, Err: fmt.Errorf("not found")}
	}

	return []byte(body), nil
}

func TestHTTPResolver_Resolve(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{
		"https://meta.test/1/10.json": `{"FileName": "a.jar", "DownloadURL": "https://cdn.test/files/a.jar"}`,
		"https://meta.test/2/20.json": `{"DownloadURL": "https://cdn.test/files/b.jar"}`,
		"https://meta.test/3/30.json": `not json`,
		"https://meta.test/4/40.json": `{"FileName": "d.jar"}`,
		"https://meta.test/5/50.json": `{"FileName": "../d.jar", "DownloadURL": "https://cdn.test/files/d.jar"}`,
	}}
	r := NewHTTPResolver("https://meta.test/", f)

	tests := []struct {
		name        string
		projectID   int
		fileID      int
		want        File
		wantDisk    string
		errContains string
	}{
		{
			name:      "resolves name and url",
			projectID: 1, fileID: 10,
			want:     File{ProjectID: 1, FileID: 10, FileName: "a.jar", DownloadURL: "https://cdn.test/files/a.jar"},
			wantDisk: "a.jar",
		},
		{
			name:      "missing file name falls back to url",
			projectID: 2, fileID: 20,
			want:     File{ProjectID: 2, FileID: 20, DownloadURL: "https://cdn.test/files/b.jar"},
			wantDisk: "b.jar",
		},
		{
			name:      "malformed metadata",
			projectID: 3, fileID: 30,
			errContains: "malformed metadata",
		},
		{
			name:      "missing download url",
			projectID: 4, fileID: 40,
			errContains: "no download url",
		},
		{
			name:      "unsafe file name",
			projectID: 5, fileID: 50,
			errContains: "unusable file name",
		},
		{
			name:      "lookup failure",
			projectID: 6, fileID: 60,
			errContains: "status 404",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.projectID, tt.fileID)
			if tt.errContains != "" {
				require.Error(t, err)

				var rerr *ResolutionError
				require.True(t, errors.As(err, &rerr))
				assert.Equal(t, tt.projectID, rerr.ProjectID)
				assert.Equal(t, tt.fileID, rerr.FileID)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDisk, got.DiskName())
		})
	}
}

func TestResolveAll(t *testing.T) {
	f := &mapFetcher{bodies: map[string]string{
		"https://meta.test/1/10.json": `{"FileName": "a.jar", "DownloadURL": "https://cdn.test/a.jar"}`,
		"https://meta.test/2/20.json": `{"FileName": "b.jar", "DownloadURL": "https://cdn.test/b.jar"}`,
	}}
	r := NewHTTPResolver("https://meta.test", f)

	files, err := ResolveAll(context.Background(), r, []manifest.IndexedArtifact{
		{ProjectID: 2, FileID: 20},
		{ProjectID: 1, FileID: 10},
	}, logging.Discard())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "b.jar", files[0].FileName, "manifest order is kept")
	assert.Equal(t, "a.jar", files[1].FileName)

	// First failure aborts, later entries are never looked up
	f.calls = nil
	_, err = ResolveAll(context.Background(), r, []manifest.IndexedArtifact{
		{ProjectID: 9, FileID: 90},
		{ProjectID: 1, FileID: 10},
	}, logging.Discard())
	require.Error(t, err)

	var rerr *ResolutionError
	assert.True(t, errors.As(err, &rerr))
	assert.Equal(t, []string{"https://meta.test/9/90.json"}, f.calls)
}
