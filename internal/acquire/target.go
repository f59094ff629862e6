package acquire

import (
	"fmt"
	"os"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/spf13/afero"

	"github.com/Norgate-AV/mpb/internal/utils"
)

// fsVFS lets securejoin walk symlinks on the filesystem the pipeline
// writes through
type fsVFS struct {
	fs afero.Fs
}

func (v fsVFS) Lstat(name string) (os.FileInfo, error) {
	if l, ok := v.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}

	return v.fs.Stat(name)
}

func (v fsVFS) Readlink(name string) (string, error) {
	if r, ok := v.fs.(afero.LinkReader); ok {
		return r.ReadlinkIfPossible(name)
	}

	return "", &os.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
}

// targetPath returns where name is written inside modsDir. A symlink
// already sitting at that name is resolved without leaving modsDir.
func (p *Pipeline) targetPath(modsDir, name string) (string, error) {
	if !utils.ValidFileName(name) {
		return "", fmt.Errorf("invalid artifact file name %q", name)
	}

	target, err := securejoin.SecureJoinVFS(modsDir, name, fsVFS{fs: p.fs})
	if err != nil {
		return "", fmt.Errorf("failed to resolve target for %s: %w", name, err)
	}

	return target, nil
}
