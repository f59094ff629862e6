// Package acquire turns the manifest's artifact lists into a populated mods
// directory.
//
// Hashed (external) artifacts go through a small state machine:
//
//	Start -> CacheHit                     cached bytes match the hash
//	Start -> Downloading -> Fetched       an attempt matched the hash
//	Start -> Downloading -> Failed        the retry budget ran out
//
// Cached bytes are re-verified before being trusted, and every digest is
// computed from the bytes just fetched. Only verified downloads are added to
// the cache.
//
// Indexed artifacts have no hash. They are copied from the cache when
// present and otherwise fetched exactly once; any failure is fatal.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/Norgate-AV/mpb/internal/fetch"
	"github.com/Norgate-AV/mpb/internal/logging"
	"github.com/Norgate-AV/mpb/internal/manifest"
	"github.com/Norgate-AV/mpb/internal/resolve"
	"github.com/Norgate-AV/mpb/internal/utils"
	"github.com/Norgate-AV/mpb/internal/verify"
)

// Default option values
const (
	DefaultRetries = 3
	DefaultWorkers = 4
)

// Store is the subset of the local cache used by the pipeline
type Store interface {
	Lookup(name string) ([]byte, bool, error)
	Put(name string, data []byte) error
	Replace(name string, data []byte) error
}

// Options configures a Pipeline
type Options struct {
	// Retries is the number of fetch-and-verify attempts per hashed artifact
	Retries int

	// Workers bounds how many hashed artifacts are processed at once
	Workers int

	// UseCache enables cache lookups. Verified downloads are stored either way.
	UseCache bool

	Logger *slog.Logger
}

// Pipeline acquires artifacts into a mods directory
type Pipeline struct {
	fs       afero.Fs
	fetcher  fetch.Fetcher
	store    Store
	retries  int
	workers  int
	useCache bool
	log      *slog.Logger
}

// New creates a pipeline writing through fs
func New(fs afero.Fs, fetcher fetch.Fetcher, store Store, opts Options) *Pipeline {
	if opts.Retries < 1 {
		opts.Retries = DefaultRetries
	}

	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}

	return &Pipeline{
		fs:       fs,
		fetcher:  fetcher,
		store:    store,
		retries:  opts.Retries,
		workers:  opts.Workers,
		useCache: opts.UseCache,
		log:      logging.OrDiscard(opts.Logger),
	}
}

// AcquireExternal materializes every hashed artifact in modsDir. Results
// are returned in manifest order. The first artifact to fail cancels the
// rest and its error is returned together with the results so far: an
// artifact that ran out of attempts is marked Failed, and artifacts that
// never finished are left zero.
func (p *Pipeline) AcquireExternal(ctx context.Context, deps []manifest.ExternalArtifact, modsDir string) ([]Result, error) {
	if err := p.fs.MkdirAll(modsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mods directory: %w", err)
	}

	results := make([]Result, len(deps))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, dep := range deps {
		g.Go(func() error {
			res, err := p.acquireExternal(ctx, dep, modsDir)
			if err != nil {
				var exhausted *VerificationExhaustedError
				if errors.As(err, &exhausted) {
					results[i] = Result{
						Name:     dep.Name,
						FileName: dep.FileName(),
						Outcome:  Failed,
						Attempts: exhausted.Attempts,
					}
				}

				return err
			}

			results[i] = res
			return nil
		})
	}

	return results, g.Wait()
}

func (p *Pipeline) acquireExternal(ctx context.Context, dep manifest.ExternalArtifact, modsDir string) (Result, error) {
	// Queued work is skipped once the build is aborted
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	name := dep.FileName()
	if !utils.ValidFileName(name) {
		return Result{}, fmt.Errorf("artifact %s has no usable file name in %q", dep.Name, dep.URL)
	}

	target, err := p.targetPath(modsDir, name)
	if err != nil {
		return Result{}, err
	}

	log := p.log.With("artifact", dep.Name, "file", name)

	stale := false
	if p.useCache {
		data, ok, err := p.store.Lookup(name)
		if err != nil {
			return Result{}, err
		}

		if ok {
			if verify.Matches(data, dep.Hash) {
				if err := utils.AtomicWriteFile(p.fs, target, data, 0o644); err != nil {
					return Result{}, fmt.Errorf("failed to write %s: %w", name, err)
				}

				log.Info("loaded from cache")
				return Result{Name: dep.Name, FileName: name, Path: target, Outcome: CacheHit}, nil
			}

			log.Warn("cached copy does not match manifest hash, downloading", "digest", verify.Digest(data))
			stale = true
		}
	}

	exhausted := &VerificationExhaustedError{Name: dep.Name, URL: dep.URL}

	for attempt := 1; attempt <= p.retries; attempt++ {
		exhausted.Attempts = attempt

		data, err := p.fetcher.Fetch(ctx, dep.URL)
		if err != nil {
			// Aborted by another artifact's failure, not a failed attempt
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}

			exhausted.LastErr = err
			log.Warn("download failed", "attempt", attempt, "of", p.retries, "error", err)
			continue
		}

		digest := verify.Digest(data)
		if !verify.Matches(data, dep.Hash) {
			exhausted.LastDigest = digest
			exhausted.LastErr = nil
			log.Warn("hash mismatch, use this digest if it is consistent across runs",
				"attempt", attempt, "of", p.retries, "expected", dep.Hash, "digest", digest)
			continue
		}

		if err := utils.AtomicWriteFile(p.fs, target, data, 0o644); err != nil {
			return Result{}, fmt.Errorf("failed to write %s: %w", name, err)
		}

		store := p.store.Put
		if stale {
			store = p.store.Replace
		}

		if err := store(name, data); err != nil {
			return Result{}, err
		}

		log.Info("downloaded", "attempt", attempt, "digest", digest)
		return Result{Name: dep.Name, FileName: name, Path: target, Outcome: Fetched, Attempts: attempt}, nil
	}

	log.Error("giving up", "attempts", p.retries)
	return Result{}, exhausted
}

// AcquireIndexed materializes resolved indexed artifacts in modsDir, one at
// a time. There is no retry and no verification: a fetch failure is
// returned immediately as *fetch.NetworkError.
func (p *Pipeline) AcquireIndexed(ctx context.Context, files []resolve.File, modsDir string) ([]Result, error) {
	if err := p.fs.MkdirAll(modsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mods directory: %w", err)
	}

	results := make([]Result, 0, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.acquireIndexed(ctx, f, modsDir)
		if err != nil {
			return nil, err
		}

		results = append(results, res)
	}

	return results, nil
}

func (p *Pipeline) acquireIndexed(ctx context.Context, f resolve.File, modsDir string) (Result, error) {
	name := f.DiskName()
	if !utils.ValidFileName(name) {
		return Result{}, fmt.Errorf("project %d file %d has no usable file name", f.ProjectID, f.FileID)
	}

	target, err := p.targetPath(modsDir, name)
	if err != nil {
		return Result{}, err
	}

	if p.useCache {
		data, ok, err := p.store.Lookup(name)
		if err != nil {
			return Result{}, err
		}

		if ok {
			if err := utils.AtomicWriteFile(p.fs, target, data, 0o644); err != nil {
				return Result{}, fmt.Errorf("failed to write %s: %w", name, err)
			}

			p.log.Info("loaded from cache", "file", name)
			return Result{Name: name, FileName: name, Path: target, Outcome: CacheHit}, nil
		}
	}

	data, err := p.fetcher.Fetch(ctx, f.DownloadURL)
	if err != nil {
		var nerr *fetch.NetworkError
		if !errors.As(err, &nerr) {
			err = &fetch.NetworkError{URL: f.DownloadURL, Err: err}
		}

		return Result{}, err
	}

	if err := utils.AtomicWriteFile(p.fs, target, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", name, err)
	}

	p.log.Info("downloaded", "file", name, "url", f.DownloadURL)
	return Result{Name: name, FileName: name, Path: target, Outcome: Fetched, Attempts: 1}, nil
}
