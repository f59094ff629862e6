package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/mpb/internal/acquire"
	"github.com/Norgate-AV/mpb/internal/bundle"
	"github.com/Norgate-AV/mpb/internal/cache"
	"github.com/Norgate-AV/mpb/internal/config"
	"github.com/Norgate-AV/mpb/internal/fetch"
	"github.com/Norgate-AV/mpb/internal/installer"
	"github.com/Norgate-AV/mpb/internal/logging"
	"github.com/Norgate-AV/mpb/internal/manifest"
	"github.com/Norgate-AV/mpb/internal/resolve"
)

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "build",
		Short:        "Build the client and server bundles",
		Long:         `Download and verify every artifact in manifest.json, then assemble and zip the client and server bundles.`,
		RunE:         runBuild,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	if f := cmd.Flags().Lookup("clean"); f != nil && f.Changed {
		return runClean(cmd, args)
	}

	cfg, err := config.NewLoader().LoadForBuild(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logging.New(cmd.ErrOrStderr(), cfg.Verbose)

	return newBuilder(cfg, afero.NewOsFs(), log).run(cmd.Context())
}

// builder runs one build of the pack described by cfg
type builder struct {
	cfg    *config.Config
	layout config.Layout
	fs     afero.Fs
	log    *slog.Logger
}

func newBuilder(cfg *config.Config, fs afero.Fs, log *slog.Logger) *builder {
	return &builder{
		cfg:    cfg,
		layout: cfg.Layout(),
		fs:     fs,
		log:    log,
	}
}

func (b *builder) run(ctx context.Context) error {
	m, err := manifest.Load(b.layout.Manifest)
	if err != nil {
		return err
	}

	b.log.Info("building pack",
		"name", m.Name,
		"version", m.Version,
		"minecraft", m.Minecraft.Version,
		"loader", m.Loader().ID,
	)

	asm := bundle.NewAssembler(b.fs, b.layout, b.cfg.Name, b.revision(), b.log)
	if err := asm.Prepare(); err != nil {
		return err
	}

	store, err := cache.New(b.fs, b.layout.Cache)
	if err != nil {
		return err
	}

	unlock, err := store.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	adopted, err := store.Adopt(b.layout.ServerMods)
	if err != nil {
		return fmt.Errorf("failed to adopt previous server mods: %w", err)
	}

	if adopted > 0 {
		b.log.Info("adopted previous downloads into cache", "count", adopted)
	}

	fetcher := fetch.NewHTTPFetcher(
		fetch.WithTimeout(b.cfg.Timeout),
		fetch.WithMaxDownloadSize(b.cfg.MaxDownloadSize),
	)

	pipeline := acquire.New(b.fs, fetcher, store, acquire.Options{
		Retries:  b.cfg.Retries,
		Workers:  b.cfg.Jobs,
		UseCache: !b.cfg.NoCache,
		Logger:   b.log,
	})

	external, err := pipeline.AcquireExternal(ctx, m.ExternalDeps, b.layout.Mods)
	if err != nil {
		return err
	}

	b.log.Info("external artifacts ready", "count", len(external))

	if entries, size, err := store.Stats(); err == nil {
		b.log.Debug("cache", "dir", store.Dir(), "entries", entries, "bytes", size)
	}

	if _, err := asm.BuildClient(); err != nil {
		return err
	}

	files, err := b.resolve(ctx, fetcher, m.Files)
	if err != nil {
		return err
	}

	mods := acquire.Names(external)
	for _, f := range files {
		mods = append(mods, f.DiskName())
	}

	if err := asm.WriteModlist(m.Title(), mods); err != nil {
		return err
	}

	if err := asm.StageServer(); err != nil {
		return err
	}

	indexed, err := pipeline.AcquireIndexed(ctx, files, b.layout.ServerMods)
	if err != nil {
		return err
	}

	b.log.Info("indexed artifacts ready", "count", len(indexed))

	if b.cfg.SkipInstall {
		b.log.Info("skipping server install")
	} else {
		inst := installer.New(b.layout.Server, installer.Options{
			MavenURL:   b.cfg.ForgeMavenURL,
			VanillaURL: b.cfg.VanillaServerURL,
			JavaPath:   b.cfg.JavaPath,
			Timeout:    b.cfg.Timeout,
			Logger:     b.log,
		})

		if err := inst.Install(ctx, m.Minecraft.Version, m.LoaderVersion()); err != nil {
			return err
		}
	}

	if _, err := asm.ArchiveServer(); err != nil {
		return err
	}

	b.log.Info("build complete")
	return nil
}

// resolve looks up every indexed file, answering from the resolution
// store first unless caching is disabled
func (b *builder) resolve(ctx context.Context, fetcher fetch.Fetcher, files []manifest.IndexedArtifact) ([]resolve.File, error) {
	var resolver resolve.Resolver = resolve.NewHTTPResolver(b.cfg.MetadataURL, fetcher)

	if !b.cfg.NoCache {
		index, err := resolve.OpenStore(b.layout.Index)
		if err != nil {
			b.log.Warn("resolution store unavailable", "path", b.layout.Index, "error", err)
		} else {
			defer index.Close()

			if n, err := index.Count(); err == nil {
				b.log.Debug("resolution store", "path", b.layout.Index, "entries", n)
			}

			resolver = resolve.NewCachingResolver(resolver, index, b.log)
		}
	}

	return resolve.ResolveAll(ctx, resolver, files, b.log)
}

// revision returns the archive suffix for --sha, or "" when disabled or
// unavailable
func (b *builder) revision() string {
	if !b.cfg.SHA {
		return ""
	}

	sha, err := bundle.ShortRevision(b.layout.Base)
	if err != nil {
		b.log.Warn("could not determine git revision, skipping", "error", err)
		return ""
	}

	return sha
}
