package cmd

import (
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/mpb/internal/cache"
	"github.com/Norgate-AV/mpb/internal/config"
	"github.com/Norgate-AV/mpb/internal/logging"
)

func newCleanCmd() *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:          "clean",
		Short:        "Remove build outputs",
		Long:         `Remove the client overrides, the server tree, the staged mods, the resolution store and the download cache.`,
		RunE:         runClean,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}

	cleanCmd.Flags().Bool("keep-cache", false, "Keep the download cache")

	return cleanCmd
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader().LoadForBuild(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	keepCache := false
	if f := cmd.Flags().Lookup("keep-cache"); f != nil {
		keepCache = f.Value.String() == "true"
	}

	log := logging.New(cmd.ErrOrStderr(), cfg.Verbose)

	return clean(afero.NewOsFs(), cfg.Layout(), keepCache, log)
}

// clean removes every build output under layout. All removals are
// attempted and their failures reported together.
func clean(fs afero.Fs, layout config.Layout, keepCache bool, log *slog.Logger) error {
	targets := []string{layout.Overrides, layout.Server, layout.Mods, layout.Index}
	if !keepCache {
		targets = append(targets, layout.Cache+".lock")
	}

	var result *multierror.Error
	for _, target := range targets {
		if err := fs.RemoveAll(target); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to remove %s: %w", target, err))
			continue
		}

		log.Debug("removed", "path", target)
	}

	if err := cleanCache(fs, layout.Cache, keepCache, log); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	log.Info("build outputs removed", "dir", layout.Base)
	return nil
}

func cleanCache(fs afero.Fs, dir string, keep bool, log *slog.Logger) error {
	store, err := cache.New(fs, dir)
	if err != nil {
		return err
	}

	if !keep {
		return store.Clear()
	}

	entries, err := store.Entries()
	if err != nil {
		return fmt.Errorf("failed to list cache: %w", err)
	}

	log.Info("keeping cache", "dir", dir, "entries", len(entries))
	return nil
}
