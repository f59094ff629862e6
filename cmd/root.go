package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/mpb/internal/codes"
	"github.com/Norgate-AV/mpb/internal/config"
	"github.com/Norgate-AV/mpb/internal/version"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "mpb",
		Short:        "Modpack bundle builder",
		Long:         `Builds the client and server bundles of a Minecraft modpack from its manifest.json`,
		RunE:         runBuild,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	flags := rootCmd.PersistentFlags()
	flags.StringP("dir", "d", "", "Pack directory containing manifest.json (defaults to the working directory)")
	flags.Int("retries", config.DefaultRetries, "Download attempts per hashed artifact before failing")
	flags.IntP("jobs", "j", config.DefaultJobs, "Hashed artifacts downloaded concurrently (1 is sequential)")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for each download")
	flags.Int64("max-download-size", 0, "Reject downloads larger than this many bytes (0 disables)")
	flags.String("metadata-url", config.DefaultMetadataURL, "Metadata service used to resolve indexed files")
	flags.String("forge-maven", config.DefaultForgeMaven, "Maven repository the server installer is downloaded from")
	flags.String("vanilla-url", "", "Vanilla server jar URL")
	flags.String("java", config.DefaultJavaPath, "Java executable used to run the server installer")
	flags.Bool("sha", false, "Append the short git revision to archive names")
	flags.StringP("name", "n", "", "Append a name to archive names")
	flags.Bool("no-cache", false, "Ignore cached downloads and resolutions")
	flags.Bool("skip-install", false, "Do not run the server installer")
	flags.BoolP("verbose", "v", false, "Verbose output")
	rootCmd.Flags().Bool("clean", false, "Remove build outputs and exit")

	rootCmd.AddCommand(newBuildCmd(), newCleanCmd())

	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		code := codes.FromError(err)
		fmt.Fprintf(os.Stderr, "Build failed (exit code %d): %s\n", code, codes.GetErrorMessage(code))
		os.Exit(code)
	}
}
