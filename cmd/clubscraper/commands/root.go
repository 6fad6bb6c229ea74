package commands

import (
	"context"
	"fmt"
	"os"

	"clubscraper/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var RootCmd = &cobra.Command{
	Use:   "clubscraper",
	Short: "clubscraper collects the fitness club directory of clubs.ma for Casablanca.",
	Long:  "clubscraper collects the fitness club directory of clubs.ma for Casablanca.\nRunning it without a subcommand is the same as running `clubscraper scrape`.",
	Args:  cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		serviceutil.InitSlog(verbose)
	},
	Run: runScrape,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "clubscraper.json5", "path to an optional json5 config file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func Execute(ctx context.Context) {
	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
