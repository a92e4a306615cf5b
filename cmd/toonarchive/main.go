package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "toonarchive",
	Short:   "Build and serve the childhood cartoons catalog",
	Version: version,
	Long: `toonarchive builds a personal animation catalog from Trakt lists,
enriches it with TMDB metadata, normalizes the merged result and serves
it through the catalog browser API.

The pipeline runs as one command per stage, each persisting its output
as a checkpoint file the next stage reads:

  toonarchive export     # Trakt lists -> cartoons_trakt.csv
  toonarchive overrides  # + tmdb_overrides.csv -> cartoons_trakt_fixed.csv
  toonarchive enrich     # + TMDB lookups -> cartoons_enriched.csv
  toonarchive prepare    # -> cartoons_clean.csv
  toonarchive serve      # catalog browser API`,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
