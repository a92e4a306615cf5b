package main

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"toonarchive/config"
	"toonarchive/internal/checkpoint"
	"toonarchive/models"
	"toonarchive/services/dataset"
	"toonarchive/services/enrich"
	"toonarchive/services/overrides"
	"toonarchive/services/tmdb"
	"toonarchive/services/trakt"
)

var (
	flagEnv     string
	flagDataDir string
	flagUser    string
	flagLists   []string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", ".env", "path to the .env credentials file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", config.DefaultDataDir, "directory for checkpoint files")

	exportCmd.Flags().StringVar(&flagUser, "user", config.DefaultUser, "Trakt user owning the lists")
	exportCmd.Flags().StringArrayVar(&flagLists, "list", config.DefaultLists, "list slug to export (repeatable)")

	rootCmd.AddCommand(exportCmd, overridesCmd, enrichCmd, prepareCmd, serveCmd)
}

func loadConfig() (*config.Config, *checkpoint.Store, error) {
	cfg, err := config.Load(flagEnv)
	if err != nil {
		return nil, nil, err
	}
	cfg.DataDir = flagDataDir
	return cfg, checkpoint.NewStore(cfg.DataDir), nil
}

// readStage loads a checkpoint, pointing at the producing command when
// the file is missing.
func readStage[T any](store *checkpoint.Store, name, producer string) ([]T, error) {
	rows, err := checkpoint.ReadCSV[T](store, name)
	if err != nil {
		if errors.Is(err, checkpoint.ErrMissing) {
			return nil, fmt.Errorf("%w; run 'toonarchive %s' first", err, producer)
		}
		return nil, err
	}
	return rows, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch the configured Trakt lists into the raw checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireTrakt(); err != nil {
			return err
		}

		ctx := cmd.Context()
		client := trakt.NewClient(cfg.TraktClientID)
		if err := client.Probe(ctx); err != nil {
			return err
		}

		items, err := client.ExportLists(ctx, flagUser, flagLists)
		if err != nil {
			return err
		}

		if err := checkpoint.WriteCSV(store, checkpoint.FileRawList, items); err != nil {
			return err
		}
		if err := checkpoint.WriteJSON(store, checkpoint.FileRawList, items); err != nil {
			return err
		}
		log.Printf("[export] wrote %s (%d rows)", checkpoint.FileRawList, len(items))
		return nil
	},
}

var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Apply the manual TMDB id corrections onto the raw export",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadConfig()
		if err != nil {
			return err
		}

		items, err := readStage[models.ListItem](store, checkpoint.FileRawList, "export")
		if err != nil {
			return err
		}
		ov, err := checkpoint.ReadCSV[models.OverrideRow](store, checkpoint.FileOverrides)
		if err != nil {
			if errors.Is(err, checkpoint.ErrMissing) {
				return fmt.Errorf("%w; provide %s next to the raw export", err, checkpoint.FileOverrides)
			}
			return err
		}

		fixed, overridden := overrides.Apply(items, ov)
		if err := checkpoint.WriteCSV(store, checkpoint.FileFixedList, fixed); err != nil {
			return err
		}
		if err := checkpoint.WriteJSON(store, checkpoint.FileFixedList, fixed); err != nil {
			return err
		}
		log.Printf("[overrides] wrote %s (%d rows, %d overridden)", checkpoint.FileFixedList, len(fixed), overridden)
		return nil
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Resolve TMDB metadata for every exported row",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, store, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireTMDB(); err != nil {
			return err
		}

		items, err := readStage[models.ListItem](store, checkpoint.FileFixedList, "overrides")
		if err != nil {
			return err
		}

		svc := enrich.NewService(tmdb.NewClient(cfg.TMDBAPIKey))
		recs, problems, err := svc.Run(cmd.Context(), items)
		if err != nil {
			return err
		}

		if err := checkpoint.WriteCSV(store, checkpoint.FileEnriched, recs); err != nil {
			return err
		}
		if err := checkpoint.WriteJSON(store, checkpoint.FileEnriched, recs); err != nil {
			return err
		}
		if len(problems) > 0 {
			if err := checkpoint.WriteCSV(store, checkpoint.FileProblems, problems); err != nil {
				return err
			}
		}
		log.Printf("[enrich] wrote %s (%d rows, %d problems)", checkpoint.FileEnriched, len(recs), len(problems))
		return nil
	},
}

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Derive the clean catalog table from the enriched export",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadConfig()
		if err != nil {
			return err
		}

		recs, err := readStage[models.EnrichedRecord](store, checkpoint.FileEnriched, "enrich")
		if err != nil {
			return err
		}

		clean := dataset.Normalize(recs)
		if err := checkpoint.WriteCSV(store, checkpoint.FileClean, clean); err != nil {
			return err
		}
		log.Printf("[prepare] wrote %s (%d rows)", checkpoint.FileClean, len(clean))
		return nil
	},
}
