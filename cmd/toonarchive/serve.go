package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"toonarchive/api"
	"toonarchive/handlers"
	"toonarchive/internal/checkpoint"
	"toonarchive/models"
	"toonarchive/services/dataset"
	"toonarchive/services/recommend"
	"toonarchive/utils"
)

var (
	flagAddr    string
	flagLogFile string
)

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&flagLogFile, "log-file", "", "rotate logs into this file instead of stderr")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog browser API over the clean checkpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := loadConfig()
		if err != nil {
			return err
		}

		if flagLogFile != "" {
			log.SetOutput(&lumberjack.Logger{
				Filename:   flagLogFile,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
			})
		}

		clean, err := readStage[models.CleanRecord](store, checkpoint.FileClean, "prepare")
		if err != nil {
			return err
		}

		ds := dataset.NewService(clean)
		index := recommend.BuildIndex(clean)
		log.Printf("[serve] loaded %d records, similarity index %dx%d", len(clean), index.Len(), index.Len())

		router := utils.NewRouter()
		router.Use(api.RequestIDMiddleware())
		handlers.NewCatalogHandler(ds, index).RegisterRoutes(router)

		limiter := api.NewIPRateLimiter(rate.Limit(10), 30)
		srv := &http.Server{
			Addr:              flagAddr,
			Handler:           api.RateLimitHandler(limiter, router),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("[serve] listening on %s", flagAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-cmd.Context().Done():
			log.Printf("[serve] shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}
