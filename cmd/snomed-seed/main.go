package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/estuary/snomed-seed/internal/api"
	"github.com/estuary/snomed-seed/internal/checkpoint"
	"github.com/estuary/snomed-seed/internal/config"
	"github.com/estuary/snomed-seed/internal/graph"
	"github.com/estuary/snomed-seed/internal/job"
)

type cmdServe struct{}

var cfg config.Config

func (cmdServe) Execute(_ []string) error {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)

	log.WithFields(log.Fields{
		"importDirectory": cfg.Snomed.ImportDirectory,
		"batchSize":       cfg.Snomed.BatchSize,
		"activeOnly":      cfg.Snomed.ActiveOnly,
		"port":            cfg.Server.Port,
	}).Info("snomed-seed configuration")

	// The graph repository is an external collaborator in production; this
	// binary seeds an in-memory implementation so the control surface is
	// runnable standalone. A real deployment supplies a Gremlin-backed
	// graph.Repository in its place.
	repo := graph.NewInMemory()
	store := checkpoint.NewStore()
	controller := job.NewController(repo, store, cfg.Snomed.SnapshotDirectory())

	router := mux.NewRouter()
	api.New(controller, cfg.Snomed).Register(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("starting snomed-seed control surface")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig).Info("caught signal, shutting down HTTP server")
	case err := <-errCh:
		return fmt.Errorf("serving HTTP: %w", err)
	}

	// A seeding task in flight is neither paused nor cancelled here; it ends
	// when this process exits, leaving its checkpoint as last written.
	if controller.IsRunning() {
		log.Warn("a seeding job is still running; it stops when this process exits and can be resumed from its saved checkpoint with POST /api/snomed/seed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	log.Info("goodbye")
	return nil
}

func main() {
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.AddCommand("serve", "Serve the SNOMED CT ingestion control surface",
		"Serve the HTTP control surface and hold seeding jobs in memory until signaled to exit (SIGTERM/SIGINT).",
		&cmdServe{}); err != nil {
		log.WithError(err).Fatal("failed to register serve command")
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.WithError(err).Fatal("snomed-seed failed")
	}
}
