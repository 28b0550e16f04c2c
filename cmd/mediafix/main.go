// Command mediafix re-applies public-read visibility to every media object
// under a folder prefix.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"alcyxob/workout-telemetry/internal/config"
	"alcyxob/workout-telemetry/internal/logging"
	"alcyxob/workout-telemetry/internal/storage"

	log "github.com/sirupsen/logrus"
)

func main() {
	prefix := flag.String("prefix", "sessions/", "object key prefix to fix")
	configDir := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	logging.Setup(logging.ParamsFromConfig(cfg.Log, "mediafix"))

	if !cfg.Media.Enabled() {
		log.Fatalln("media storage is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileStorage, err := storage.NewS3Storage(ctx, cfg.Media)
	if err != nil {
		log.Fatalf("failed to initialize media storage: %s", err)
	}

	report, err := storage.FixVisibility(ctx, fileStorage, *prefix)
	if err != nil {
		log.Fatalf("fix visibility under %q: %s", *prefix, err)
	}
	log.Infof("visibility fixed under %q: total=%d succeeded=%d failed=%d",
		*prefix, report.Total, report.Succeeded, report.Failed)
	for key, msg := range report.Failures {
		log.Warnf("  %s: %s", key, msg)
	}
	if report.Failed > 0 {
		os.Exit(1)
	}
}
