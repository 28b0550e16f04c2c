// Command reconcile rolls back sessions whose ingestion never completed.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/workout-telemetry/internal/config"
	"alcyxob/workout-telemetry/internal/logging"
	"alcyxob/workout-telemetry/internal/repository/mongo"
	"alcyxob/workout-telemetry/internal/service"

	log "github.com/sirupsen/logrus"
)

type reconciler interface {
	Reconcile(ctx context.Context, olderThan time.Duration) (int, error)
}

func main() {
	os.Exit(run())
}

// run keeps the deferred cleanup ahead of the process exit.
func run() int {
	olderThan := flag.Duration("older-than", 10*time.Minute, "only roll back pending sessions created before now minus this")
	configDir := flag.String("config", ".", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	logging.Setup(logging.ParamsFromConfig(cfg.Log, "reconcile"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := mongo.NewStore(cfg.Database.URI, cfg.Database.Name)
	if err := store.Connect(ctx); err != nil {
		log.Fatalf("could not connect to mongodb: %s", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Errorf("failed to disconnect mongodb: %s", err)
		}
	}()
	db := store.MustDatabase()

	// Rolling back never uploads, and the server's roster cache expires on its own.
	sessionService := service.NewSessionService(
		mongo.NewMongoSessionRepository(db),
		mongo.NewMongoRepImageRepository(db),
		nil,
		nil,
		nil,
	)

	if err := reconcile(ctx, sessionService, *olderThan); err != nil {
		return 1
	}
	return 0
}

// reconcile reports how many sessions were rolled back even when some failed.
func reconcile(ctx context.Context, r reconciler, olderThan time.Duration) error {
	removed, err := r.Reconcile(ctx, olderThan)
	if err != nil {
		log.Errorf("reconcile finished with errors, %d pending sessions rolled back: %s", removed, err)
		return err
	}
	log.Infof("reconcile done, %d pending sessions rolled back", removed)
	return nil
}
