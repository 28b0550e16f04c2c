package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/workout-telemetry/internal/api"
	"alcyxob/workout-telemetry/internal/cache"
	"alcyxob/workout-telemetry/internal/config"
	"alcyxob/workout-telemetry/internal/logging"
	"alcyxob/workout-telemetry/internal/metrics"
	"alcyxob/workout-telemetry/internal/repository/mongo"
	"alcyxob/workout-telemetry/internal/service"
	"alcyxob/workout-telemetry/internal/storage"
	"alcyxob/workout-telemetry/internal/video"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %s", err)
	}

	hostname, _ := os.Hostname()
	logging.Setup(logging.ParamsFromConfig(cfg.Log, hostname))
	log.Infof("starting workout telemetry server, env: %s", cfg.Log.Environment)

	// --- Database Connection ---
	store := mongo.NewStore(cfg.Database.URI, cfg.Database.Name)
	if err := connect(store, cfg.Database.ConnectTimeout); err != nil {
		log.Fatalf("could not connect to mongodb: %s", err)
	}
	defer func() {
		log.Println("disconnecting mongodb ...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Errorf("failed to disconnect mongodb: %s", err)
		}
	}()
	appDB := store.MustDatabase()

	// --- Media Storage ---
	// A nil FileStorage keeps every payload inline.
	var fileStorage storage.FileStorage
	if cfg.Media.Enabled() {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.Media)
		if err != nil {
			log.Fatalf("failed to initialize media storage: %s", err)
		}
		log.Infof("media storage enabled, bucket: %s", cfg.Media.BucketName)
	} else {
		log.Warnln("media storage not configured, payloads will be stored inline")
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("workout", "telemetry", registry)

	// --- Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	repImageRepo := mongo.NewMongoRepImageRepository(appDB)
	connectionRepo := mongo.NewMongoConnectionRepository(appDB)

	// --- Services ---
	roster := cache.NewRosterCache(cfg.Cache.SizeMB, cfg.Cache.RosterTTL)
	authService := service.NewAuthService(userRepo, fileStorage, metricsManager, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo, fileStorage, metricsManager)
	sessionService := service.NewSessionService(sessionRepo, repImageRepo, fileStorage, roster, metricsManager)
	queryService := service.NewQueryService(sessionRepo, repImageRepo, roster)
	connectionService := service.NewConnectionService(connectionRepo, userRepo)
	adminService := service.NewAdminService(store, userRepo, sessionRepo, repImageRepo, connectionRepo)

	analyzers := video.NewScriptRegistry(cfg.Video)
	log.Infof("video analysis enabled for: %v", analyzers.Activities())
	gateway := video.NewGateway(
		analyzers,
		video.NewFFmpeg(cfg.Video.FFmpegPath, cfg.Video.FrameRate),
		cfg.Video.UploadsDir,
		cfg.Video.OutputsDir,
		metricsManager,
	)
	liveRecorder := video.NewLiveRecorder(analyzers, cfg.Video.LiveDelay)

	// --- Router ---
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		BasePath:    cfg.Server.BasePath,
		JWTSecret:   authService.GetJWTSecret(),
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     metricsManager,
		Gatherer:    registry,
	}, api.Services{
		Auth:        authService,
		Users:       userService,
		Sessions:    sessionService,
		Queries:     queryService,
		Connections: connectionService,
		Admin:       adminService,
		Video:       gateway,
		Live:        liveRecorder,
	})

	// --- HTTP Server ---
	// No write timeout: video processing holds the request until the script finishes.
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infof("server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server ...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("server forced to shutdown: %s", err)
	}
	log.Println("server exiting")
}

func connect(store *mongo.Store, timeout time.Duration) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return store.Connect(ctx)
}
