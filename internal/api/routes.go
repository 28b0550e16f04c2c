package api

import (
	"net/http"

	"alcyxob/workout-telemetry/internal/domain"
	"alcyxob/workout-telemetry/internal/metrics"
	"alcyxob/workout-telemetry/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles everything the routes dispatch to.
type Services struct {
	Auth        service.AuthService
	Users       service.UserService
	Sessions    service.SessionService
	Queries     service.QueryService
	Connections service.ConnectionService
	Admin       service.AdminService
	Video       VideoProcessor
	Live        LiveStarter
}

// RouterConfig holds the HTTP wiring that does not come from services.
type RouterConfig struct {
	BasePath    string
	JWTSecret   string
	CORSOrigins []string
	Metrics     *metrics.Manager
	Gatherer    prometheus.Gatherer
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(cfg RouterConfig, services Services) *gin.Engine {
	router := gin.New()
	router.Use(
		PanicRecovery(cfg.Metrics),
		LogRequest(),
		RequestMetrics(cfg.Metrics),
		Cors(cfg.CORSOrigins),
	)
	SetupRoutes(router, cfg, services)
	return router
}

func SetupRoutes(router *gin.Engine, cfg RouterConfig, services Services) {
	authHandler := NewAuthHandler(services.Auth)
	userHandler := NewUserHandler(services.Users, services.Queries, services.Connections)
	sessionHandler := NewSessionHandler(services.Sessions, services.Queries)
	connectionHandler := NewConnectionHandler(services.Connections)
	videoHandler := NewVideoHandler(services.Video, services.Live)
	adminHandler := NewAdminHandler(services.Admin, services.Queries)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	base := router.Group(cfg.BasePath)

	sessions := base.Group("/sessions")
	{
		sessions.POST("/add", sessionHandler.Add)
		sessions.GET("/athlete/:name", sessionHandler.ListByAthlete)
		sessions.GET("/all-athletes", sessionHandler.ListAthletes)
		sessions.GET("/:id/reps", sessionHandler.Reps)
		sessions.DELETE("/:id", sessionHandler.Delete)
	}

	auth := base.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/check-email", authHandler.CheckEmail)
	}

	users := base.Group("/users")
	{
		users.POST("/profile", userHandler.UpsertProfile)
		users.PATCH("/profile/:userId", userHandler.PatchProfile)
		users.GET("/profile/:userId", userHandler.GetProfile)
		users.GET("/all", userHandler.ListUsers(""))
		users.GET("/coaches", userHandler.ListUsers(domain.RoleCoach))
		users.GET("/athletes", userHandler.ListUsers(domain.RoleAthlete))
		users.GET("/discover", userHandler.Discover)
		users.GET("/:userId", userHandler.GetProfile)
		users.GET("/:userId/stats", userHandler.Stats)
		users.POST("/:userId/skills", userHandler.AddSkills)
	}

	connections := base.Group("/connections")
	{
		connections.POST("/request", connectionHandler.Request)
		connections.POST("/accept/:requestId", connectionHandler.Accept)
		connections.POST("/reject/:requestId", connectionHandler.Reject)
		connections.GET("/status/:userId1/:userId2", connectionHandler.Status)
		connections.GET("/pending/:userId", connectionHandler.Pending)
		connections.GET("/sent/:userId", connectionHandler.Sent)
		connections.GET("/list/:userId", connectionHandler.List)
	}

	base.POST("/process-video", videoHandler.ProcessVideo)
	base.POST("/start-live-recording", videoHandler.StartLiveRecording)
	base.GET("/results/:outputId", videoHandler.Results)
	base.GET("/frames/:outputId", videoHandler.Frames)
	base.GET("/frame/:outputId/:file", videoHandler.Frame)
	base.GET("/video/:outputId/:file", videoHandler.Video)

	db := base.Group("/db")
	db.Use(AuthMiddleware(cfg.JWTSecret), RoleMiddleware(domain.RoleAdmin))
	{
		db.GET("/health", adminHandler.Health)
		db.GET("/stats", adminHandler.Stats)
		db.GET("/users", adminHandler.Users)
		db.GET("/sessions", adminHandler.Sessions)
		db.GET("/sessions/:id", adminHandler.Session)
		db.GET("/reps", adminHandler.Reps)
		db.GET("/athletes", adminHandler.Athletes)
	}
}
