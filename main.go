package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dating-match-server/internal/auth"
	"dating-match-server/internal/cleanup"
	"dating-match-server/internal/config"
	"dating-match-server/internal/database"
	"dating-match-server/internal/handlers"
	"dating-match-server/internal/likes"
	"dating-match-server/internal/logging"
	"dating-match-server/internal/matching"
	"dating-match-server/internal/middleware"
	"dating-match-server/internal/notify"
	"dating-match-server/internal/redis"
	"dating-match-server/internal/repository"
	"dating-match-server/internal/services"
	"dating-match-server/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type app struct {
	cfg           *config.Config
	log           *logrus.Logger
	tokens        *auth.TokenManager
	users         *repository.UserRepository
	redis         *redis.Client
	hub           *websocket.Hub
	auth          *handlers.AuthHandler
	user          *handlers.UserHandler
	match         *handlers.MatchHandler
	message       *handlers.MessageHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler
}

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Debug("No .env file found")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	// Redis carries rate limiting and cross-instance notification fan-out.
	// Without it the server runs single-instance.
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, running without rate limiting and pub/sub")
		redisClient = nil
	}

	var storage services.ObjectStorage
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logger.WithError(err).Warn("Object storage unavailable, media uploads disabled")
	} else {
		if err := storageService.EnsureBucket(ctx); err != nil {
			logger.WithError(err).Warn("Failed to ensure storage bucket")
		}
		storage = storageService
	}

	users := repository.NewUserRepository(db)
	messages := repository.NewMessageRepository(db)
	notifications := repository.NewNotificationRepository(db)
	reports := repository.NewReportRepository(db)

	hub := websocket.NewHub(logging.Component(logger, "websocket"), func(ctx context.Context, from, to uint) bool {
		u, err := users.FindByID(ctx, from)
		return err == nil && u.Matches.Contains(to) && !u.BlockedUsers.Contains(to)
	})
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	sinks := []notify.Publisher{notify.NewRecorder(notifications)}
	if redisClient != nil {
		fanout := notify.NewRedisPublisher(redisClient, logging.Component(logger, "pubsub"))
		if err := fanout.Subscribe(hubCtx, hub.Deliver); err != nil {
			logger.WithError(err).Fatal("Failed to subscribe to notifications")
		}
		sinks = append(sinks, fanout)
	} else {
		sinks = append(sinks, hub)
	}
	if cfg.PushEnabled() {
		push, err := notify.NewPushPublisher(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath, users)
		if err != nil {
			logger.WithError(err).Warn("Push notifications disabled")
		} else {
			sinks = append(sinks, push)
		}
	}
	dispatcher := notify.NewDispatcher(logging.Component(logger, "notify"), cfg.NotifyWorkers, cfg.NotifyQueueSize, sinks...)

	graph := likes.NewGraph(users, dispatcher, logging.Component(logger, "likes"))
	finder := matching.NewFinder(users, cfg.MatchScoringWorkers, logging.Component(logger, "matching"))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpiry, cfg.JWTRefreshExpiry)
	handlerLog := logging.Component(logger, "api")

	a := &app{
		cfg:           cfg,
		log:           logger,
		tokens:        tokens,
		users:         users,
		redis:         redisClient,
		hub:           hub,
		auth:          handlers.NewAuthHandler(users, tokens, handlerLog),
		user:          handlers.NewUserHandler(users, reports, graph, storage, cfg, handlerLog),
		match:         handlers.NewMatchHandler(finder),
		message:       handlers.NewMessageHandler(users, messages, dispatcher, storage, cfg, handlerLog),
		notifications: handlers.NewNotificationHandler(notifications),
		admin:         handlers.NewAdminHandler(users, reports, handlerLog),
	}

	job := cleanup.New(cfg.CleanupSchedule, messages, notifications, cfg.MessageRetention,
		cfg.NotificationRetention, logging.Component(logger, "cleanup"))
	if err := job.Start(hubCtx); err != nil {
		logger.WithError(err).Fatal("Failed to start cleanup job")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRoutes(a),
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown error")
	}

	job.Stop()
	dispatcher.Close()
	stopHub()
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close redis")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}

func setupRoutes(a *app) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logging.Component(a.log, "http")))
	router.Use(middleware.CORS(a.cfg.CORSOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authRequired := middleware.AuthRequired(a.tokens)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes
		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", a.auth.Register)
			authRoutes.POST("/login", a.auth.Login)
			authRoutes.POST("/refresh", a.auth.RefreshToken)
		}

		// User routes
		users := v1.Group("/users")
		users.Use(authRequired)
		{
			users.GET("/profile", a.user.GetProfile)
			users.POST("/profile", a.user.CreateProfile)
			users.PUT("/profile", a.user.UpdateProfile)
			users.POST("/profile/media", a.user.UploadMedia)
			users.PUT("/device-token", a.user.UpdateDeviceToken)
			users.POST("/block/:user_id", a.user.BlockUser)
			users.DELETE("/block/:user_id", a.user.UnblockUser)
			users.POST("/report/:user_id", a.user.ReportUser)
			users.POST("/like/:user_id", a.user.LikeUser)
			users.POST("/accept-like/:user_id", a.user.AcceptLike)
			users.GET("/liked-by", a.user.GetLikedBy)
			users.GET("/accepted-likes", a.user.GetAcceptedLikes)
			users.GET("/matches", a.user.GetMatches)
		}

		// Matching routes
		matches := v1.Group("/matches")
		matches.Use(authRequired)
		{
			matches.POST("/search", a.match.Search)
		}

		// Messaging routes
		messages := v1.Group("/messages")
		messages.Use(authRequired)
		{
			send := []gin.HandlerFunc{a.message.SendMessage}
			if a.redis != nil {
				limit := middleware.RateLimit(a.redis, "messages", a.cfg.MessageRateLimit, a.cfg.MessageRateWindow,
					logging.Component(a.log, "ratelimit"))
				send = append([]gin.HandlerFunc{limit}, send...)
			}
			messages.POST("", send...)
			messages.GET("/:user_id", a.message.GetMessages)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(authRequired)
		{
			notifications.GET("", a.notifications.GetNotifications)
			notifications.PUT("/read", a.notifications.MarkAllRead)
		}

		// WebSocket endpoint
		v1.GET("/ws", authRequired, func(c *gin.Context) {
			websocket.HandleWebSocket(a.hub, c)
		})

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(authRequired, middleware.AdminRequired(a.users))
		{
			admin.GET("/users", a.admin.GetUsers)
			admin.GET("/reports", a.admin.GetReports)
			admin.PUT("/reports/:id/status", a.admin.UpdateReportStatus)
		}
	}

	return router
}
