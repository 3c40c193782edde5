package internal

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-notify/pkg/config"
	"task-notify/pkg/jwt"
	"task-notify/pkg/logger"
	"task-notify/pkg/middleware"
	"task-notify/pkg/queue"
	"task-notify/pkg/s3"
	notificationHTTP "task-notify/services/notification/internal/controller/http"
	"task-notify/services/notification/internal/repo/persistent"
	"task-notify/services/notification/internal/stream"
	"task-notify/services/notification/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "task-notify/services/notification/docs" // Swagger docs
)

// Deps are the external clients Run needs. Queue and S3 are optional.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Queue  *queue.Client
	S3     *s3.Client
	Logger *logger.Logger
}

// Server is the assembled notification service.
type Server struct {
	cfg       *config.Config
	log       *logger.Logger
	router    *gin.Engine
	registry  *stream.Registry
	relay     *stream.RedisRelay
	scheduler *usecase.ReminderScheduler
	eventUC   usecase.EventUseCase
	deps      Deps
}

// New wires repositories, use cases and routes without starting anything.
func New(cfg *config.Config, deps Deps) (*Server, error) {
	log := deps.Logger
	jwtService := jwt.NewService(cfg.JWTSecret)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// Initialize Repository
	reminderRepo := persistent.NewReminderRepository(deps.DB)
	notificationRepo := persistent.NewNotificationRepository(deps.DB)
	taskRepo := persistent.NewTaskRepository(deps.DB)

	// Live delivery
	registry := stream.NewRegistry(cfg.HeartbeatInterval, log)
	var pusher stream.Pusher = registry
	var relay *stream.RedisRelay
	if cfg.PushRelay == "redis" && deps.Redis != nil {
		relay = stream.NewRedisRelay(deps.Redis, registry, log)
		pusher = relay
	}

	// Initialize UseCase
	calendar := usecase.NewReminderCalendar(loc, cfg.ReminderHour, cfg.ReminderThresholds)
	resolver := usecase.NewRecipientResolver(taskRepo)
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, taskRepo, pusher, cfg.MainNotificationExpiry, log)
	policy := usecase.NewReminderPolicy(reminderRepo, taskRepo, resolver, notificationUseCase, calendar, log)
	reminderUseCase := usecase.NewReminderUseCase(reminderRepo, log)
	eventUseCase := usecase.NewEventUseCase(taskRepo, reminderRepo, policy, resolver, notificationUseCase, log)

	var lock usecase.SweepLock
	if deps.Redis != nil {
		lock = usecase.NewRedisSweepLock(deps.Redis)
	}
	var archiver usecase.SweepArchiver
	if cfg.SweepReportArchive && deps.S3 != nil {
		archiver = usecase.NewS3SweepArchiver(deps.S3)
	}
	scheduler := usecase.NewReminderScheduler(taskRepo, policy, calendar, lock, archiver, log)

	// Initialize HTTP handlers
	reminderHandler := notificationHTTP.NewReminderHandler(reminderUseCase, policy, log)
	notificationHandler := notificationHTTP.NewNotificationHandler(notificationUseCase, log)
	streamHandler := notificationHTTP.NewStreamHandler(registry, notificationUseCase, log)
	var inspector notificationHTTP.QueueInspector
	if deps.Queue != nil {
		inspector = deps.Queue
	}
	internalHandler := notificationHTTP.NewInternalHandler(eventUseCase, scheduler, inspector, log)

	// Setup router
	r := gin.Default()

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"connections": registry.ConnectionCount(),
			"sweeping":    scheduler.Running(),
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")

	// Protected routes - require authentication
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtService))
	if deps.Redis != nil && cfg.RateLimitPerMinute > 0 {
		protected.Use(middleware.RateLimitMiddleware(deps.Redis, cfg.RateLimitPerMinute, time.Minute))
	}
	{
		protected.GET("/reminders", reminderHandler.ListReminders)
		protected.GET("/reminders/stats", reminderHandler.GetStats)
		protected.POST("/reminders/manual", reminderHandler.SendManualReminder)
		protected.GET("/reminders/:id", reminderHandler.GetReminder)
		protected.PATCH("/reminders/:id/read", reminderHandler.MarkAsRead)
		protected.PATCH("/reminders/:id/dismiss", reminderHandler.Dismiss)
		protected.DELETE("/reminders/:id", reminderHandler.DeleteReminder)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.POST("/notifications", notificationHandler.CreateUserNotification)
		protected.GET("/notifications/unread-count", notificationHandler.GetUnreadCount)
		protected.GET("/notifications/stats", notificationHandler.GetStats)
		protected.PATCH("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.PATCH("/notifications/:id/read", notificationHandler.MarkAsRead)

		protected.GET("/notifications/main", notificationHandler.ListMainNotifications)
		protected.POST("/notifications/main", notificationHandler.CreateMainNotification)
		protected.GET("/notifications/main/stats", notificationHandler.GetMainStats)
		protected.GET("/notifications/main/:id", notificationHandler.GetMainNotification)
		protected.DELETE("/notifications/main/:id", notificationHandler.DeactivateMainNotification)

		protected.GET("/stream/connections", streamHandler.ConnectionStats)
	}

	// Streams accept the token as a query parameter
	live := api.Group("")
	live.Use(middleware.StreamAuthMiddleware(jwtService))
	{
		live.GET("/stream", streamHandler.HandleSSE)
		live.GET("/ws", streamHandler.HandleWebSocket)
	}

	// Internal routes - admin tokens only
	internal := api.Group("/internal")
	internal.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("admin"))
	{
		internal.POST("/events", internalHandler.HandleTaskEvent)
		internal.POST("/reminders/sweep", internalHandler.RunSweep)
		internal.GET("/queue", internalHandler.QueueStatus)
	}

	return &Server{
		cfg:       cfg,
		log:       log,
		router:    r,
		registry:  registry,
		relay:     relay,
		scheduler: scheduler,
		eventUC:   eventUseCase,
		deps:      deps,
	}, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts background workers and the HTTP server, and blocks until
// SIGINT or SIGTERM.
func Run(cfg *config.Config, deps Deps) error {
	server, err := New(cfg, deps)
	if err != nil {
		return err
	}
	log := deps.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if server.relay != nil {
		go func() {
			if err := server.relay.Run(ctx); err != nil {
				log.Error("[STREAM] Redis relay stopped: %v", err)
			}
		}()
	}

	if err := server.scheduler.Start(cfg.SweepCronSpec()); err != nil {
		return err
	}

	// Start consuming task events in a goroutine
	if deps.Queue != nil {
		go func() {
			log.Info("Starting task event consumer...")
			err := deps.Queue.ConsumeTaskEvents(func(event queue.TaskEvent) error {
				log.Info("[EVENTS] Received %s task=%s team=%s", event.Type, event.TaskID, event.TeamID)
				handlerCtx, done := context.WithTimeout(ctx, time.Minute)
				defer done()
				return server.eventUC.HandleTaskEvent(handlerCtx, event)
			})
			if err != nil {
				log.Error("Error starting task event consumer: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: server.router,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Notification service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down notification service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Open streams never finish on their own
	server.registry.Close()
	server.scheduler.Stop(shutdownCtx)
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if deps.Queue != nil {
		deps.Queue.Close()
	}
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	log.Info("Notification service exited")
	return nil
}
