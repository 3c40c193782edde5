package main

import (
	"task-notify/pkg/cache"
	"task-notify/pkg/config"
	"task-notify/pkg/database"
	"task-notify/pkg/logger"
	"task-notify/pkg/queue"
	"task-notify/pkg/s3"
	notificationApp "task-notify/services/notification/internal/app"
	"task-notify/services/notification/internal/model"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// @title           Task Notification Service API
// @version         1.0
// @description     Due-date reminders, broadcast and per-user notifications, and live SSE/WebSocket delivery.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}
	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(model.All()...); err != nil {
			log.Error("Failed to migrate database: %v", err)
			panic(err)
		}
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	// Without a broker the service still runs; events arrive over HTTP.
	queueClient, err := queue.NewRabbitMQClient(cfg, log)
	if err != nil {
		log.Warn("RabbitMQ unavailable, task events only via /internal/events: %v", err)
		queueClient = nil
	}

	var s3Client *s3.Client
	if cfg.SweepReportArchive {
		s3Client, err = s3.NewClient(cfg)
		if err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	}

	err = notificationApp.Run(cfg, notificationApp.Deps{
		DB:     db,
		Redis:  redisClient,
		Queue:  queueClient,
		S3:     s3Client,
		Logger: log,
	})
	if err != nil {
		log.Error("Notification service failed: %v", err)
		panic(err)
	}
}
