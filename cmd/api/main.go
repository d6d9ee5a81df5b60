package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"buildtrack/config"
	"buildtrack/internal/handler"
	"buildtrack/internal/httpserver"
	"buildtrack/internal/mq"
	"buildtrack/internal/repository"
	"buildtrack/internal/service"
	"buildtrack/pkg/db"
	"buildtrack/pkg/logger"
	"buildtrack/pkg/redis"
)

func main() {
	// 1. Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// 2. Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 3. Init Redis view cache. Optional: a dead cache degrades reads, it
	// does not stop the service.
	rdb := redis.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unavailable, schedule view cache disabled", zap.Error(err))
		rdb = nil
	}
	cancel()

	// 4. Init RabbitMQ producer for schedule domain events. Also optional.
	var publisher service.EventPublisher
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		log.Warn("RabbitMQ unavailable, schedule events disabled", zap.Error(err))
	} else {
		defer producer.Close()
		publisher = producer
	}

	// 5. Init repositories
	projectRepo := repository.NewProjectRepository(dbConn, log)
	scheduleRepo := repository.NewScheduleRepository(dbConn, log)

	// 6. Init services
	scheduleService := service.NewScheduleService(projectRepo, scheduleRepo, rdb, publisher, log)

	// 7. Init handlers and router
	scheduleHandler := handler.NewScheduleHandler(scheduleService, log)
	router := httpserver.NewRouter(scheduleHandler, cfg.JWT.Secret)

	// 8. Run server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
