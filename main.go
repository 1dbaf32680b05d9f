// File: learnhub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub/config"
	"learnhub/cron"
	"learnhub/database"
	notifRepo "learnhub/database/repository/notification"
	"learnhub/handlers"
	"learnhub/routes"
	"learnhub/services/notification"
	"learnhub/services/realtime"
	"learnhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	repo := notifRepo.NewMongoNotificationRepo()

	// real-time fan-out: local hub plus a Redis bridge so deliveries reach
	// sessions held by other instances.
	hub := realtime.NewHub()
	bridge := realtime.NewBridge(hub, utils.GetCacheClient(), config.AppConfig.RealtimeTopic)

	// services.
	var directory notification.UserDirectory
	if config.AppConfig.UserDirectoryURL != "" {
		directory = notification.NewRESTDirectory(config.AppConfig.UserDirectoryURL)
	}
	notificationService := &notification.DefaultNotificationService{
		Repo:      repo,
		Publisher: bridge,
		Directory: directory,
		Cache:     utils.GetCacheClient(),
	}

	// background retention worker.
	cron.InitCleanupWorker(repo)

	notificationHandler := handlers.NewNotificationHandler(notificationService)
	realtimeHandler := handlers.NewRealtimeHandler(hub)

	// Register routes.
	routes.RegisterRoutes(router, notificationHandler, realtimeHandler)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
