// File: bloodlink/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodlink/config"
	"bloodlink/cron"
	"bloodlink/database"
	appointmentRepoPkg "bloodlink/database/repository/appointment"
	userRepoPkg "bloodlink/database/repository/user"
	"bloodlink/handlers"
	"bloodlink/middleware"
	"bloodlink/routes"
	"bloodlink/services/scheduling"
	"bloodlink/services/tasks"
	"bloodlink/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.AppConfig.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET must be set")
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	lockClient := utils.GetLockClient()
	cacheClient := utils.GetCacheClient()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	utils.StartHealthMonitor(rootCtx, []*redis.Client{cacheClient, lockClient}, database.MongoClient)

	// repositories.
	appointmentRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	userRepo := userRepoPkg.NewCachedUserRepo(userRepoPkg.NewMongoUserRepo(), cacheClient, config.ProfileCacheTTL())

	// reminder queue.
	queue := asynq.NewClient(cron.ReminderQueueOpt())
	defer queue.Close()
	reminders := tasks.NewAsynqReminderScheduler(queue, time.Duration(config.AppConfig.ReminderLeadHours)*time.Hour)

	// services.
	locker := scheduling.NewRedisLocker(lockClient, config.BookingLockTTL())
	schedulingService := scheduling.NewService(appointmentRepo, userRepo, locker, reminders)

	// background workers.
	worker := cron.InitReminderWorker(rootCtx, schedulingService)
	sweeper, err := cron.StartNoShowSweep(config.AppConfig.NoShowSweepSpec, config.Location(), schedulingService)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid NO_SHOW_SWEEP_SPEC: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	appointmentHandler := handlers.NewAppointmentHandler(schedulingService, config.Location())
	handlerBundle := handlers.NewHandlerBundle(appointmentHandler, []byte(config.AppConfig.JWTSecret))

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

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
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	<-sweeper.Stop().Done()
	worker.Shutdown()
	stopBackground()
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to disconnect MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
