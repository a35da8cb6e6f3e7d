// File: salonflow/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"salonflow/config"
	"salonflow/cron"
	"salonflow/database"
	bookingRepo "salonflow/database/repository/booking"
	catalogRepo "salonflow/database/repository/catalog"
	waitlistRepo "salonflow/database/repository/waitlist"
	"salonflow/handlers"
	"salonflow/middleware"
	"salonflow/routes"
	"salonflow/services/booking"
	"salonflow/services/intent"
	"salonflow/services/notification"
	"salonflow/services/waitlist"
	"salonflow/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	salonLocation, err := time.LoadLocation(config.AppConfig.SalonTimezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid salon timezone %q: %v", config.AppConfig.SalonTimezone, err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	catalog := catalogRepo.NewMongoCatalogRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	waitlists := waitlistRepo.NewMongoWaitlistRepo()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelIndex()
	if err := bookings.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}
	if err := waitlists.EnsureIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to create waitlist indexes: %v", err)
	}

	// Task queue client for delayed offer-expiry checks.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer asynqClient.Close()

	// services.
	finder := &booking.DefaultSlotFinder{
		Catalog:         catalog,
		Bookings:        bookings,
		Location:        salonLocation,
		MinCandidates:   config.AppConfig.MinCandidates,
		BaseHorizonDays: config.AppConfig.SearchHorizonDays,
	}
	ranker := &booking.AlternativeRanker{Location: salonLocation}
	committer := &booking.DefaultBookingCommitter{Repo: bookings}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMin) * time.Minute
	sessionStore := booking.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL)

	queueService := &waitlist.DefaultQueueService{Repo: waitlists}
	notifySvc := &notification.LogNotificationService{}

	notifier := &waitlist.DefaultNotifier{
		Repo:        waitlists,
		Catalog:     catalog,
		Committer:   committer,
		Finder:      finder,
		Ranker:      ranker,
		Locks:       waitlist.NewRedisOfferLocker(utils.GetOfferCacheClient()),
		Scheduler:   &waitlist.AsynqExpiryScheduler{Client: asynqClient},
		Notify:      notifySvc,
		OfferWindow: time.Duration(config.AppConfig.OfferWindowMin) * time.Minute,
	}

	parser := &intent.KeywordParser{
		Catalog:  catalog,
		Location: salonLocation,
	}

	orchestrator := &booking.DefaultOrchestrator{
		Sessions:      sessionStore,
		Parser:        parser,
		Finder:        finder,
		Ranker:        ranker,
		Committer:     committer,
		Waitlist:      queueService,
		HorizonDays:   config.AppConfig.SearchHorizonDays,
		TopCandidates: config.AppConfig.TopCandidates,
		SessionTTL:    sessionTTL,
	}

	cron.InitOfferExpiryWorker(notifier)
	utils.StartHealthMonitor(
		map[string]*redis.Client{
			"sessions": utils.GetSessionCacheClient(),
			"offers":   utils.GetOfferCacheClient(),
		},
		database.MongoClient,
	)

	// Assemble the handler bundle and register routes.
	handlerBundle := &routes.HandlerBundle{
		Booking:  handlers.NewBookingHandler(orchestrator, committer, notifier, logger),
		Waitlist: handlers.NewWaitlistHandler(queueService, notifier),
	}
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
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
