package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-restaurant-ops/config"
	"go-restaurant-ops/database"
	"go-restaurant-ops/directory"
	"go-restaurant-ops/logging"
	"go-restaurant-ops/middleware"
	"go-restaurant-ops/notifications"
	"go-restaurant-ops/orders"
	"go-restaurant-ops/push"
	"go-restaurant-ops/realtime"
	"go-restaurant-ops/routes"
	"go-restaurant-ops/servicecalls"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const serviceName = "restaurant-ops"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	log := logging.New(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURL, log)
	if err != nil {
		log.Error("failed to connect to mongo", slog.String("action", "db_connection_failed"), slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.EnsureIndexes(ctx, client.Database(cfg.DatabaseName)); err != nil {
		log.Error("failed to ensure indexes", slog.String("action", "db_index_failed"), slog.Any("error", err))
		os.Exit(1)
	}

	dir := directory.New(client, cfg.DatabaseName)
	ledger := notifications.NewLedger(notifications.NewMongoStore(client, cfg.DatabaseName), dir, nil)
	notifier := notifications.NewNotifier(ledger, push.NewExpoClient(cfg.ExpoPushHost, cfg.PushTimeout, log), log)

	hub := realtime.NewHub(log)
	var (
		broadcaster orders.Broadcaster = hub
		backbone    *realtime.Backbone
	)
	if cfg.BackboneEnabled() {
		backbone, err = realtime.DialBackbone(ctx, cfg.RabbitMQURL, cfg.RealtimeExchange, hub, log)
		if err != nil {
			log.Error("failed to start realtime backbone", slog.String("action", "backbone_failed"), slog.Any("error", err))
			os.Exit(1)
		}
		broadcaster = backbone
	}

	orderService := orders.NewService(orders.NewMongoStore(client, cfg.DatabaseName), dir, notifier, broadcaster, log)
	serviceCalls := servicecalls.NewService(servicecalls.NewMongoStore(client, cfg.DatabaseName), dir, notifier, broadcaster, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	ping := func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
	routes.RealtimeRoutes(router, hub, ping, log)
	routes.ServiceRequestRoutes(router, serviceCalls, cfg.SecretKey, log)

	api := router.Group("/", middleware.Authentication(cfg.SecretKey))
	routes.OrderRoutes(api, orderService, log)
	routes.NotificationRoutes(api, ledger, dir, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server started", slog.String("action", "server_started"), slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.String("action", "server_failed"), slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down", slog.String("action", "server_stopping"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", slog.Any("error", err))
	}
	hub.Close()
	notifier.Wait()
	if backbone != nil {
		if err := backbone.Close(); err != nil {
			log.Error("backbone close failed", slog.Any("error", err))
		}
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error("mongo disconnect failed", slog.Any("error", err))
	}
	log.Info("server stopped", slog.String("action", "server_stopped"))
}
