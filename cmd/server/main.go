package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/smartstorage/smartstorage-backend/internal/auth"
	authhandler "github.com/smartstorage/smartstorage-backend/internal/auth/handler"
	"github.com/smartstorage/smartstorage-backend/internal/auth/jwt"
	authrepo "github.com/smartstorage/smartstorage-backend/internal/auth/repository"
	authservice "github.com/smartstorage/smartstorage-backend/internal/auth/service"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/consumers"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/events"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/handler"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/repository"
	"github.com/smartstorage/smartstorage-backend/internal/inventory/service"
	"github.com/smartstorage/smartstorage-backend/internal/seed"
	"github.com/smartstorage/smartstorage-backend/internal/ws"
	"github.com/smartstorage/smartstorage-backend/pkg/config"
	"github.com/smartstorage/smartstorage-backend/pkg/database"
	"github.com/smartstorage/smartstorage-backend/pkg/httputil"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
	"github.com/smartstorage/smartstorage-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("smartstorage-server", cfg.Server.Environment)
	log.Info().Msg("starting SmartStorage server")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publisher
	publisher, err := events.NewDashboardEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	// Initialize repositories
	userRepo := authrepo.NewUserRepository(db)
	robotRepo := repository.NewRobotRepository(db)
	productRepo := repository.NewProductRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	predictionRepo := repository.NewPredictionRepository(db)

	// Seed development data
	if cfg.Server.Environment == config.EnvDevelopment && cfg.Seed.RobotCount > 0 {
		seeder := seed.New(userRepo, robotRepo, log)
		if err := seeder.Run(context.Background(), cfg.Seed.RobotCount); err != nil {
			log.Fatal().Err(err).Msg("failed to seed development data")
		}
	}

	// Initialize auth
	jwtManager := jwt.NewManager(&cfg.JWT)
	authService := authservice.NewAuthService(userRepo, jwtManager, log)
	authHandler := authhandler.NewAuthHandler(authService, log)
	authMiddleware := auth.NewMiddleware(jwtManager)

	// Initialize services
	ingestService := service.NewIngestService(db, robotRepo, productRepo, historyRepo, publisher, log)
	historyService := service.NewHistoryService(historyRepo, log)
	importService := service.NewImportService(db, productRepo, historyRepo, log)
	exportService := service.NewExportService(historyRepo, log)
	dashboardService := service.NewDashboardService(robotRepo, productRepo, historyRepo, publisher, log)
	predictService := service.NewPredictService(cfg.AI, predictionRepo, log)

	// Initialize handlers
	robotHandler := handler.NewRobotHandler(ingestService)
	inventoryHandler := handler.NewInventoryHandler(historyService, importService)
	exportHandler := handler.NewExportHandler(exportService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	aiHandler := handler.NewAIHandler(predictService)

	// Initialize WebSocket hub
	hub := ws.NewHub(log)
	wsHandler := ws.NewHandler(hub, jwtManager, log)

	// Start dashboard event consumer
	dashboardConsumer, err := consumers.NewDashboardConsumer(rmq, hub, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dashboard consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := dashboardConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start dashboard consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "smartstorage-server",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// WebSocket upgrade authenticates via token inside the handler
		r.Get("/ws", wsHandler.Serve)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.With(authMiddleware.RequireRole(authrepo.RoleRobot)).
				Post("/robots/data", robotHandler.SubmitReport)

			r.Get("/inventory/history", inventoryHandler.History)
			r.Get("/export/excel", exportHandler.Excel)
			r.Get("/dashboard/current", dashboardHandler.Current)
			r.Post("/ai/predict", aiHandler.Predict)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireRole(authrepo.RoleAdmin, authrepo.RoleOperator))
				r.Post("/inventory/import", inventoryHandler.Import)
				r.Post("/dashboard/alert", dashboardHandler.Alert)
			})
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
