package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"taskapi/docs"
	"taskapi/internal/config"
	"taskapi/internal/database"
	"taskapi/internal/database/migration"
	handlers "taskapi/internal/http/handler"
	"taskapi/internal/http/middleware"
	"taskapi/internal/otel"
	"taskapi/internal/registry"
	"taskapi/internal/repository/postgres"
	"taskapi/internal/service"
	"taskapi/internal/storage"
)

// @title Task API
// @version 1.0
// @BasePath /
func main() {
	ctx := context.Background()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	// Initialize tracing (no-op when OTEL_SDK_DISABLED=true or exporter setup fails)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("failed to shut down tracing: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	// Create the schema on first start; subsequent starts skip it
	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Component registry: built-ins plus YAML definitions from the plugin directory
	reg, err := registry.New()
	if err != nil {
		log.Fatalf("failed to build component registry: %v", err)
	}
	if err := reg.LoadDir(cfg.Components.Dir); err != nil {
		log.Fatalf("failed to load component definitions: %v", err)
	}
	if cfg.Components.Watch {
		go func() {
			if err := registry.Watch(ctx, reg, cfg.Components.Dir); err != nil {
				log.Printf("component watcher stopped: %v", err)
			}
		}()
	}

	// Initialize repositories and services
	invRepo := postgres.NewInvocationPostgres(db)
	invSvc := service.NewInvocationService(reg, objStore, invRepo, nil,
		time.Duration(cfg.ArchivePresignExpSec)*time.Second)

	// Metrics registry with process and Go runtime collectors
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(promReg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	// Trace each request; server spans carry the route pattern as span name
	app.Use(otelfiber.Middleware())
	app.Use(metrics.Handler())

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, reg, invSvc, metrics)

	// Prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
