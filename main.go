package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mastery-scheduler/internal/config"
	"mastery-scheduler/internal/filters"
	"mastery-scheduler/internal/handlers"
	"mastery-scheduler/internal/library"
	"mastery-scheduler/internal/metrics"
	"mastery-scheduler/internal/scheduler"
	"mastery-scheduler/internal/storage"
)

func main() {
	cfg := config.Load()

	lib, err := library.LoadFromDir(cfg.LibraryRoot)
	if err != nil {
		log.Fatalf("Failed to load course library: %v", err)
	}
	log.Printf("Loaded course library with %d courses and %d exercises",
		lib.NumCourses(), lib.NumExercises())

	if err := os.MkdirAll(filepath.Dir(cfg.TrialsPath), 0o755); err != nil {
		log.Fatalf("Failed to create state directory: %v", err)
	}

	var trials storage.TrialStore
	if cfg.DatabaseURL != "" {
		trials, err = storage.OpenPostgresTrialStore(cfg.DatabaseURL)
	} else {
		trials, err = storage.OpenSQLiteTrialStore(cfg.TrialsPath)
	}
	if err != nil {
		log.Fatalf("Failed to open trial store: %v", err)
	}
	defer trials.Close()

	blacklist, err := storage.OpenSQLiteBlacklist(cfg.BlacklistPath)
	if err != nil {
		log.Fatalf("Failed to open blacklist: %v", err)
	}
	defer blacklist.Close()

	filterManager, err := filters.NewManager(cfg.FiltersDir)
	if err != nil {
		log.Fatalf("Failed to load saved filters: %v", err)
	}

	sched, err := scheduler.New(&scheduler.Data{
		Library:   lib,
		Graph:     lib.Graph(),
		Trials:    trials,
		Blacklist: blacklist,
		Options:   cfg.Scheduler,
	})
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	app := fiber.New()
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "mastery-scheduler",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handler := handlers.NewHandler(sched, lib.Graph(), blacklist, filterManager, m)
	handler.RegisterRoutes(app)

	log.Printf("Mastery scheduler listening on port %s", cfg.Port)
	log.Fatal(app.Listen("0.0.0.0:" + cfg.Port))
}
