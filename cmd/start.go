package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"card-catalog/core/logger"
	"card-catalog/core/middleware/auth"
	"card-catalog/core/middleware/rayid"
	"card-catalog/core/storage"
	"card-catalog/feature/catalog"
	"card-catalog/feature/prices"
	"card-catalog/feature/sources"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog replica server",
	Long:  `Starts the HTTP server serving the replica state, the patch applier and the source sync.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// Artifact archiving is optional; the desktop deployment runs with
		// it disabled.
		var archive *catalog.Archive
		if cfg.Storage.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			archive = catalog.NewArchive(store, cfg.Storage.Bucket, logg)
			logg.Info("Patch artifact archive enabled", zap.String("bucket", cfg.Storage.Bucket))
		}

		catalogService := catalog.NewService(db, logg, archive)
		trendCalculator := prices.NewTrendCalculator(db)
		orchestrator := sources.NewOrchestrator(db, logg, &cfg.Sources)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// RayID must be first so every request is traceable.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		// Everything below the health check requires the API key.
		app.Use(auth.New(cfg.Server.ApiKey))

		catalog.NewHandler(catalogService, trendCalculator).RegisterRoutes(app)
		sources.NewHandler(orchestrator, logg).RegisterRoutes(app)

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
