package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gridsync/core/loader"
	"gridsync/core/logger"
	"gridsync/core/middleware/auth"
	"gridsync/core/middleware/rayid"
	"gridsync/feature/tables"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "gridsync/docs/swagger"
)

// @title gridsync API
// @version 1.0
// @description Reconciles keyed tables with spreadsheet worksheets.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gridsync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load configuration, logger, spreadsheet, archive and optional database
		a, err := setup(context.Background(), dbOptional)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer a.close()
		logg := a.log
		zap.ReplaceGlobals(logg)

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			UnescapePath:          true,
		})

		// 3. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(tables.NewFeature(a.workbook, a.tablesCfg, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with Zap + RayID
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

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey, Skip: []string{"/swagger"}}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server",
				zap.String("port", a.cfg.Server.Port),
				zap.String("spreadsheet", a.cfg.Sheets.SpreadsheetID),
				zap.Bool("archive", a.archive != nil),
				zap.Bool("database", a.db != nil))
			if err := app.Listen(a.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
