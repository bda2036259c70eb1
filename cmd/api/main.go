package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"nextup-api/interfaces/api/handlers"
	"nextup-api/interfaces/api/middleware"
	"nextup-api/interfaces/api/routes"
	"nextup-api/pkg/di"
	"nextup-api/pkg/logger"
)

func main() {
	container := di.NewContainer()

	// Initialize all dependencies (including logger)
	if err := container.Initialize(); err != nil {
		// ใช้ panic เพราะ logger อาจยังไม่ init
		panic("Failed to initialize container: " + err.Error())
	}

	cfg := container.GetConfig()

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		AppName:      cfg.App.Name,
		BodyLimit:    1 * 1024 * 1024, // import ใหญ่สุด 100 tasks
	})

	setupGracefulShutdown(app, container)

	// Setup middleware (order matters!)
	app.Use(recover.New())
	app.Use(middleware.RequestIDMiddleware()) // ต้องมาก่อน logger
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.CorsMiddleware(cfg.App.CORSOrigins))

	h := handlers.NewHandlers(container.GetHandlerServices())

	routes.SetupRoutes(app, h, routes.Options{
		JWTSecret: cfg.JWT.Secret,
		Health:    container.HealthCheck,
	})

	port := cfg.App.Port
	logger.Info("Server starting",
		"port", port,
		"env", cfg.App.Env,
		"app", cfg.App.Name,
		"store", cfg.Store.Driver,
	)
	logger.Info("Endpoints available",
		"health", "http://localhost:"+port+"/health",
		"api", "http://localhost:"+port+"/api/v1",
		"websocket", "ws://localhost:"+port+"/ws",
	)

	if err := app.Listen(":" + port); err != nil {
		logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

func setupGracefulShutdown(app *fiber.App, container *di.Container) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Gracefully shutting down...")

		// ให้ request ที่ค้างอยู่ (เช่น commit ที่รอ latency floor) จบก่อน
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Warn("HTTP shutdown timed out", "error", err)
		}

		if err := container.Cleanup(); err != nil {
			logger.Error("Error during cleanup", "error", err)
		}

		logger.Info("Shutdown complete")
		os.Exit(0)
	}()
}
