package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cloudbox/config"
	"cloudbox/controllers"
	"cloudbox/database"
	"cloudbox/routes"
	"cloudbox/services"
	"cloudbox/storage"
	"cloudbox/store"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Start(); err != nil {
		logrus.Fatalf("Failed to start application: %v", err)
	}
}

// Application wires configuration, stores, services and transport.
type Application struct {
	config *config.Config
	logger *logrus.Logger
	server *http.Server
	router *gin.Engine
	mongo  bool
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	app := &Application{
		config: cfg,
		logger: logger,
		mongo:  cfg.StoreDriver == "mongo",
	}

	if app.mongo {
		if err := database.Connect(cfg.MongoURI, cfg.DBName); err != nil {
			return nil, err
		}
		if err := database.EnsureIndexes(); err != nil {
			return nil, err
		}
	}

	stores, err := store.NewStoresFromConfig(cfg.StoreDriver, database.GetDatabase())
	if err != nil {
		return nil, err
	}

	blobs, err := storage.NewProvider(cfg.StorageConfig())
	if err != nil {
		return nil, err
	}

	app.router = buildRouter(cfg, logger, stores, blobs)
	app.server = &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      app.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

// buildRouter assembles the service graph and mounts all routes.
func buildRouter(cfg *config.Config, logger *logrus.Logger, stores *store.Stores, blobs storage.Provider) *gin.Engine {
	userService := services.NewUserService(stores)
	accessService := services.NewAccessService(stores)
	activityService := services.NewActivityService(stores, logger)
	shareService := services.NewShareService(stores, accessService, activityService)
	linkService := services.NewLinkService(stores, accessService, activityService)
	bulkService := services.NewBulkService(stores, shareService)
	fileService := services.NewFileService(stores, accessService, activityService, blobs)
	folderService := services.NewFolderService(stores, accessService, activityService)

	ctrl := &routes.Controllers{
		Files:    controllers.NewFileController(fileService),
		Folders:  controllers.NewFolderController(folderService),
		Shares:   controllers.NewShareController(shareService, linkService, bulkService, cfg.AppURL),
		Public:   controllers.NewPublicController(linkService, fileService),
		Activity: controllers.NewActivityController(activityService),
	}

	router := gin.New()
	routes.SetupRoutes(router, cfg, logger, userService, ctrl)
	return router
}

// Start runs the HTTP server and blocks until shutdown.
func (app *Application) Start() error {
	go func() {
		app.logger.WithFields(logrus.Fields{
			"addr":        app.server.Addr,
			"environment": app.config.Environment,
			"store":       app.config.StoreDriver,
			"storage":     app.config.StorageProvider,
		}).Infof("%s starting", app.config.AppName)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()
	return nil
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains the server.
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Errorf("Server forced to shutdown: %v", err)
	}

	if app.mongo {
		if err := database.Disconnect(); err != nil {
			app.logger.Errorf("Database disconnect failed: %v", err)
		}
	}

	app.logger.Info("Server exited")
}
