package main

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"trailsafe/internal/avalanche"
	"trailsafe/internal/config"
	"trailsafe/internal/gateway"
	"trailsafe/internal/location"
	"trailsafe/internal/providers/nac"
	"trailsafe/internal/providers/nws"
	"trailsafe/internal/providers/openmeteo"
	"trailsafe/internal/providers/snotel"
	"trailsafe/internal/providers/usgs"
	"trailsafe/internal/report"
	"trailsafe/internal/snowpack"
	"trailsafe/internal/timezone"
	"trailsafe/internal/weather"
	"trailsafe/internal/zones"
)

// App encapsulates application dependencies
type App struct {
	router        *gin.Engine
	logger        *slog.Logger
	reportService report.Service
	cfg           *config.Config
}

// NewApp creates a new application with injected dependencies
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Set Gin mode from configuration
	gin.SetMode(cfg.Server.GinMode)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())

	// Each upstream gets its own gateway client so one flapping provider
	// trips only its own breaker.
	gwFor := func(name string) *gateway.Client {
		return gateway.New(gateway.Config{
			Name:       name,
			Timeout:    cfg.App.ProviderTimeout,
			MaxRetries: cfg.App.ProviderMaxRetries,
		}, logger)
	}
	nwsClient := nws.NewClient(gwFor("nws"), logger)
	openmeteoClient := openmeteo.NewClient(gwFor("openmeteo"), logger)
	nacClient := nac.NewClient(gwFor("nac"), logger)
	snotelClient := snotel.NewClient(gwFor("snotel"), logger)
	usgsClient := usgs.NewClient(gwFor("usgs"), logger)

	timezoneService, err := timezone.NewService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize timezone service: %w", err)
	}

	reportService := report.NewService(report.Deps{
		Location:   location.NewService(usgsClient, openmeteoClient, timezoneService, logger),
		Weather:    weather.NewService(nwsClient, openmeteoClient, cfg, logger),
		Avalanche:  avalanche.NewService(nacClient, cfg.App.AlmostWorstCase, logger),
		Snowpack:   snowpack.NewService(snotelClient, cfg.App.StationTTL, logger),
		Catalog:    zones.NewCatalog(nacClient, cfg.App.CatalogTTL, logger),
		Resolver:   zones.NewResolver(cfg.App.NearestZoneCapKm, cfg.App.SierraZoneCapKm),
		Alerts:     nwsClient,
		AirQuality: openmeteoClient,
	}, cfg, logger)

	app := &App{
		router:        router,
		logger:        logger,
		reportService: reportService,
		cfg:           cfg,
	}

	// Register routes
	app.registerRoutes()

	return app, nil
}

// Run starts the HTTP server
func (app *App) Run(addr string) error {
	return app.router.Run(addr)
}
