package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	historyapi "github.com/nihalshetty-boop/listri/api/history"
	"github.com/nihalshetty-boop/listri/api/ws"
	"github.com/nihalshetty-boop/listri/config"
	"github.com/nihalshetty-boop/listri/internal/history"
	"github.com/nihalshetty-boop/listri/internal/nats"
	"github.com/nihalshetty-boop/listri/internal/presence"
	"github.com/nihalshetty-boop/listri/internal/registry"
	"github.com/nihalshetty-boop/listri/internal/router"
	"github.com/nihalshetty-boop/listri/internal/store"
	"github.com/nihalshetty-boop/listri/internal/websocket"
	"github.com/nihalshetty-boop/listri/pkg/logger"
)

// App holds every wired dependency of the relay server.
type App struct {
	cfg        config.Config
	logger     logger.Logger
	gormStore  *store.GormStore
	redis      *presence.RedisTracker
	bridge     *nats.Bridge
	hub        *websocket.Hub
	httpServer *http.Server
	rootCtx    context.Context
	cancel     context.CancelFunc
}

// NewApp initializes and connects all application dependencies. Backends
// with no configured URL are skipped: the store and presence tracker fall
// back to their in-memory implementations and the NATS bridge stays off.
func NewApp(cfg config.Config) (*App, error) {
	baseLogger := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	rootCtx := logger.NewContext(context.Background(), baseLogger)
	rootCtx, rootCancel := context.WithCancel(rootCtx)

	log := baseLogger.WithModule("app")
	log.Infof("Initializing application components...")

	app := &App{
		cfg:     cfg,
		logger:  log,
		rootCtx: rootCtx,
		cancel:  rootCancel,
	}

	var messageStore store.MessageStore
	if cfg.DatabaseURL != "" {
		gs, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			rootCancel()
			return nil, fmt.Errorf("failed to open message store: %w", err)
		}
		app.gormStore = gs
		messageStore = gs
	} else {
		log.Warnf("no database_url configured, messages are kept in memory")
		messageStore = store.NewMemoryStore()
	}

	var tracker presence.Tracker
	var cache history.Cache
	if cfg.RedisURL != "" {
		rt, err := presence.NewRedisTracker(rootCtx, cfg.RedisURL)
		if err != nil {
			rootCancel()
			app.closeBackends()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.redis = rt
		tracker = rt
		cache = history.NewRedisCache(rt.Client(), cfg.CachePrefix)
	} else {
		log.Warnf("no redis_url configured, presence is kept in memory and history is uncached")
		tracker = presence.NewMemoryTracker()
	}

	reg := registry.New()
	rtr := router.New(messageStore, reg, baseLogger.WithModule("router"))

	if cfg.NATSURL != "" {
		bridge, err := nats.NewBridge(cfg.NATSURL)
		if err != nil {
			rootCancel()
			app.closeBackends()
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		app.bridge = bridge
		rtr.AddTap(bridge)
	}

	historyService := history.NewService(messageStore, cache, cfg.CacheTTL, baseLogger.WithModule("history"))
	app.hub = websocket.NewHub(reg, tracker, baseLogger.WithModule("hub"))

	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: buildRoutes(cfg, app.hub, rtr, tracker, historyService, baseLogger),
	}

	log.Infof("Application initialized successfully")
	return app, nil
}

func buildRoutes(
	cfg config.Config,
	hub *websocket.Hub,
	rtr *router.Router,
	tracker presence.Tracker,
	historyService *history.Service,
	baseLogger logger.Logger,
) http.Handler {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	historyapi.NewHTTPHandler(historyService, tracker, baseLogger.WithModule("api")).RegisterRoutes(engine)
	engine.GET("/ws", gin.WrapF(ws.HandleWebSocket(hub, rtr, tracker, baseLogger.WithModule("websocket"))))

	return engine
}

// Start runs the application and handles graceful shutdown on signal.
func (a *App) Start() error {
	a.logger.Infof("Starting server on port %d", a.cfg.Port)

	go a.hub.Run(a.rootCtx)

	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	a.logger.Warnf("Received shutdown signal: %s", sig)

	return a.Stop()
}

// Stop gracefully shuts down the server and closes all connections.
func (a *App) Stop() error {
	a.logger.Infof("Initiating graceful shutdown")

	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Errorf("HTTP server shutdown error: %v", err)
	}

	a.hub.Close()
	a.closeBackends()

	a.logger.Infof("Shutdown completed")
	return nil
}

func (a *App) closeBackends() {
	if a.bridge != nil {
		a.bridge.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Errorf("Redis close error: %v", err)
		}
	}
	if a.gormStore != nil {
		if err := a.gormStore.Close(); err != nil {
			a.logger.Errorf("store close error: %v", err)
		}
	}
}
