package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-voice/internal/data/db"
	"github.com/yungbote/neurobridge-voice/internal/data/repos"
	"github.com/yungbote/neurobridge-voice/internal/http"
	"github.com/yungbote/neurobridge-voice/internal/observability"
	"github.com/yungbote/neurobridge-voice/internal/platform/envutil"
	"github.com/yungbote/neurobridge-voice/internal/platform/logger"
)

const serviceName = "neurobridge-voice"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    repos.Set
	Clients  Clients
	Services Services
	Handlers Handlers

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	dbService, err := db.NewService(log, cfg.DB)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := repos.NewSet(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, cfg, theDB, clients, serviceset)
	server := http.NewServer(":"+cfg.Port, http.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
		VoiceHandler:   handlerset.Voice,
		HealthHandler:  handlerset.Health,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Services:     serviceset,
		Handlers:     handlerset,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background listeners. With redis sessions that is the
// cross-instance eviction subscriber.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if a.Services.redisSessions != nil {
		if err := a.Services.redisSessions.Start(ctx); err != nil {
			return fmt.Errorf("start session eviction listener: %w", err)
		}
	}
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Close stops accepting requests, ends live voice connections and releases
// clients. It is safe on a partially started app.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
	defer cancel()

	if a.Handlers.Voice != nil {
		a.Handlers.Voice.Close()
	}
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown", "error", err)
		}
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
