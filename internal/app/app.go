package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/marks/internal/config"
	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/views"
	"github.com/MrSnakeDoc/marks/internal/index"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/metrics"
	"github.com/MrSnakeDoc/marks/internal/redis"
	"github.com/MrSnakeDoc/marks/internal/secrets"
	redisstore "github.com/MrSnakeDoc/marks/internal/store/redis"
	"github.com/MrSnakeDoc/marks/internal/utils"
	"github.com/MrSnakeDoc/marks/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  io.Closer // nil for the memory backend
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	repo, closer, err := openStore(cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open the bookmark store: %v", err)
		os.Exit(1)
	}

	renderer, err := views.New()
	if err != nil {
		loggerClient.Errorf("Failed to load page templates: %v", err)
		os.Exit(1)
	}

	m := metrics.New()
	service := domain.NewService(repo, loggerClient, m, domain.ServiceOptions{
		TrimKeywords: cfg.TrimKeywords,
	})

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		StoreBackend:    cfg.StoreBackend,
		Collection:      cfg.Collection,
		Bookmarks:       service,
		Views:           renderer,
		Metrics:         m.Handler(),
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: server,
		store:  closer,
	}
}

// openStore builds the repository for the configured backend. For Redis the
// returned closer is the one client of the process.
func openStore(cfg *config.Config, log logger.Logger) (domain.Repository, io.Closer, error) {
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn("using the in-memory store, bookmarks will not survive a restart")
		return index.NewMemoryIndex(), nil, nil
	}

	creds, err := storeCredentials(cfg)
	if err != nil {
		return nil, nil, err
	}

	// Initialize Redis early - fail fast if unavailable
	client, err := redis.Connect(context.Background(), redis.ConnectOptions{
		Credentials:    creds,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Redis initialized successfully",
		logger.String("collection", cfg.Collection))

	return redisstore.NewStore(client, cfg.Collection), client, nil
}

// storeCredentials prefers the mounted secrets file over the environment.
func storeCredentials(cfg *config.Config) (secrets.StoreCredentials, error) {
	if cfg.SecretsFile == "" {
		return secrets.StoreCredentials{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUser,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, nil
	}

	creds, err := secrets.NewLoader(cfg.SecretsFile).Load()
	if err != nil {
		return secrets.StoreCredentials{}, fmt.Errorf("failed to load credentials from %s: %w", cfg.SecretsFile, err)
	}
	return creds.Store, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting marks v%s on %s (store=%s)", version.Version, a.cfg.ListenPort, a.cfg.StoreBackend)
	a.logger.Infof("marks %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.closeStore()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeStore()

	a.logger.Info("✅ marks stopped cleanly")
	return nil
}

func (a *App) closeStore() {
	if a.store == nil {
		return
	}
	if utils.MustClose(a.store, "redis", a.logger) {
		a.logger.Info("✅ Redis closed cleanly")
	}
}
