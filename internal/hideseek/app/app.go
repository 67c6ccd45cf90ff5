package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"
	"gorm.io/gorm"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/dbutil"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/health"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/httpserver"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/lua"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/processinglock"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/telemetry"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/valkeyx"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/catalog"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/cleanup"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/facade"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/httpapi"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/redis"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/repository"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/service"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/validation"
)

type hideSeekStores struct {
	sessions *redis.SessionStore
	guesses  *redis.GuessStore
	players  *redis.PlayerStore
	legacy   *redis.LegacyReader
	cooldown *redis.GuessCooldown
}

func newHideSeekTelemetry(ctx context.Context, cfg *hsconfig.Config, logger *slog.Logger) (*telemetry.Provider, func(), error) {
	provider, err := telemetry.NewProvider(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, fmt.Errorf("init telemetry failed: %w", err)
	}
	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("telemetry_shutdown_failed", "err", shutdownErr)
		}
	}
	return provider, shutdown, nil
}

func newHideSeekValkey(ctx context.Context, cfg *hsconfig.Config, logger *slog.Logger) (valkey.Client, func(), error) {
	client, closeFn, err := bootstrap.NewAndPingValkeyClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init valkey failed: %w", err)
	}
	return client, closeFn, nil
}

func newHideSeekAdapter(cfg *hsconfig.Config, client valkey.Client) *valkeyx.Adapter {
	return valkeyx.NewAdapter(client, cfg.Redis.OpTimeout)
}

func newHideSeekValidator(cfg *hsconfig.Config) (*validation.Validator, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.Game.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.Game.CatalogPath)
	} else {
		cat, err = catalog.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load map catalog failed: %w", err)
	}
	return validation.New(cat), nil
}

func newHideSeekStores(
	ctx context.Context,
	cfg *hsconfig.Config,
	adapter *valkeyx.Adapter,
	validator *validation.Validator,
	logger *slog.Logger,
) (*hideSeekStores, error) {
	registry := lua.NewRegistry([]lua.Script{redis.GuessCooldownScript})
	if err := registry.Preload(ctx, adapter.Client()); err != nil {
		return nil, fmt.Errorf("preload lua scripts failed: %w", err)
	}
	return &hideSeekStores{
		sessions: redis.NewSessionStore(adapter, validator, logger),
		guesses:  redis.NewGuessStore(adapter, validator, logger),
		players:  redis.NewPlayerStore(adapter, validator, logger),
		legacy:   redis.NewLegacyReader(adapter, validator, logger),
		cooldown: redis.NewGuessCooldown(adapter, registry, cfg.Game.GuessCooldown),
	}, nil
}

func newHideSeekFacade(
	cfg *hsconfig.Config,
	stores *hideSeekStores,
	validator *validation.Validator,
	logger *slog.Logger,
) *facade.Facade {
	players := service.NewPlayerService(stores.players, time.Now, logger)
	ledger := service.NewGuessLedger(stores.guesses, service.GuessLedgerConfig{
		SuccessThreshold: cfg.Game.SuccessThreshold,
		Clock:            time.Now,
	}, logger)

	deps := facade.Dependencies{
		Sessions:  stores.sessions,
		Ledger:    ledger,
		Players:   players,
		Validator: validator,
		Strategies: []facade.ReadStrategy{
			facade.NewCanonicalStrategy(stores.sessions, players),
			facade.NewLegacyStrategy(stores.legacy),
		},
	}
	if cfg.Game.GuessCooldown > 0 {
		deps.Limiter = stores.cooldown
	}

	return facade.New(deps, facade.Config{
		Policy: facade.GuessPolicy{
			MaxGuessesPerPlayer: cfg.Game.MaxGuessesPerPlayer,
			AllowCreatorGuess:   cfg.Game.AllowCreatorGuess,
		},
		OperationTimeout: cfg.Facade.OperationTimeout,
	}, logger)
}

// newHideSeekArchive: 보관이 꺼져 있으면 nil 아카이브를 돌려준다. (정리 서비스는 메모리 기록만 사용)
func newHideSeekArchive(ctx context.Context, cfg *hsconfig.Config, logger *slog.Logger) (cleanup.Archive, func(), error) {
	if !cfg.Archive.Enabled {
		return nil, func() {}, nil
	}

	db, closeFn, err := newHideSeekDB(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.New(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	return repo, closeFn, nil
}

func newHideSeekDB(ctx context.Context, cfg *hsconfig.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	db, sqlDB, err := dbutil.OpenWithRetry(ctx, dbutil.OpenPostgres(cfg.Postgres), dbutil.DefaultRetryConfig(), logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres failed: %w", err)
	}

	closeFn := func() {
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Warn("postgres_close_failed", "err", closeErr)
		}
	}
	return db, closeFn, nil
}

func newHideSeekMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newHideSeekCleanup(
	cfg *hsconfig.Config,
	adapter *valkeyx.Adapter,
	archive cleanup.Archive,
	reg *prometheus.Registry,
	logger *slog.Logger,
) *cleanup.Service {
	svc := cleanup.New(adapter, cfg.Cleanup, archive, cleanup.NewMetrics(reg), logger)
	if cfg.Cleanup.DistributedLock {
		// 보유 인스턴스가 죽어도 다음 주기에는 풀리도록 주기만큼만 잡는다.
		svc.WithRunLock(processinglock.New(adapter.Client(), logger, redis.LockKey, cfg.Cleanup.Interval))
	}
	return svc
}

func newHideSeekHTTPMux(
	cfg *hsconfig.Config,
	adapter *valkeyx.Adapter,
	cleanupService *cleanup.Service,
	games *facade.Facade,
	reg *prometheus.Registry,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	httpapi.Register(mux, httpapi.Deps{
		Cleanup: cleanupService,
		Games:   games,
		Checks: map[string]health.Checker{
			"valkey": adapter.Ping,
		},
		Gatherer:   reg,
		AdminToken: cfg.AdminToken,
	}, logger)
	return mux
}

func newHideSeekHTTPServer(cfg *hsconfig.Config, tp *telemetry.Provider, mux *http.ServeMux) *http.Server {
	traceOperation := ""
	if tp.IsEnabled() {
		traceOperation = hsconfig.ServiceName + ".http"
	}
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return httpserver.NewServer(addr, mux, httpserver.ServerOptions{
		UseH2C:            true,
		ReadHeaderTimeout: cfg.ServerTuning.ReadHeaderTimeout,
		IdleTimeout:       cfg.ServerTuning.IdleTimeout,
		MaxHeaderBytes:    cfg.ServerTuning.MaxHeaderBytes,
		TraceOperation:    traceOperation,
	})
}

func newHideSeekServerApp(
	logger *slog.Logger,
	server *http.Server,
	cleanupService *cleanup.Service,
) *bootstrap.ServerApp {
	return bootstrap.NewServerApp(
		hsconfig.ServiceName,
		logger,
		server,
		hsconfig.DefaultShutdownTimeoutSeconds*time.Second,
		bootstrap.BackgroundTask{
			Name:        "cleanup_scheduler",
			ErrorLogKey: "cleanup_scheduler_failed",
			Run:         cleanupService.Run,
		},
	)
}
