package app

import (
	"context"
	"log/slog"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/bootstrap"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
)

// Initialize 는 숨바꼭질 서비스 의존성을 초기화하고 ServerApp을 반환한다.
func Initialize(ctx context.Context, cfg *hsconfig.Config, logger *slog.Logger) (*bootstrap.ServerApp, func(), error) {
	provider, shutdownTelemetry, err := newHideSeekTelemetry(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	client, cleanupValkey, err := newHideSeekValkey(ctx, cfg, logger)
	if err != nil {
		shutdownTelemetry()
		return nil, nil, err
	}

	adapter := newHideSeekAdapter(cfg, client)

	validator, err := newHideSeekValidator(cfg)
	if err != nil {
		cleanupValkey()
		shutdownTelemetry()
		return nil, nil, err
	}

	stores, err := newHideSeekStores(ctx, cfg, adapter, validator, logger)
	if err != nil {
		cleanupValkey()
		shutdownTelemetry()
		return nil, nil, err
	}

	games := newHideSeekFacade(cfg, stores, validator, logger)

	archive, cleanupArchive, err := newHideSeekArchive(ctx, cfg, logger)
	if err != nil {
		cleanupValkey()
		shutdownTelemetry()
		return nil, nil, err
	}

	registry := newHideSeekMetricsRegistry()
	cleanupService := newHideSeekCleanup(cfg, adapter, archive, registry, logger)

	httpMux := newHideSeekHTTPMux(cfg, adapter, cleanupService, games, registry, logger)
	httpServer := newHideSeekHTTPServer(cfg, provider, httpMux)

	serverApp := newHideSeekServerApp(logger, httpServer, cleanupService)

	cleanup := func() {
		cleanupArchive()
		cleanupValkey()
		shutdownTelemetry()
	}

	return serverApp, cleanup, nil
}
