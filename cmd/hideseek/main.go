package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/health"
	hsapp "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/app"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
)

// Version: 빌드 시 ldflags로 주입됨 (예: -ldflags="-X main.Version=1.0.0")
var Version = "dev"

func main() {
	health.Init(Version)

	logger := bootstrap.NewLogger()
	slog.SetDefault(logger)

	finalLogger, err := bootstrap.RunEntrypoint(
		context.Background(),
		logger,
		"hideseek.log",
		hsconfig.LoadFromEnv,
		func(cfg *hsconfig.Config) (hsconfig.LogConfig, bool) { return cfg.Log, cfg.Telemetry.Enabled },
		hsapp.Initialize,
	)
	if err != nil {
		logger = finalLogger
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
