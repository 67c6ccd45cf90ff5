//go:build wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/bootstrap"
	hsconfig "github.com/park285/llm-kakao-bots/hideseek-go/internal/hideseek/config"
)

//go:generate go run github.com/google/wire/cmd/wire@v0.7.0
func Initialize(
	ctx context.Context,
	cfg *hsconfig.Config,
	logger *slog.Logger,
) (*bootstrap.ServerApp, func(), error) {
	wire.Build(
		hideSeekProviderSet,
	)
	return nil, nil, nil
}
