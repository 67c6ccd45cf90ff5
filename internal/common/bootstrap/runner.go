package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/park285/llm-kakao-bots/hideseek-go/internal/common/httpserver"
)

// BackgroundTask: HTTP 서버와 함께 실행되는 장기 작업 (예: 정리 스케줄러)
type BackgroundTask struct {
	Name        string
	ErrorLogKey string
	Run         func(ctx context.Context) error
}

// RunHTTPServer: SIGINT/SIGTERM 을 받거나 작업 하나가 실패할 때까지 HTTP 서버와 백그라운드 작업을 함께 실행한다.
func RunHTTPServer(
	ctx context.Context,
	logger *slog.Logger,
	service string,
	server *http.Server,
	shutdownTimeout time.Duration,
	backgroundTasks ...BackgroundTask,
) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(signalCtx)

	for _, task := range backgroundTasks {
		if task.Run == nil {
			continue
		}
		g.Go(func() error {
			if err := task.Run(gctx); err != nil {
				logKey := task.ErrorLogKey
				if logKey == "" {
					logKey = "background_task_failed"
				}
				logger.Error(logKey, "task", task.Name, "err", err)
				return fmt.Errorf("%s failed: %w", task.Name, err)
			}
			return nil
		})
	}

	logger.Info("server_start", "service", service, "addr", server.Addr)
	g.Go(func() error {
		if err := httpserver.Serve(gctx, server, shutdownTimeout); err != nil {
			return fmt.Errorf("http server serve failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if signalCtx.Err() != nil && ctx.Err() == nil {
		logger.Info("shutdown_signal_received", "service", service)
	}
	if err != nil {
		return fmt.Errorf("run http server failed: %w", err)
	}
	logger.Info("server_stopped", "service", service)
	return nil
}
