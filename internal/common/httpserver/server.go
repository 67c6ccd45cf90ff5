package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Serve: HTTP 서버를 시작하고 ctx 가 취소되면 shutdownTimeout 안에서 우아하게 종료(Graceful Shutdown)합니다.
func Serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return listenResult(err, "http server listen failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return listenResult(<-errCh, "http server stopped with error")
}

func listenResult(err error, msg string) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
