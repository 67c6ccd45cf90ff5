package httpserver

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServerOptions: 운영용 HTTP 서버 생성 옵션
type ServerOptions struct {
	UseH2C            bool
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// TraceOperation: 비어있지 않으면 otelhttp 로 요청 span 을 만든다.
	TraceOperation string
}

// NewServer: 핸들러를 (선택적으로) otelhttp/h2c 로 감싼 http.Server 를 만든다.
func NewServer(addr string, handler http.Handler, opts ServerOptions) *http.Server {
	if handler == nil {
		handler = http.NewServeMux()
	}

	finalHandler := handler
	if opts.TraceOperation != "" {
		finalHandler = otelhttp.NewHandler(finalHandler, opts.TraceOperation)
	}
	if opts.UseH2C {
		finalHandler = WrapH2C(finalHandler)
	}

	readHeaderTimeout := opts.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 5 * time.Second
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           finalHandler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if opts.IdleTimeout > 0 {
		server.IdleTimeout = opts.IdleTimeout
	}
	if opts.MaxHeaderBytes > 0 {
		server.MaxHeaderBytes = opts.MaxHeaderBytes
	}

	return server
}

// WrapH2C: TLS 없는 HTTP/2(h2c) 업그레이드를 허용한다.
func WrapH2C(handler http.Handler) http.Handler {
	return h2c.NewHandler(handler, &http2.Server{})
}
