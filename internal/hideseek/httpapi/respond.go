package httpapi

import (
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

const (
	headerAPIKey      = "X-API-Key"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// ErrorResponse: 관리 API 표준 에러 응답
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON: 응답을 JSON 으로 쓴다. 헤더를 보낸 뒤의 인코딩 실패는 로그만 남긴다.
func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("http_response_write_failed", "status", status, "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	writeJSON(w, status, ErrorResponse{
		Error:   strings.TrimSpace(code),
		Message: strings.TrimSpace(message),
	}, logger)
}
