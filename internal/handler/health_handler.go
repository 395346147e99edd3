package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// healthCheckTimeout はヘルスチェック時のDB疎通確認のタイムアウト。
const healthCheckTimeout = 2 * time.Second

// HealthChecker はデータストアの疎通確認を行うインターフェース。
// *sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// rootResponse はルートエンドポイントのAPIレスポンス。
type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// NewHealthHandler はデータベースへの疎通を確認するハンドラーを返す。
// GET /health
func NewHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := checker.PingContext(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			writeJSON(w, healthResponse{Status: "unavailable"})
			return
		}

		writeJSON(w, healthResponse{Status: "ok"})
	}
}

// Root はAPIの案内を返す。
// GET /
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, rootResponse{
		Message: "Welcome to the Task Manager API!",
		Version: "1.0.0",
	})
}
