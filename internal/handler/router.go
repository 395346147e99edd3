package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskman/internal/metrics"
	"github.com/hitoshi/taskman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserResolver       middleware.UserResolver
	CORSAllowedOrigins []string
	EnableHSTS         bool
	RateLimiter        *middleware.RateLimiter
	Logger             *slog.Logger

	// 運用（nilの場合は該当機能を無効化）
	Metrics        metrics.MetricsCollector
	MetricsHandler http.Handler
	HealthChecker  HealthChecker

	// ユーザー
	UserService UserServiceInterface

	// タスク
	TaskService TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Logging → Metrics → Recovery → SecurityHeaders → CORS
//	→ (認証ルート) Auth → RateLimit(General)
//	→ (ログイン・登録) RateLimit(Login)
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// panicしたリクエストもstatus=500としてログ・メトリクスに残すため、Recoveryはその内側に置く
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware(middleware.SecurityHeadersConfig{
		EnableHSTS: deps.EnableHSTS,
	}))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))

	userHandler := NewUserHandler(deps.UserService)
	taskHandler := NewTaskHandler(deps.TaskService)

	var authFailures middleware.AuthFailureRecorder
	if deps.Metrics != nil {
		authFailures = deps.Metrics
	}
	authMiddleware := middleware.NewAuthMiddleware(deps.UserResolver, authFailures)

	// --- 認証不要のルート ---

	r.Get("/", Root)
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/users", func(r chi.Router) {
		// ログイン・登録（IP単位のレート制限）
		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.LoginMiddleware())
			}
			r.Post("/register", userHandler.Register)
			r.Post("/token", userHandler.Token)
		})

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.GeneralMiddleware())
			}
			r.Get("/me", userHandler.Me)
		})
	})

	// タスク管理（すべて認証が必要）
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware)
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Post("/", taskHandler.CreateTask)
		r.Get("/", taskHandler.ListTasks)
		r.Get("/stats", taskHandler.GetStats)

		r.Get("/{id}", taskHandler.GetTask)
		r.Put("/{id}", taskHandler.UpdateTask)
		r.Delete("/{id}", taskHandler.DeleteTask)
	})

	return r
}
