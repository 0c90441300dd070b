package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/reelmatch/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Resolver          middleware.IdentityResolver
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter
	MetricsRecorder   middleware.HTTPMetricsRecorder

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	CreatorService CreatorServiceInterface
	BrandService   BrandServiceInterface
	InquiryService InquiryServiceInterface
	UserService    UserServiceInterface
	AdminService   AdminServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → CORS → Session → Logging → Metrics → RateLimit(General) → CSRF(/api)
//
// Sessionは資格情報からIdentityを一度だけ解決してコンテキストに注入する。
// 未認証のリクエストも通過させ、認可は各サービスのポリシー表で判定する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSessionMiddleware(deps.Resolver))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	creatorHandler := NewCreatorHandler(deps.CreatorService)
	brandHandler := NewBrandHandler(deps.BrandService)
	inquiryHandler := NewInquiryHandler(deps.InquiryService)
	userHandler := NewUserHandler(deps.UserService)
	adminHandler := NewAdminHandler(deps.AdminService)

	// --- 運用エンドポイント（レート制限なし） ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 認証ルート
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/signout", authHandler.SignOut)
			r.Get("/me", authHandler.Me)
		})

		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// --- APIルート ---
		// 状態変更リクエストはCSRFトークンを検証する
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

			r.Route("/api/creators", func(r chi.Router) {
				r.Get("/", creatorHandler.List)
				r.Post("/", creatorHandler.Create)
				r.Get("/me", creatorHandler.GetMine)
				r.Patch("/me", creatorHandler.UpdateMine)
				r.Get("/{id}", creatorHandler.Get)
				r.Get("/{id}/reels", creatorHandler.ListReels)
			})

			r.Route("/api/reels", func(r chi.Router) {
				r.Post("/", creatorHandler.CreateReel)
				r.Patch("/{id}", creatorHandler.UpdateReel)
				r.Delete("/{id}", creatorHandler.DeleteReel)
			})

			r.Route("/api/brands", func(r chi.Router) {
				r.Post("/", brandHandler.Create)
				r.Get("/me", brandHandler.GetMine)
				r.Patch("/me", brandHandler.UpdateMine)
				r.Get("/{id}", brandHandler.Get)
			})

			r.Route("/api/shortlist", func(r chi.Router) {
				r.Get("/", brandHandler.ListShortlist)
				r.Post("/", brandHandler.AddToShortlist)
				r.Delete("/{id}", brandHandler.RemoveFromShortlist)
			})

			r.Route("/api/inquiries", func(r chi.Router) {
				r.Get("/", inquiryHandler.List)
				r.Post("/", inquiryHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", inquiryHandler.Get)
					r.Patch("/", inquiryHandler.UpdateStatus)
					r.Get("/messages", inquiryHandler.ListMessages)

					// POST /api/inquiries/{id}/messages - メッセージ投稿専用のレート制限を追加
					if deps.RateLimiter != nil {
						r.With(deps.RateLimiter.MessageMiddleware()).Post("/messages", inquiryHandler.PostMessage)
					} else {
						r.Post("/messages", inquiryHandler.PostMessage)
					}
				})
			})

			r.Route("/api/users", func(r chi.Router) {
				r.Delete("/me", userHandler.Withdraw)
				r.Get("/{id}", userHandler.Get)
			})

			r.Route("/api/admin", func(r chi.Router) {
				r.Get("/users", adminHandler.ListUsers)
				r.Get("/brands", adminHandler.ListBrands)
				r.Get("/creators", adminHandler.ListCreators)
				r.Post("/creators/{id}/{action}", adminHandler.ApplyVerification)
			})
		})
	})

	return r
}
