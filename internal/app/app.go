// Package app は設定の読み込みと依存関係のワイヤリングを行い、各起動モードを実行する。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/reelmatch/internal/admin"
	"github.com/hitoshi/reelmatch/internal/auth"
	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/brand"
	"github.com/hitoshi/reelmatch/internal/config"
	"github.com/hitoshi/reelmatch/internal/creator"
	"github.com/hitoshi/reelmatch/internal/database"
	"github.com/hitoshi/reelmatch/internal/handler"
	"github.com/hitoshi/reelmatch/internal/inquiry"
	"github.com/hitoshi/reelmatch/internal/logger"
	"github.com/hitoshi/reelmatch/internal/metrics"
	"github.com/hitoshi/reelmatch/internal/middleware"
	"github.com/hitoshi/reelmatch/internal/repository"
	"github.com/hitoshi/reelmatch/internal/security"
	"github.com/hitoshi/reelmatch/internal/user"
	"github.com/hitoshi/reelmatch/internal/worker/trial"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、LOG_LEVELに従ってJSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 設定読み込みの失敗もJSONで出力できるよう、先にINFOで初期化しておく
	logger.SetupDefault(w, slog.LevelInfo)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDB は接続プール設定を適用してDBを開き、疎通を確認する。
func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newRegistry はアプリケーションメトリクスとランタイムメトリクスを登録したレジストリを返す。
func newRegistry() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// buildHandler はリポジトリ・サービス・ミドルウェアを組み立ててHTTPハンドラーを返す。
// 戻り値のstop関数はレートリミッターのクリーンアップを停止する。
func buildHandler(cfg *config.Config, db *sql.DB, log *slog.Logger) (http.Handler, func()) {
	// 1. リポジトリ
	userRepo := repository.NewPostgresUserRepo(db)
	creatorRepo := repository.NewPostgresCreatorProfileRepo(db)
	reelRepo := repository.NewPostgresReelRepo(db)
	brandRepo := repository.NewPostgresBrandProfileRepo(db)
	shortlistRepo := repository.NewPostgresShortlistRepo(db)
	inquiryRepo := repository.NewPostgresInquiryRepo(db)
	messageRepo := repository.NewPostgresMessageRepo(db)

	// 2. セキュリティ
	sanitizer := security.NewTextSanitizer()
	urlGuard := security.NewURLGuard()

	// 3. 認証と認可
	reg, collector := newRegistry()

	hostedAuth := auth.NewHostedAuthClient(auth.HostedAuthConfig{
		BaseURL: cfg.AuthURL,
		APIKey:  cfg.AuthAPIKey,
	})
	validator := auth.NewJWTValidator(auth.JWTConfig{
		Secret:   cfg.AuthJWTSecret,
		Issuer:   cfg.AuthJWTIssuer,
		Audience: cfg.AuthJWTAudience,
		Leeway:   30 * time.Second,
	})
	resolver := authz.NewResolver(validator, userRepo, log)
	authorizer := authz.NewAuthorizer(collector, log)

	authService := auth.NewService(hostedAuth, userRepo, auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge})

	// 4. ドメインサービス
	creatorService := creator.NewService(creatorRepo, reelRepo, authorizer, sanitizer, urlGuard)
	brandService := brand.NewService(brandRepo, creatorRepo, shortlistRepo, authorizer, sanitizer, urlGuard, cfg.BrandTrialPeriod())
	inquiryService := inquiry.NewService(inquiryRepo, messageRepo, brandRepo, creatorRepo, authorizer, sanitizer)
	userService := user.NewService(userRepo, authorizer, log)
	adminService := admin.NewService(userRepo, brandRepo, creatorRepo, authorizer, log)

	// 5. レート制限
	limiterCfg := middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitMessage)
	limiterCfg.Recorder = collector
	limiter := middleware.NewRateLimiter(limiterCfg)

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		Resolver:          resolver,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:     limiter,
		MetricsRecorder: collector,

		HealthChecker:  db,
		MetricsHandler: metrics.Handler(reg),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain: cfg.CookieDomain,
			CookieSecure: cfg.CookieSecure,
		},

		CreatorService: creatorService,
		BrandService:   brandService,
		InquiryService: inquiryService,
		UserService:    userService,
		AdminService:   adminService,
	})

	return router, limiter.Stop
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	router, stopLimiter := buildHandler(cfg, db, slog.Default())
	defer stopLimiter()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// ブランドのトライアル期限切れを定期的に反映する。
func runWorker(cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	// ワーカーのメトリクスはプロセス内でのみ集計する
	_, collector := newRegistry()
	job := trial.NewExpiryJob(db, slog.Default(), collector)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("worker starting",
		slog.Duration("trial_check_interval", cfg.TrialCheckInterval),
	)

	job.Start(ctx, cfg.TrialCheckInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
	)
	return nil
}

// runHealthcheck はdistroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
