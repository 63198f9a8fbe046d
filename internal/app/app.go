// Package app はアプリケーションの依存関係を組み立て、各起動モードを実行する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/hilalmustofa/simpleolshop/internal/auth"
	"github.com/hilalmustofa/simpleolshop/internal/config"
	"github.com/hilalmustofa/simpleolshop/internal/database"
	"github.com/hilalmustofa/simpleolshop/internal/events"
	"github.com/hilalmustofa/simpleolshop/internal/handler"
	"github.com/hilalmustofa/simpleolshop/internal/logger"
	"github.com/hilalmustofa/simpleolshop/internal/metrics"
	"github.com/hilalmustofa/simpleolshop/internal/middleware"
	"github.com/hilalmustofa/simpleolshop/internal/order"
	"github.com/hilalmustofa/simpleolshop/internal/product"
	"github.com/hilalmustofa/simpleolshop/internal/ratelimit"
	"github.com/hilalmustofa/simpleolshop/internal/repository"
	"github.com/hilalmustofa/simpleolshop/internal/security"
	"github.com/hilalmustofa/simpleolshop/internal/upload"
	"github.com/hilalmustofa/simpleolshop/internal/user"
	"github.com/hilalmustofa/simpleolshop/internal/worker/cleanup"
)

const (
	// shutdownTimeout はグレースフルシャットダウンの最大待ち時間。
	shutdownTimeout = 30 * time.Second
	// uploadField は商品画像を受け付けるmultipartフィールド名。
	uploadField = "picture"
	// redisKeyPrefix は固定ウィンドウカウンターのRedisキー接頭辞。
	redisKeyPrefix = "simpleolshop:ratelimit:"
)

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// Init はアプリケーションの初期化を行う。
// 環境変数（と.env）からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. 設定読み込み前のログ出力に備えて既定レベルで初期化する
	logger.SetupDefault(w, "info")

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化する
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// newUploader は設定からアップロード保存先を構築する。
// 保存パスの接頭辞は公開パスと揃え、BASE_URL と結合したURLで配信できるようにする。
func newUploader(cfg *config.Config) *upload.Uploader {
	return upload.NewUploader(upload.Config{
		Dir:          cfg.UploadDir,
		PublicPrefix: strings.Trim(cfg.UploadURLPath, "/"),
		Field:        uploadField,
		MaxSize:      cfg.UploadMaxSize,
		AllowedTypes: allowedImageTypes,
	})
}

// newFixedWindowLimiter は商品作成用の固定ウィンドウリミッターを構築する。
// REDIS_URLが設定されていればRedis、未設定ならプロセス内メモリにカウンターを保持する。
func newFixedWindowLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		slog.Info("rate limiter store: memory")
		return ratelimit.NewMemoryLimiter(cfg.RateLimitMax, cfg.RateLimitWindow), func() {}, nil
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("rate limiter store: redis")
	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	return ratelimit.NewRedisLimiter(client, redisKeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow), closeFn, nil
}

// newPublisher は注文イベントの発行先を構築する。
// NATS_URLが未設定、または接続に失敗した場合はイベントを破棄するNopPublisherを返す。
func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.NATSURL == "" {
		return events.NopPublisher{}
	}
	p, err := events.ConnectStan(cfg.STANClusterID, cfg.STANClientID, cfg.NATSURL, cfg.STANSubject, slog.Default())
	if err != nil {
		slog.Warn("order events disabled",
			slog.String("error", err.Error()),
		)
		return events.NopPublisher{}
	}
	slog.Info("order events enabled", slog.String("subject", cfg.STANSubject))
	return p
}

// RunServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func RunServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	productRepo := repository.NewPostgresProductRepo(db)
	orderRepo := repository.NewPostgresOrderRepo(db)
	userRepo := repository.NewPostgresUserRepo(db)

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 4. インフラストラクチャ
	uploader := newUploader(cfg)

	limiter, closeLimiter, err := newFixedWindowLimiter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	defer closeLimiter()

	publisher := newPublisher(cfg)
	defer publisher.Close()

	clientKey := middleware.ClientIPKey(cfg.RateLimitTrustProxy)
	generalLimiter := middleware.NewClientRateLimiter(
		middleware.PerMinuteConfig(cfg.RateLimitGeneral), clientKey, collector,
	)
	defer generalLimiter.Stop()

	// 5. ドメインサービスの初期化
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	productService := product.NewService(productRepo, security.NewTextSanitizer(), uploader)
	orderService := order.NewService(orderRepo, productRepo, publisher, collector)
	userService := user.NewService(userRepo, auth.NewBcryptHasher(cfg.BcryptCost), tokens)

	// 6. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		Logger:            slog.Default(),
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(registry),

		TokenVerifier:    tokens,
		DestroySignature: cfg.DestroySignature,

		ProductCreateLimiter: limiter,
		GeneralLimiter:       generalLimiter,
		ClientKey:            clientKey,

		Uploader:      uploader,
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
		BaseURL:       cfg.BaseURL,

		DB: db,

		ProductService: productService,
		OrderService:   orderService,
		UserService:    userService,
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return serve(ctx, server)
}

// serve はサーバーを起動し、ctxのキャンセルまたは起動失敗で終了する。
func serve(ctx context.Context, server *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		slog.Info("API server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// RunWorker はワーカーモードで起動する。
// DB接続を開き、未参照アップロードのクリーンアップジョブをctxがキャンセルされるまで実行する。
func RunWorker(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	job := cleanup.NewCleanupJob(repository.NewPostgresProductRepo(db), newUploader(cfg), slog.Default())
	job.Grace = cfg.CleanupGrace

	// 3. ブロッキング実行
	job.Start(ctx, cfg.CleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// RunMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func RunMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
	return nil
}

// RunHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func RunHealthcheck(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
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
