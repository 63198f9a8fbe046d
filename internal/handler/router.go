package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hilalmustofa/simpleolshop/internal/metrics"
	"github.com/hilalmustofa/simpleolshop/internal/middleware"
	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/ratelimit"
	"github.com/hilalmustofa/simpleolshop/internal/validation"
)

// DestroySignatureHeader は全商品削除に必要な署名ヘッダー名。
const DestroySignatureHeader = "X-Destroy-Signature"

// productCreateLimiterName は商品作成の固定ウィンドウ制限の識別名。
const productCreateLimiterName = "product_create"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler

	// 認証
	TokenVerifier    middleware.TokenVerifier
	DestroySignature string

	// レート制限
	ProductCreateLimiter ratelimit.Limiter
	GeneralLimiter       *middleware.ClientRateLimiter
	ClientKey            middleware.KeyFunc

	// アップロード
	Uploader      middleware.FileAcceptor
	UploadDir     string
	UploadURLPath string
	BaseURL       string

	// ヘルスチェック
	DB Pinger

	// サービス
	ProductService ProductServiceInterface
	OrderService   OrderServiceInterface
	UserService    UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// グローバルミドルウェアの実行順序:
//
//	SecurityHeaders → Logging → Metrics → Recovery → CORS
//
// /api 配下には一般レート制限を適用し、ルートごとのステージは
// RateLimit → Auth → Upload → Validate の順にパイプラインで構成する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	clientKey := deps.ClientKey
	if clientKey == nil {
		clientKey = middleware.ClientIPKey(false)
	}

	r := chi.NewRouter()
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, model.NewRouteNotFoundError())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteAPIError(w, model.NewMethodNotAllowedError())
	})

	// --- 運用エンドポイント ---
	if deps.DB != nil {
		r.Get("/health", HealthHandler(deps.DB))
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// アップロード画像の配信
	if deps.UploadDir != "" && deps.UploadURLPath != "" {
		prefix := "/" + strings.Trim(deps.UploadURLPath, "/")
		files := staticFiles(prefix, deps.UploadDir)
		r.Method(http.MethodGet, prefix+"/*", files)
		r.Method(http.MethodHead, prefix+"/*", files)
	}

	productHandler := NewProductHandler(deps.ProductService, deps.BaseURL)
	orderHandler := NewOrderHandler(deps.OrderService, deps.BaseURL)
	userHandler := NewUserHandler(deps.UserService)

	auth := middleware.BearerAuth(deps.TokenVerifier)
	authOnly := middleware.NewPipeline(auth)

	r.Route("/api", func(r chi.Router) {
		if deps.GeneralLimiter != nil {
			r.Use(deps.GeneralLimiter.Middleware())
		}

		// 商品管理
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Method(http.MethodPost, "/", middleware.NewPipeline(
				middleware.FixedWindow(deps.ProductCreateLimiter, clientKey, productCreateLimiterName, collector),
				auth,
				middleware.Upload(deps.Uploader, collector),
				middleware.ValidateForm(validation.ProductRules),
			).ThenFunc(productHandler.Create))

			// /{id} より先に登録する
			r.Method(http.MethodDelete, "/destroy", middleware.NewPipeline(
				auth,
				middleware.RequireSignature(DestroySignatureHeader, deps.DestroySignature),
			).ThenFunc(productHandler.Destroy))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", productHandler.Get)
				r.Method(http.MethodPut, "/", middleware.NewPipeline(
					auth,
					middleware.ValidateJSON(validation.ProductRules),
				).ThenFunc(productHandler.Update))
				r.Method(http.MethodDelete, "/", authOnly.ThenFunc(productHandler.Delete))
			})
		})

		// 注文管理
		r.Route("/orders", func(r chi.Router) {
			r.Method(http.MethodGet, "/", authOnly.ThenFunc(orderHandler.List))
			r.Method(http.MethodPost, "/", middleware.NewPipeline(
				auth,
				middleware.ValidateJSON(validation.OrderRules),
			).ThenFunc(orderHandler.Create))

			r.Route("/{id}", func(r chi.Router) {
				r.Method(http.MethodGet, "/", authOnly.ThenFunc(orderHandler.Get))
				r.Method(http.MethodDelete, "/", authOnly.ThenFunc(orderHandler.Delete))
			})
		})

		// ユーザー管理
		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Method(http.MethodPost, "/signup", middleware.NewPipeline(
				middleware.ValidateJSON(validation.SignupRules),
			).ThenFunc(userHandler.Signup))
			r.Method(http.MethodPost, "/login", middleware.NewPipeline(
				middleware.ValidateJSON(validation.LoginRules),
			).ThenFunc(userHandler.Login))
			r.Method(http.MethodDelete, "/{id}", authOnly.ThenFunc(userHandler.Delete))
		})
	})

	return r
}
