package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/hilalmustofa/simpleolshop/internal/auth"
	"github.com/hilalmustofa/simpleolshop/internal/metrics"
	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/ratelimit"
	"github.com/hilalmustofa/simpleolshop/internal/upload"
	"github.com/hilalmustofa/simpleolshop/internal/validation"
)

// maxJSONBodySize はJSONボディの最大バイト数。
const maxJSONBodySize = 1 << 20

// multipartOverhead はファイル以外のフィールドとmultipart境界に許容する追加バイト数。
const multipartOverhead = 2 << 20

// --- 固定ウィンドウのレート制限 ---

type fixedWindowStage struct {
	limiter ratelimit.Limiter
	keyFunc KeyFunc
	name    string
	metrics metrics.MetricsCollector
}

// FixedWindow はクライアント単位の固定ウィンドウでリクエスト数を制限するステージを返す。
// 結果はRateLimit-Limit、RateLimit-Remaining、RateLimit-Resetヘッダーで通知する。
// カウンタストアの障害時はリクエストを通す。
func FixedWindow(limiter ratelimit.Limiter, keyFunc KeyFunc, name string, collector metrics.MetricsCollector) Stage {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &fixedWindowStage{limiter: limiter, keyFunc: keyFunc, name: name, metrics: collector}
}

func (s *fixedWindowStage) Phase() Phase { return PhaseRateLimit }

func (s *fixedWindowStage) Run(w http.ResponseWriter, r *http.Request) Outcome {
	key := s.name + ":" + s.keyFunc(r)
	res, err := s.limiter.Allow(r.Context(), key)
	if err != nil {
		slog.Error("rate limiter unavailable",
			slog.String("limiter", s.name),
			slog.String("error", err.Error()),
		)
		return Continue(r)
	}

	resetSec := int64(math.Ceil(res.Reset.Seconds()))
	if resetSec < 1 {
		resetSec = 1
	}
	w.Header().Set("RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
	w.Header().Set("RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
	w.Header().Set("RateLimit-Reset", strconv.FormatInt(resetSec, 10))

	if !res.Allowed {
		w.Header().Set("Retry-After", strconv.FormatInt(resetSec, 10))
		s.metrics.RecordRateLimitRejection(s.name)
		slog.Warn("rate limit exceeded",
			slog.String("client", key),
			slog.String("limit_type", s.name),
		)
		return Terminate(model.NewRateLimitExceededError())
	}
	return Continue(r)
}

// --- Bearerトークン認証 ---

// TokenVerifier はBearerトークンを検証する。auth.TokenServiceが実装する。
type TokenVerifier interface {
	Verify(raw string) (*model.Claims, error)
}

type bearerAuthStage struct {
	verifier TokenVerifier
}

// BearerAuth はAuthorizationヘッダーのBearerトークンを検証するステージを返す。
// 検証済みのクレームはリクエストコンテキストに注入する。
func BearerAuth(verifier TokenVerifier) Stage {
	return &bearerAuthStage{verifier: verifier}
}

func (s *bearerAuthStage) Phase() Phase { return PhaseAuth }

func (s *bearerAuthStage) Run(_ http.ResponseWriter, r *http.Request) Outcome {
	claims, err := s.verifier.Verify(bearerToken(r))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenMissing):
			return Terminate(model.NewTokenMissingError())
		case errors.Is(err, auth.ErrTokenExpired):
			return Terminate(model.NewTokenExpiredError())
		default:
			slog.Debug("token verification failed", slog.String("error", err.Error()))
			return Terminate(model.NewTokenInvalidError())
		}
	}

	recordUserID(r.Context(), claims.UserID)
	return Continue(r.WithContext(ContextWithClaims(r.Context(), claims)))
}

// bearerToken はAuthorizationヘッダーからトークン部分を取り出す。
// スキームが Bearer でない場合は空文字を返す。
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// --- 破壊的操作の署名ヘッダー ---

type signatureStage struct {
	header string
	want   []byte
}

// RequireSignature は指定ヘッダーが期待値と一致することを要求するステージを返す。
// 認証の後に配置する。
func RequireSignature(header, value string) Stage {
	return &signatureStage{header: header, want: []byte(value)}
}

func (s *signatureStage) Phase() Phase { return PhaseAuth }

func (s *signatureStage) Run(_ http.ResponseWriter, r *http.Request) Outcome {
	got := []byte(r.Header.Get(s.header))
	if len(s.want) == 0 || subtle.ConstantTimeCompare(got, s.want) != 1 {
		return Terminate(model.NewForbiddenSignatureError())
	}
	return Continue(r)
}

// --- ファイルアップロード ---

// FileAcceptor はmultipartリクエストから単一ファイルを受け付ける。upload.Uploaderが実装する。
type FileAcceptor interface {
	Accept(r *http.Request) (*upload.StoredFile, map[string]string, error)
	Remove(storedPath string) error
	Field() string
	MaxSize() int64
}

type uploadStage struct {
	uploader FileAcceptor
	metrics  metrics.MetricsCollector
}

// Upload は画像ファイルを保存し、保存結果とテキストフィールドをコンテキストに注入するステージを返す。
// 後続のステージが打ち切った場合、保存したファイルは削除する。
func Upload(uploader FileAcceptor, collector metrics.MetricsCollector) Stage {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &uploadStage{uploader: uploader, metrics: collector}
}

func (s *uploadStage) Phase() Phase { return PhaseUpload }

func (s *uploadStage) Run(w http.ResponseWriter, r *http.Request) Outcome {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploader.MaxSize()+multipartOverhead)

	stored, form, err := s.uploader.Accept(r)
	if err != nil {
		return Terminate(s.uploadError(err))
	}
	s.metrics.RecordUpload("stored")

	ctx := ContextWithUpload(r.Context(), stored, form)
	return ContinueWithRollback(r.WithContext(ctx), func() {
		if err := s.uploader.Remove(stored.Path); err != nil {
			slog.Error("failed to remove upload",
				slog.String("path", stored.Path),
				slog.String("error", err.Error()),
			)
		}
	})
}

func (s *uploadStage) uploadError(err error) *model.APIError {
	var upErr *upload.Error
	if !errors.As(err, &upErr) {
		upErr = &upload.Error{Kind: upload.KindStorageFault, Err: err}
	}

	switch upErr.Kind {
	case upload.KindMissing:
		s.metrics.RecordUpload("missing")
		return model.NewUploadMissingError(s.uploader.Field())
	case upload.KindUnsupportedType:
		s.metrics.RecordUpload("unsupported_type")
		return model.NewUnsupportedFileTypeError(s.uploader.MaxSize())
	default:
		s.metrics.RecordUpload("storage_fault")
		var maxBytesErr *http.MaxBytesError
		if errors.Is(err, upload.ErrTooLarge) || errors.As(err, &maxBytesErr) {
			return model.NewUploadFailedError("file is too large")
		}
		slog.Error("failed to store upload", slog.String("error", err.Error()))
		return model.NewUploadFailedError("failed to store file")
	}
}

// --- 入力検証 ---

type validateFormStage struct {
	rules []validation.Rule
}

// ValidateForm はUploadステージで読み取ったmultipartのテキストフィールドを検証するステージを返す。
func ValidateForm(rules []validation.Rule) Stage {
	return &validateFormStage{rules: rules}
}

func (s *validateFormStage) Phase() Phase { return PhaseValidate }

func (s *validateFormStage) Run(_ http.ResponseWriter, r *http.Request) Outcome {
	form := FormFromContext(r.Context())
	fields := make(validation.Fields, len(form))
	for k, v := range form {
		fields[k] = v
	}
	return validateFields(r, s.rules, fields)
}

type validateJSONStage struct {
	rules []validation.Rule
}

// ValidateJSON はJSONボディをデコードして検証するステージを返す。
// 数値はjson.Numberとして保持する。
func ValidateJSON(rules []validation.Rule) Stage {
	return &validateJSONStage{rules: rules}
}

func (s *validateJSONStage) Phase() Phase { return PhaseValidate }

func (s *validateJSONStage) Run(w http.ResponseWriter, r *http.Request) Outcome {
	fields := validation.Fields{}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodySize))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return Terminate(model.NewInvalidRequestError("body is too large"))
		}
		return Terminate(model.NewInvalidRequestError("malformed JSON"))
	}
	if fields == nil {
		// "null" のボディ
		fields = validation.Fields{}
	}
	return validateFields(r, s.rules, fields)
}

func validateFields(r *http.Request, rules []validation.Rule, fields validation.Fields) Outcome {
	if v := validation.Validate(rules, fields); v != nil {
		return Terminate(model.NewValidationError(v.Message))
	}
	return Continue(r.WithContext(ContextWithFields(r.Context(), fields)))
}
