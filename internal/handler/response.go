package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hilalmustofa/simpleolshop/internal/middleware"
	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// handleServiceError はサービス層から返されたエラーを統一エラーフォーマットで書き込む。
// APIError以外のエラーは詳細をログにのみ記録し、500を返す。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// envelope は成功レスポンスの共通部分。
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func ok(status int, message string) envelope {
	return envelope{Code: status, Message: message}
}

// --- ビュー ---

// productView は商品のAPIレスポンス表現。
type productView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Picture     string `json:"picture"`
}

// orderView は注文のAPIレスポンス表現。参照先商品が削除済みの場合 product は null。
type orderView struct {
	ID        string       `json:"id"`
	ProductID string       `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Product   *productView `json:"product"`
}

// userView はユーザーのAPIレスポンス表現。パスワードハッシュは含めない。
type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// views はベースURLを用いて永続化モデルをレスポンス表現に変換する。
type views struct {
	baseURL string
}

// pictureURL は保存パスをベースURL付きの公開URLに変換する。
func (v views) pictureURL(storedPath string) string {
	p := strings.TrimLeft(strings.ReplaceAll(storedPath, `\`, "/"), "/")
	return v.baseURL + "/" + p
}

func (v views) product(p *model.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Picture:     v.pictureURL(p.Picture),
	}
}

func (v views) products(ps []*model.Product) []productView {
	out := make([]productView, len(ps))
	for i, p := range ps {
		out[i] = v.product(p)
	}
	return out
}

func (v views) order(o *model.OrderWithProduct) orderView {
	out := orderView{
		ID:        o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
	}
	if o.Product != nil {
		pv := v.product(o.Product)
		out.Product = &pv
	}
	return out
}

func (v views) orders(os []*model.OrderWithProduct) []orderView {
	out := make([]orderView, len(os))
	for i, o := range os {
		out[i] = v.order(o)
	}
	return out
}

func userViewOf(u *model.User) userView {
	return userView{ID: u.ID, Email: u.Email}
}

func userViews(us []*model.User) []userView {
	out := make([]userView, len(us))
	for i, u := range us {
		out[i] = userViewOf(u)
	}
	return out
}

// tokenView はログイン成功時に返すトークン情報。
type tokenView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
