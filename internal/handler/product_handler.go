package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hilalmustofa/simpleolshop/internal/middleware"
	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/product"
	"github.com/hilalmustofa/simpleolshop/internal/validation"
)

// ProductServiceInterface は商品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.Product], error)
	Get(ctx context.Context, id string) (*model.Product, error)
	Create(ctx context.Context, in product.CreateInput) (*model.Product, error)
	Update(ctx context.Context, id string, in product.UpdateInput) (*model.Product, error)
	Delete(ctx context.Context, id string) error
	DestroyAll(ctx context.Context) (int64, error)
}

// ProductHandler は商品管理のHTTPハンドラー。
type ProductHandler struct {
	service ProductServiceInterface
	views   views
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface, baseURL string) *ProductHandler {
	return &ProductHandler{
		service: service,
		views:   views{baseURL: baseURL},
	}
}

type productListResponse struct {
	envelope
	Products []productView `json:"products"`
	pageMeta
}

type productResponse struct {
	envelope
	Product productView `json:"product"`
}

type destroyResponse struct {
	envelope
	Deleted int64 `json:"deleted"`
}

// List は商品一覧を返す。
// GET /api/products?page=&per_page=&name=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	res, err := h.service.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, productListResponse{
		envelope: ok(http.StatusOK, "Success get all products"),
		Products: h.views.products(res.Items),
		pageMeta: metaOf(q, res.Total),
	})
}

// Get は商品を1件返す。
// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, productResponse{
		envelope: ok(http.StatusOK, "Get single product success"),
		Product:  h.views.product(p),
	})
}

// Create は商品を作成する。
// POST /api/products（multipart: name, description, price, picture）
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	file, ok1 := middleware.UploadFromContext(r.Context())
	fields, ok2 := middleware.FieldsFromContext(r.Context())
	if !ok1 || !ok2 {
		// パイプライン構成の誤り
		middleware.WriteInternalServerError(w)
		return
	}

	p, err := h.service.Create(r.Context(), product.CreateInput{
		Name:        stringField(fields, "name"),
		Description: stringField(fields, "description"),
		Price:       stringField(fields, "price"),
		Picture:     file.Path,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, productResponse{
		envelope: ok(http.StatusCreated, "Product created successfully"),
		Product:  h.views.product(p),
	})
}

// Update は商品の名前・説明・価格を更新する。
// PUT /api/products/{id}（JSON）
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, found := middleware.FieldsFromContext(r.Context())
	if !found {
		middleware.WriteInternalServerError(w)
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), product.UpdateInput{
		Name:        stringField(fields, "name"),
		Description: stringField(fields, "description"),
		Price:       stringField(fields, "price"),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, productResponse{
		envelope: ok(http.StatusOK, "Product edited successfully"),
		Product:  h.views.product(p),
	})
}

// Delete は商品を削除する。
// DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, ok(http.StatusOK, "Product deleted successfully"))
}

// Destroy は全商品を削除する。
// DELETE /api/products/destroy（X-Destroy-Signature 必須）
func (h *ProductHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DestroyAll(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, destroyResponse{
		envelope: ok(http.StatusOK, "All products deleted successfully"),
		Deleted:  n,
	})
}

// stringField は検証済み入力から文字列値を取り出す。
func stringField(fields validation.Fields, key string) string {
	s, _ := validation.String(fields[key])
	return s
}
