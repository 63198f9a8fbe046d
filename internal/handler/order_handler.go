package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hilalmustofa/simpleolshop/internal/middleware"
	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/order"
)

// OrderServiceInterface は注文ハンドラーが必要とするサービスインターフェース。
type OrderServiceInterface interface {
	List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.OrderWithProduct], error)
	Get(ctx context.Context, id string) (*model.OrderWithProduct, error)
	Create(ctx context.Context, in order.CreateInput) (*model.OrderWithProduct, error)
	Delete(ctx context.Context, id string) error
}

// OrderHandler は注文管理のHTTPハンドラー。
type OrderHandler struct {
	service OrderServiceInterface
	views   views
}

// NewOrderHandler はOrderHandlerを生成する。
func NewOrderHandler(service OrderServiceInterface, baseURL string) *OrderHandler {
	return &OrderHandler{
		service: service,
		views:   views{baseURL: baseURL},
	}
}

type orderListResponse struct {
	envelope
	Orders []orderView `json:"orders"`
	pageMeta
}

type orderResponse struct {
	envelope
	Order orderView `json:"order"`
}

// List は注文一覧を返す。
// GET /api/orders?page=&per_page=&name=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	res, err := h.service.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, orderListResponse{
		envelope: ok(http.StatusOK, "Success get all orders"),
		Orders:   h.views.orders(res.Items),
		pageMeta: metaOf(q, res.Total),
	})
}

// Get は注文を1件返す。
// GET /api/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, orderResponse{
		envelope: ok(http.StatusOK, "Get single order success"),
		Order:    h.views.order(o),
	})
}

// Create は注文を作成する。
// POST /api/orders（JSON: product, quantity）
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, found := middleware.FieldsFromContext(r.Context())
	if !found {
		middleware.WriteInternalServerError(w)
		return
	}

	// quantity は検証ステージで整数範囲を確認済み
	quantity, err := strconv.Atoi(strings.TrimSpace(stringField(fields, "quantity")))
	if err != nil {
		middleware.WriteAPIError(w, model.NewValidationError("quantity must be a whole number of at least 1"))
		return
	}

	o, err := h.service.Create(r.Context(), order.CreateInput{
		ProductID: stringField(fields, "product"),
		Quantity:  quantity,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, orderResponse{
		envelope: ok(http.StatusCreated, "Order placed, thank you"),
		Order:    h.views.order(o),
	})
}

// Delete は注文を削除する。
// DELETE /api/orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, ok(http.StatusOK, "Order deleted successfully"))
}
