package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hilalmustofa/simpleolshop/internal/middleware"
	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Signup(ctx context.Context, email, password string) (*model.User, error)
	Login(ctx context.Context, email, password string) (*user.LoginResult, error)
	List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.User], error)
	Delete(ctx context.Context, id string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

type userListResponse struct {
	envelope
	Users []userView `json:"users"`
	pageMeta
}

type userResponse struct {
	envelope
	User userView `json:"user"`
}

type loginResponse struct {
	envelope
	tokenView
}

// Signup はユーザーを登録する。
// POST /api/users/signup（JSON: email, password）
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	fields, found := middleware.FieldsFromContext(r.Context())
	if !found {
		middleware.WriteInternalServerError(w)
		return
	}

	u, err := h.service.Signup(r.Context(), stringField(fields, "email"), stringField(fields, "password"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, userResponse{
		envelope: ok(http.StatusCreated, "User created"),
		User:     userViewOf(u),
	})
}

// Login は認証に成功したユーザーへBearerトークンを発行する。
// POST /api/users/login（JSON: email, password）
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	fields, found := middleware.FieldsFromContext(r.Context())
	if !found {
		middleware.WriteInternalServerError(w)
		return
	}

	res, err := h.service.Login(r.Context(), stringField(fields, "email"), stringField(fields, "password"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, loginResponse{
		envelope:  ok(http.StatusOK, "User logged in successfully"),
		tokenView: tokenView{Token: res.Token, ExpiresAt: res.Claims.ExpiresAt},
	})
}

// List はユーザー一覧を返す。name はメールアドレスの部分一致で絞り込む。
// GET /api/users?page=&per_page=&name=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	res, err := h.service.List(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, userListResponse{
		envelope: ok(http.StatusOK, "Success get all users"),
		Users:    userViews(res.Items),
		pageMeta: metaOf(q, res.Total),
	})
}

// Delete はユーザーを削除する。
// DELETE /api/users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, ok(http.StatusOK, "User successfully deleted!"))
}
