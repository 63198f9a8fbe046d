package handler

import (
	"context"
	"errors"

	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/order"
	"github.com/hilalmustofa/simpleolshop/internal/product"
	"github.com/hilalmustofa/simpleolshop/internal/user"
)

var errNotImplemented = errors.New("not implemented")

// --- ProductServiceInterface モック ---

type mockProductService struct {
	listFn       func(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.Product], error)
	getFn        func(ctx context.Context, id string) (*model.Product, error)
	createFn     func(ctx context.Context, in product.CreateInput) (*model.Product, error)
	updateFn     func(ctx context.Context, id string, in product.UpdateInput) (*model.Product, error)
	deleteFn     func(ctx context.Context, id string) error
	destroyAllFn func(ctx context.Context) (int64, error)
}

func (m *mockProductService) List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.Product], error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return &model.PageResult[*model.Product]{Items: []*model.Product{}}, nil
}

func (m *mockProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewProductNotFoundError()
}

func (m *mockProductService) Create(ctx context.Context, in product.CreateInput) (*model.Product, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, errNotImplemented
}

func (m *mockProductService) Update(ctx context.Context, id string, in product.UpdateInput) (*model.Product, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return nil, errNotImplemented
}

func (m *mockProductService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return errNotImplemented
}

func (m *mockProductService) DestroyAll(ctx context.Context) (int64, error) {
	if m.destroyAllFn != nil {
		return m.destroyAllFn(ctx)
	}
	return 0, errNotImplemented
}

// --- OrderServiceInterface モック ---

type mockOrderService struct {
	listFn   func(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.OrderWithProduct], error)
	getFn    func(ctx context.Context, id string) (*model.OrderWithProduct, error)
	createFn func(ctx context.Context, in order.CreateInput) (*model.OrderWithProduct, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockOrderService) List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.OrderWithProduct], error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return &model.PageResult[*model.OrderWithProduct]{Items: []*model.OrderWithProduct{}}, nil
}

func (m *mockOrderService) Get(ctx context.Context, id string) (*model.OrderWithProduct, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewOrderNotFoundError()
}

func (m *mockOrderService) Create(ctx context.Context, in order.CreateInput) (*model.OrderWithProduct, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, errNotImplemented
}

func (m *mockOrderService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return errNotImplemented
}

// --- UserServiceInterface モック ---

type mockUserService struct {
	signupFn func(ctx context.Context, email, password string) (*model.User, error)
	loginFn  func(ctx context.Context, email, password string) (*user.LoginResult, error)
	listFn   func(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.User], error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockUserService) Signup(ctx context.Context, email, password string) (*model.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*user.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockUserService) List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.User], error) {
	if m.listFn != nil {
		return m.listFn(ctx, q)
	}
	return &model.PageResult[*model.User]{Items: []*model.User{}}, nil
}

func (m *mockUserService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return errNotImplemented
}

// --- Pinger モック ---

type mockPinger struct {
	err error
}

func (m mockPinger) PingContext(context.Context) error {
	return m.err
}
