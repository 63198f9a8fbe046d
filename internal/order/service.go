// Package order は注文管理のドメインロジックを提供する。
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hilalmustofa/simpleolshop/internal/events"
	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/repository"
)

// ProductFinder は注文対象の商品を検索する。repository.ProductRepositoryの部分集合。
type ProductFinder interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
}

// EventPublisher は注文イベントを発行する。
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev events.OrderEvent) error
}

// OrderMetrics は注文のメトリクスを記録する。
type OrderMetrics interface {
	RecordOrderCreated()
}

// CreateInput は注文作成の入力。
type CreateInput struct {
	ProductID string
	Quantity  int
}

// Service は注文管理のサービス層。
type Service struct {
	orders    repository.OrderRepository
	products  ProductFinder
	publisher EventPublisher
	metrics   OrderMetrics
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(orders repository.OrderRepository, products ProductFinder, publisher EventPublisher, metrics OrderMetrics) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		publisher: publisher,
		metrics:   metrics,
		now:       time.Now,
	}
}

// List は参照先商品を結合した注文を1ページ分と総件数を返す。
func (s *Service) List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.OrderWithProduct], error) {
	var (
		items []*model.OrderWithProduct
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.orders.List(gctx, q)
		if err != nil {
			return fmt.Errorf("注文一覧の取得に失敗しました: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.orders.Count(gctx, q.Name)
		if err != nil {
			return fmt.Errorf("注文件数の取得に失敗しました: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []*model.OrderWithProduct{}
	}
	return &model.PageResult[*model.OrderWithProduct]{Items: items, Total: total}, nil
}

// Get は指定IDの注文を参照先商品付きで返す。
func (s *Service) Get(ctx context.Context, id string) (*model.OrderWithProduct, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("注文の取得に失敗しました: %w", err)
	}
	if o == nil {
		return nil, model.NewOrderNotFoundError()
	}
	return o, nil
}

// Create は商品の存在を確認してから注文を作成する。
// 存在確認と作成は同一トランザクションではないため、その間に商品が削除されると
// 参照先のない注文が残りうる。読み取り時は商品をnullとして返す。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.OrderWithProduct, error) {
	p, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError()
	}

	o := model.Order{
		ID:        uuid.NewString(),
		ProductID: p.ID,
		Quantity:  in.Quantity,
		CreatedAt: s.now().UTC(),
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, fmt.Errorf("注文の作成に失敗しました: %w", err)
	}

	s.metrics.RecordOrderCreated()
	s.publish(ctx, events.OrderCreated, o)

	slog.Info("注文を作成しました",
		slog.String("order_id", o.ID),
		slog.String("product_id", o.ProductID),
		slog.Int("quantity", o.Quantity),
	)
	return &model.OrderWithProduct{Order: o, Product: p}, nil
}

// Delete は指定IDの注文を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("注文の取得に失敗しました: %w", err)
	}
	if o == nil {
		return model.NewOrderNotFoundError()
	}

	err = s.orders.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		// 取得後に別リクエストで削除された
		return model.NewOrderNotFoundError()
	}
	if err != nil {
		return fmt.Errorf("注文の削除に失敗しました: %w", err)
	}

	s.publish(ctx, events.OrderDeleted, o.Order)
	return nil
}

// publish はイベントを発行する。失敗はログに記録するのみで呼び出し元には返さない。
func (s *Service) publish(ctx context.Context, typ events.Type, o model.Order) {
	ev := events.OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, ev); err != nil {
		slog.Error("注文イベントの発行に失敗しました",
			slog.String("type", string(typ)),
			slog.String("order_id", o.ID),
			slog.String("error", err.Error()),
		)
	}
}
