// Package product は商品カタログのドメインロジックを提供する。
package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hilalmustofa/simpleolshop/internal/currency"
	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/repository"
	"github.com/hilalmustofa/simpleolshop/internal/validation"
)

// Sanitizer は自由記述テキストからHTMLを除去する。
type Sanitizer interface {
	Sanitize(in string) string
}

// FileRemover は保存済みのアップロードファイルを削除する。
type FileRemover interface {
	Remove(storedPath string) error
}

// CreateInput は商品作成の入力。Picture は保存済みファイルの相対パス。
type CreateInput struct {
	Name        string
	Description string
	Price       string
	Picture     string
}

// UpdateInput は商品更新の入力。画像は変更できない。
type UpdateInput struct {
	Name        string
	Description string
	Price       string
}

// Service は商品管理のサービス層。
type Service struct {
	repo      repository.ProductRepository
	sanitizer Sanitizer
	files     FileRemover
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.ProductRepository, sanitizer Sanitizer, files FileRemover) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		files:     files,
		now:       time.Now,
	}
}

// List は条件に一致する商品を1ページ分と総件数を返す。
// ページ取得と件数取得は並行して実行する。
func (s *Service) List(ctx context.Context, q model.ListQuery) (*model.PageResult[*model.Product], error) {
	var (
		items []*model.Product
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.List(gctx, q)
		if err != nil {
			return fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, q.Name)
		if err != nil {
			return fmt.Errorf("商品件数の取得に失敗しました: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if items == nil {
		items = []*model.Product{}
	}
	return &model.PageResult[*model.Product]{Items: items, Total: total}, nil
}

// Get は指定IDの商品を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError()
	}
	return p, nil
}

// Create は商品を作成する。
// 同名の商品が既に存在する場合はDUPLICATE_PRODUCT_NAMEを返す。
// 作成に失敗した場合、アップロード済みの画像ファイルは削除する。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Product, error) {
	p, err := s.create(ctx, in)
	if err != nil && in.Picture != "" {
		if rmErr := s.files.Remove(in.Picture); rmErr != nil {
			slog.Error("アップロード画像の削除に失敗しました",
				slog.String("path", in.Picture),
				slog.String("error", rmErr.Error()),
			)
		}
	}
	return p, err
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.Product, error) {
	fields, err := s.prepare(in.Name, in.Description, in.Price)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, fields.Name)
	if err != nil {
		return nil, fmt.Errorf("商品名の重複確認に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateProductNameError(fields.Name)
	}

	now := s.now().UTC()
	p := &model.Product{
		ID:          uuid.NewString(),
		Name:        fields.Name,
		Description: fields.Description,
		Price:       fields.Price,
		Picture:     in.Picture,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("商品の作成に失敗しました: %w", err)
	}

	slog.Info("商品を作成しました",
		slog.String("product_id", p.ID),
		slog.String("name", p.Name),
	)
	return p, nil
}

// Update は商品の名前・説明・価格を更新する。
// 他の商品と同名に変更しようとした場合はDUPLICATE_PRODUCT_NAMEを返す。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Product, error) {
	fields, err := s.prepare(in.Name, in.Description, in.Price)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, fields.Name)
	if err != nil {
		return nil, fmt.Errorf("商品名の重複確認に失敗しました: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, model.NewDuplicateProductNameError(fields.Name)
	}

	p, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("商品の更新に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError()
	}
	return p, nil
}

// Delete は指定IDの商品を削除する。
// 画像ファイルは参照されなくなった時点でクリーンアップジョブが削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.DeleteByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.NewProductNotFoundError()
	}
	if err != nil {
		return fmt.Errorf("商品の削除に失敗しました: %w", err)
	}
	return nil
}

// DestroyAll は全商品を削除し、削除件数を返す。
// 削除対象が1件もない場合はNO_PRODUCTSを返す。
func (s *Service) DestroyAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("商品の一括削除に失敗しました: %w", err)
	}
	if n == 0 {
		return 0, model.NewNoProductsError()
	}
	slog.Warn("全商品を削除しました", slog.Int64("count", n))
	return n, nil
}

// prepare は自由記述テキストを無害化した上で再検証し、価格をルピア表記に整形する。
// 無害化によって長さが変わるため、検証は無害化後の値に対して行う。
func (s *Service) prepare(name, description, price string) (model.ProductUpdate, error) {
	out := model.ProductUpdate{
		Name:        s.sanitizer.Sanitize(name),
		Description: s.sanitizer.Sanitize(description),
	}

	if v := validation.Validate(validation.ProductRules, validation.Fields{
		"name":        out.Name,
		"description": out.Description,
		"price":       price,
	}); v != nil {
		return model.ProductUpdate{}, model.NewValidationError(v.Message)
	}

	formatted, err := currency.FormatRupiah(price)
	if err != nil {
		return model.ProductUpdate{}, model.NewValidationError("price must be a number")
	}
	out.Price = formatted
	return out, nil
}
