// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// ErrNotFound は削除・更新対象のレコードが存在しないことを表す。
var ErrNotFound = errors.New("record not found")

// ErrDuplicate は一意制約に違反したことを表す。
var ErrDuplicate = errors.New("duplicate record")

// ProductRepository は商品データの永続化インターフェース。
type ProductRepository interface {
	// List は条件に一致する商品を作成日時順に1ページ分取得する。
	List(ctx context.Context, q model.ListQuery) ([]*model.Product, error)

	// Count はnameで絞り込んだ商品の総数を返す。nameが空の場合は全件数を返す。
	Count(ctx context.Context, name string) (int, error)

	// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Product, error)

	// FindByName は名前が完全一致する商品を取得する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name string) (*model.Product, error)

	// Create は商品を作成する。
	Create(ctx context.Context, product *model.Product) error

	// Update は商品の名前・説明・価格を更新し、更新後の商品を返す。
	// 見つからない場合はnilを返す。
	Update(ctx context.Context, id string, upd model.ProductUpdate) (*model.Product, error)

	// DeleteByID は指定IDの商品を削除する。存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error

	// DeleteAll は全商品を削除し、削除件数を返す。
	DeleteAll(ctx context.Context) (int64, error)

	// ListPicturePaths は全商品が参照している画像パスを返す。
	ListPicturePaths(ctx context.Context) ([]string, error)
}

// OrderRepository は注文データの永続化インターフェース。
type OrderRepository interface {
	// List は参照先商品を結合した注文を1ページ分取得する。
	// nameは参照先商品の名前に対する部分一致条件として扱う。
	List(ctx context.Context, q model.ListQuery) ([]*model.OrderWithProduct, error)

	// Count はnameで絞り込んだ注文の総数を返す。
	Count(ctx context.Context, name string) (int, error)

	// FindByID は指定IDの注文を参照先商品と結合して取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.OrderWithProduct, error)

	// Create は注文を作成する。参照先商品の存在確認は行わない。
	Create(ctx context.Context, order *model.Order) error

	// DeleteByID は指定IDの注文を削除する。存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// List は条件に一致するユーザーを1ページ分取得する。nameはメールアドレスに対する部分一致条件。
	List(ctx context.Context, q model.ListQuery) ([]*model.User, error)

	// Count はnameで絞り込んだユーザーの総数を返す。
	Count(ctx context.Context, name string) (int, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// DeleteByID は指定IDのユーザーを削除する。存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}
