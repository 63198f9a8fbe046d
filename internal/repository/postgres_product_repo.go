package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

const productColumns = `id, name, description, price, picture, created_at, updated_at`

// List は条件に一致する商品を作成日時順に1ページ分取得する。
func (r *PostgresProductRepo) List(ctx context.Context, q model.ListQuery) ([]*model.Product, error) {
	where, args := nameFilter("name", q.Name, nil)
	args = append(args, q.PerPage, q.Offset())
	query := fmt.Sprintf(
		`SELECT %s FROM products%s ORDER BY created_at, id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*model.Product, 0, q.PerPage)
	for rows.Next() {
		p := &model.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Picture, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// Count はnameで絞り込んだ商品の総数を返す。
func (r *PostgresProductRepo) Count(ctx context.Context, name string) (int, error) {
	where, args := nameFilter("name", name, nil)

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// FindByID は指定IDの商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// FindByName は名前が完全一致する商品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE name = $1 LIMIT 1`, name)
}

func (r *PostgresProductRepo) findOne(ctx context.Context, query string, arg string) (*model.Product, error) {
	p := &model.Product{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Picture, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return p, nil
}

// Create は商品を作成する。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO products (id, name, description, price, picture, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		product.ID, product.Name, product.Description, product.Price, product.Picture,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// Update は商品の名前・説明・価格を更新し、更新後の商品を返す。
// 画像パスは変更しない。見つからない場合はnilを返す。
func (r *PostgresProductRepo) Update(ctx context.Context, id string, upd model.ProductUpdate) (*model.Product, error) {
	if !validID(id) {
		return nil, nil
	}

	p := &model.Product{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE products SET name = $2, description = $3, price = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, upd.Name, upd.Description, upd.Price, time.Now().UTC(),
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Picture, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return p, nil
}

// DeleteByID は指定IDの商品を削除する。存在しない場合はErrNotFoundを返す。
// 商品を参照する注文は削除しない。
func (r *PostgresProductRepo) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll は全商品を削除し、削除件数を返す。
func (r *PostgresProductRepo) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete products: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// ListPicturePaths は全商品が参照している画像パスを返す。
func (r *PostgresProductRepo) ListPicturePaths(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT picture FROM products`)
	if err != nil {
		return nil, fmt.Errorf("failed to list product pictures: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan product picture: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product pictures: %w", err)
	}
	return paths, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
