package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// PostgresOrderRepo はPostgreSQLを使用した注文リポジトリ。
type PostgresOrderRepo struct {
	db *sql.DB
}

// NewPostgresOrderRepo はPostgresOrderRepoを生成する。
func NewPostgresOrderRepo(db *sql.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// orders LEFT JOIN products。商品が削除済みの場合、p.* はすべてNULLになる。
const orderSelect = `
	SELECT o.id, o.product_id, o.quantity, o.created_at,
	       p.id, p.name, p.description, p.price, p.picture, p.created_at, p.updated_at
	FROM orders o
	LEFT JOIN products p ON p.id = o.product_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrderWithProduct(s rowScanner) (*model.OrderWithProduct, error) {
	o := &model.OrderWithProduct{}
	var (
		pID, pName, pDesc, pPrice, pPicture sql.NullString
		pCreatedAt, pUpdatedAt              sql.NullTime
	)

	if err := s.Scan(
		&o.ID, &o.ProductID, &o.Quantity, &o.CreatedAt,
		&pID, &pName, &pDesc, &pPrice, &pPicture, &pCreatedAt, &pUpdatedAt,
	); err != nil {
		return nil, err
	}

	if pID.Valid {
		o.Product = &model.Product{
			ID:          pID.String,
			Name:        pName.String,
			Description: pDesc.String,
			Price:       pPrice.String,
			Picture:     pPicture.String,
			CreatedAt:   pCreatedAt.Time,
			UpdatedAt:   pUpdatedAt.Time,
		}
	}
	return o, nil
}

// List は参照先商品を結合した注文を1ページ分取得する。
func (r *PostgresOrderRepo) List(ctx context.Context, q model.ListQuery) ([]*model.OrderWithProduct, error) {
	where, args := nameFilter("p.name", q.Name, nil)
	args = append(args, q.PerPage, q.Offset())
	query := fmt.Sprintf(`%s%s ORDER BY o.created_at, o.id LIMIT $%d OFFSET $%d`,
		orderSelect, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*model.OrderWithProduct, 0, q.PerPage)
	for rows.Next() {
		o, err := scanOrderWithProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// Count はnameで絞り込んだ注文の総数を返す。
func (r *PostgresOrderRepo) Count(ctx context.Context, name string) (int, error) {
	query := `SELECT count(*) FROM orders o`
	where, args := nameFilter("p.name", name, nil)
	if where != "" {
		query += ` JOIN products p ON p.id = o.product_id` + where
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// FindByID は指定IDの注文を参照先商品と結合して取得する。見つからない場合はnilを返す。
func (r *PostgresOrderRepo) FindByID(ctx context.Context, id string) (*model.OrderWithProduct, error) {
	if !validID(id) {
		return nil, nil
	}

	o, err := scanOrderWithProduct(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return o, nil
}

// Create は注文を作成する。
func (r *PostgresOrderRepo) Create(ctx context.Context, order *model.Order) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (id, product_id, quantity, created_at) VALUES ($1, $2, $3, $4)`,
		order.ID, order.ProductID, order.Quantity, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// DeleteByID は指定IDの注文を削除する。存在しない場合はErrNotFoundを返す。
func (r *PostgresOrderRepo) DeleteByID(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
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

// compile-time interface check
var _ OrderRepository = (*PostgresOrderRepo)(nil)
