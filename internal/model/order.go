package model

import "time"

// Order は1つの商品に対する注文を表す。
// ProductID の存在確認はストアの制約ではなくアプリケーション側で行う。
type Order struct {
	ID        string
	ProductID string
	Quantity  int
	CreatedAt time.Time
}

// OrderWithProduct は注文と参照先商品を結合した読み取りモデル。
// 参照先の商品が削除済みの場合、Product は nil になる。
type OrderWithProduct struct {
	Order
	Product *Product
}
