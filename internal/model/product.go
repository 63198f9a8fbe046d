package model

import "time"

// Product はカタログに掲載される商品を表す。
// Price は通貨表記に整形済みの文字列、Picture はアップロードディレクトリ基準の相対パスを保持する。
type Product struct {
	ID          string
	Name        string
	Description string
	Price       string
	Picture     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductUpdate は商品の更新可能フィールド。
// Picture は作成後に変更できないため含まない。
type ProductUpdate struct {
	Name        string
	Description string
	Price       string
}
