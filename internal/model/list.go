package model

// ListQuery は一覧系エンドポイント共通のページング・絞り込み条件。
type ListQuery struct {
	Page    int
	PerPage int
	// Name が空でない場合、名前フィールドの部分一致（大文字小文字を区別しない）で絞り込む。
	Name string
}

// Offset はページ番号から読み飛ばす件数を算出する。
func (q ListQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// PageResult は一覧取得の結果。
// Total はページではなく条件に一致した全件数を表す。
type PageResult[T any] struct {
	Items []T
	Total int
}
