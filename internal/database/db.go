package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// コネクションプールの既定値。APIサーバーとクリーンアップワーカーで共通。
const (
	MaxOpenConns    = 20
	MaxIdleConns    = 10
	ConnMaxLifetime = 30 * time.Minute
)

// Open はproducts・orders・usersテーブルを持つPostgreSQLへの接続プールを開く。
// 接続自体は遅延されるため、起動時の疎通確認は呼び出し側でPingContextを行う。
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("データベースのオープンに失敗: %w", err)
	}

	db.SetMaxOpenConns(MaxOpenConns)
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetConnMaxLifetime(ConnMaxLifetime)

	return db, nil
}
