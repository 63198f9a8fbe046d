package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHash は一方向ハッシュのみを保持し、平文パスワードは保存しない。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Claims はBearerトークンに埋め込まれる認証済みユーザーの識別情報。
type Claims struct {
	Email     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
