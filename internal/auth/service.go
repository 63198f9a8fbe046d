// Package auth はBearerトークンの発行・検証とパスワードハッシュを提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// トークン検証エラー
var (
	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// tokenClaims はトークンに埋め込むクレーム。
// user はユーザーIDを保持する。
type tokenClaims struct {
	Email string `json:"email"`
	User  string `json:"user"`
	jwtv5.RegisteredClaims
}

// TokenService はHS256署名付きの有効期限つきトークンを発行・検証する。
// セッションは保持せず、リクエストごとに署名と有効期限を検証する。
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetClock は現在時刻の取得関数を差し替える。テスト用。
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

// Issue はユーザーのメールアドレスとIDを埋め込んだトークンを発行する。
// 有効期限は発行時刻（秒精度）にTTLを加えた時刻となる。
func (s *TokenService) Issue(email, userID string) (string, *model.Claims, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, tokenClaims{
		Email: email,
		User:  userID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			IssuedAt:  jwtv5.NewNumericDate(issuedAt),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &model.Claims{
		Email:     email,
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify はトークンの署名と有効期限を検証し、埋め込まれたクレームを返す。
// 空文字はErrTokenMissing、期限切れはErrTokenExpired、それ以外の失敗はErrTokenInvalidを返す。
func (s *TokenService) Verify(raw string) (*model.Claims, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}

	claims := &tokenClaims{}
	_, err := jwtv5.ParseWithClaims(raw, claims,
		func(t *jwtv5.Token) (any, error) { return s.secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.User == "" {
		return nil, fmt.Errorf("%w: user claim is empty", ErrTokenInvalid)
	}

	out := &model.Claims{
		Email:     claims.Email,
		UserID:    claims.User,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
