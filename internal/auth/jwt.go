package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential はアクセストークンが無効であることを表す。
var ErrInvalidCredential = errors.New("invalid credential")

// JWTConfig はアクセストークン検証の設定。
type JWTConfig struct {
	// Secret は認証プロバイダーがHS256署名に使う共有鍵。
	Secret string
	// Issuer が空でなければ iss クレームを検証する。
	Issuer string
	// Audience が空でなければ aud クレームを検証する。
	Audience string
	// Leeway は exp/nbf の許容誤差。
	Leeway time.Duration
}

// JWTValidator は認証プロバイダーが発行したアクセストークンを検証する。
type JWTValidator struct {
	config JWTConfig
}

// NewJWTValidator はJWTValidatorを生成する。
func NewJWTValidator(config JWTConfig) *JWTValidator {
	return &JWTValidator{config: config}
}

// ValidateCredential はトークンの署名と有効期限を検証し、subクレームのユーザーIDを返す。
func (v *JWTValidator) ValidateCredential(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidCredential
	}
	if v.config.Secret == "" {
		return "", fmt.Errorf("jwt secret is not configured")
	}

	claims := &jwtlib.RegisteredClaims{}
	parsed, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (interface{}, error) {
		return []byte(v.config.Secret), nil
	}, v.parserOptions()...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidCredential
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing sub claim", ErrInvalidCredential)
	}

	return claims.Subject, nil
}

func (v *JWTValidator) parserOptions() []jwtlib.ParserOption {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(v.config.Audience))
	}
	if v.config.Leeway > 0 {
		opts = append(opts, jwtlib.WithLeeway(v.config.Leeway))
	}
	return opts
}
