package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
)

const (
	// csrfCookieName はCSRFトークンを保持するCookie。フロントエンドが読み取るためHttpOnlyにしない。
	csrfCookieName = "csrf_token"
	// csrfHeaderName は状態変更リクエストでトークンを送り返すヘッダー。
	csrfHeaderName = "X-CSRF-Token"

	defaultCSRFTokenTTL = 24 * time.Hour
)

// CSRFConfig はCSRFミドルウェアの設定。
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
	// TokenTTL はトークンCookieの有効期間。0の場合は24時間。
	TokenTTL time.Duration
}

// csrfTokens はダブルサブミットCookie方式のトークン発行と照合を行う。
type csrfTokens struct {
	config CSRFConfig
}

func newCSRFTokens(config CSRFConfig) csrfTokens {
	if config.TokenTTL <= 0 {
		config.TokenTTL = defaultCSRFTokenTTL
	}
	return csrfTokens{config: config}
}

// current はリクエストに付いているトークンを返す。なければ新規発行してCookieに設定する。
func (c csrfTokens) current(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.config.CookieDomain,
		MaxAge:   int(c.config.TokenTTL / time.Second),
		HttpOnly: false,
		Secure:   c.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// mismatch はCookieとヘッダーのトークンを照合し、不一致の理由を返す。一致すれば空文字。
func (c csrfTokens) mismatch(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return "missing cookie token"
	}
	header := r.Header.Get(csrfHeaderName)
	if header == "" {
		return "missing header token"
	}
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return "token mismatch"
	}
	return ""
}

// NewCSRFMiddleware はCSRFトークンの発行・検証ミドルウェアを返す。
// 安全なメソッド（GET, HEAD, OPTIONS）は検証せず、トークンCookieがなければ発行する。
// 状態変更メソッドはCookieとX-CSRF-Tokenヘッダーの一致を必須とする。
// Authorization: Bearer で認証するリクエストと、セッションCookieを持たない匿名リクエストは
// ブラウザのCookieに依存しないため検証せず、後段の認証・認可に判定を委ねる。
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	tokens := newCSRFTokens(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case isSafeMethod(r.Method):
				if _, err := tokens.current(w, r); err != nil {
					slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
				}
			case hasBearerCredential(r), !hasSessionCookie(r):
			default:
				if reason := tokens.mismatch(r); reason != "" {
					slog.Warn("CSRF validation failed",
						slog.String("reason", reason),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					WriteAPIError(w, model.NewCSRFError())
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewCSRFTokenHandler は GET /api/csrf-token のハンドラーを返す。
// 既存のトークンCookieがあればその値を、なければ新規発行した値を {"token": ...} で返す。
func NewCSRFTokenHandler(config CSRFConfig) http.Handler {
	tokens := newCSRFTokens(config)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := tokens.current(w, r)
		if err != nil {
			slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
			WriteInternalServerError(w)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
}

func hasBearerCredential(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func hasSessionCookie(r *http.Request) bool {
	cookie, err := r.Cookie(authz.SessionCookieName)
	return err == nil && cookie.Value != ""
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
