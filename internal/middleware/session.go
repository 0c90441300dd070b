// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net/http"

	"github.com/hitoshi/reelmatch/internal/authz"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに呼び出し元のIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// IdentityResolver はリクエストからIdentityを解決するインターフェース。
// authz.Resolverが実装する。
type IdentityResolver interface {
	Resolve(r *http.Request) *authz.Identity
}

// NewSessionMiddleware はリクエストごとに一度だけIdentityを解決し、コンテキストに注入する。
// 未認証でも拒否はせず、認可の判定は各サービスに委ねる。
func NewSessionMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := resolver.Resolve(r)
			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// IdentityFromContext はリクエストコンテキストからIdentityを取得する。
// 未認証の場合はnilを返す。
func IdentityFromContext(ctx context.Context) *authz.Identity {
	identity, _ := ctx.Value(identityContextKey).(*authz.Identity)
	return identity
}

// ContextWithIdentity はコンテキストにIdentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity *authz.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
