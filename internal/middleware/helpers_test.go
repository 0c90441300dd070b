package middleware

import (
	"net/http"
	"net/http/httptest"

	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
)

// mockResolver はトークンとIdentityの対応表で解決するテスト用リゾルバー。
type mockResolver struct {
	identities map[string]*authz.Identity
	calls      int
}

func (m *mockResolver) Resolve(r *http.Request) *authz.Identity {
	m.calls++
	token := authz.CredentialFromRequest(r)
	if token == "" {
		return nil
	}
	return m.identities[token]
}

var _ IdentityResolver = (*mockResolver)(nil)

func newIdentity(id string, role model.Role) *authz.Identity {
	return &authz.Identity{ID: id, Email: id + "@example.com", Role: role, EmailVerified: true}
}

// requestAs はidentityをコンテキストに注入したリクエストを生成する。nilなら未認証。
func requestAs(method, target string, identity *authz.Identity) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if identity != nil {
		req = req.WithContext(ContextWithIdentity(req.Context(), identity))
	}
	return req
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
