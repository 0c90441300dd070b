package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/reelmatch/internal/auth"
	"github.com/hitoshi/reelmatch/internal/authz"
	"github.com/hitoshi/reelmatch/internal/model"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- POST /auth/signup ---

func TestAuthHandler_SignUp_Success(t *testing.T) {
	var gotRole model.Role
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
			gotRole = role
			return &model.User{ID: "user-1", Email: email, Role: role}, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.SignUp(w, newRequest(http.MethodPost, "/auth/signup",
		`{"email":"alice@example.com","password":"password123","role":"creator"}`, nil, nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotRole != model.RoleCreator {
		t.Errorf("role = %q, want %q", gotRole, model.RoleCreator)
	}
	body := decodeResponse[userResponse](t, w)
	if body.ID != "user-1" || body.Role != "creator" {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_SignUp_InvalidJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.SignUp(w, newRequest(http.MethodPost, "/auth/signup", `{invalid`, nil, nil))

	assertAPIError(t, w, http.StatusBadRequest, model.ErrCodeValidation)
}

func TestAuthHandler_SignUp_Conflict(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
			return nil, model.NewAccountExistsError()
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.SignUp(w, newRequest(http.MethodPost, "/auth/signup",
		`{"email":"alice@example.com","password":"password123","role":"brand"}`, nil, nil))

	assertAPIError(t, w, http.StatusConflict, model.ErrCodeConflict)
}

// --- POST /auth/signin ---

func TestAuthHandler_SignIn_SetsHttpOnlySessionCookie(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string) (*auth.Session, error) {
			return &auth.Session{
				AccessToken: "token-abc",
				ExpiresAt:   now.Add(time.Hour),
				User:        &model.User{ID: "user-1", Email: email, Role: model.RoleBrand},
			}, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{CookieDomain: "example.com", CookieSecure: true})
	h.now = func() time.Time { return now }

	w := httptest.NewRecorder()
	h.SignIn(w, newRequest(http.MethodPost, "/auth/signin",
		`{"email":"b1@example.com","password":"password123"}`, nil, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	cookie := findCookie(w.Result(), authz.SessionCookieName)
	if cookie == nil {
		t.Fatal("session cookie should be set")
	}
	if cookie.Value != "token-abc" {
		t.Errorf("cookie value = %q, want %q", cookie.Value, "token-abc")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if !cookie.Secure {
		t.Error("session cookie should be Secure")
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", cookie.MaxAge)
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}

	body := decodeResponse[userResponse](t, w)
	if body.Role != "brand" {
		t.Errorf("role = %q, want %q", body.Role, "brand")
	}
}

func TestAuthHandler_SignIn_InvalidLogin(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.SignIn(w, newRequest(http.MethodPost, "/auth/signin",
		`{"email":"b1@example.com","password":"wrong"}`, nil, nil))

	assertAPIError(t, w, http.StatusUnauthorized, model.ErrCodeUnauthenticated)
	if findCookie(w.Result(), authz.SessionCookieName) != nil {
		t.Error("session cookie should not be set on failure")
	}
}

func TestAuthHandler_SignIn_ProviderFailure_ReturnsInternalError(t *testing.T) {
	svc := &mockAuthService{
		signInFn: func(ctx context.Context, email, password string) (*auth.Session, error) {
			return nil, errors.New("provider unreachable")
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.SignIn(w, newRequest(http.MethodPost, "/auth/signin",
		`{"email":"b1@example.com","password":"password123"}`, nil, nil))

	assertAPIError(t, w, http.StatusInternalServerError, model.ErrCodeInternal)
}

// --- POST /auth/signout ---

func TestAuthHandler_SignOut_ClearsCookie(t *testing.T) {
	var gotToken string
	svc := &mockAuthService{
		signOutFn: func(ctx context.Context, accessToken string) error {
			gotToken = accessToken
			return nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	req := newRequest(http.MethodPost, "/auth/signout", "", nil, nil)
	req.AddCookie(&http.Cookie{Name: authz.SessionCookieName, Value: "token-abc"})
	w := httptest.NewRecorder()
	h.SignOut(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if gotToken != "token-abc" {
		t.Errorf("token = %q, want %q", gotToken, "token-abc")
	}
	cookie := findCookie(w.Result(), authz.SessionCookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Errorf("session cookie should be cleared, got %+v", cookie)
	}
}

func TestAuthHandler_SignOut_ProviderFailureStillClearsCookie(t *testing.T) {
	svc := &mockAuthService{
		signOutFn: func(ctx context.Context, accessToken string) error {
			return errors.New("provider unreachable")
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	req := newRequest(http.MethodPost, "/auth/signout", "", nil, nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	w := httptest.NewRecorder()
	h.SignOut(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if findCookie(w.Result(), authz.SessionCookieName) == nil {
		t.Error("session cookie should be cleared")
	}
}

func TestAuthHandler_SignOut_WithoutCredential_SkipsProvider(t *testing.T) {
	called := false
	svc := &mockAuthService{
		signOutFn: func(ctx context.Context, accessToken string) error {
			called = true
			return nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	w := httptest.NewRecorder()
	h.SignOut(w, newRequest(http.MethodPost, "/auth/signout", "", nil, nil))

	if called {
		t.Error("SignOut should not be called without a credential")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

// --- GET /auth/me ---

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	t.Run("認証済みならIdentityを返す", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, newRequest(http.MethodGet, "/auth/me", "", newIdentity("user-1", model.RoleCreator), nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		body := decodeResponse[identityResponse](t, w)
		if body.ID != "user-1" || body.Role != "creator" || !body.EmailVerified {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("未認証なら401", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Me(w, newRequest(http.MethodGet, "/auth/me", "", nil, nil))

		assertAPIError(t, w, http.StatusUnauthorized, model.ErrCodeUnauthenticated)
	})
}
