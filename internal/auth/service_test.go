package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/reelmatch/internal/model"
	"github.com/hitoshi/reelmatch/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
	createFn   func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _, _ int) ([]*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) DeleteByID(_ context.Context, _ string) error {
	return nil
}

type mockProvider struct {
	signUpFn  func(ctx context.Context, email, password string) (*HostedUser, error)
	signInFn  func(ctx context.Context, email, password string) (*SignInResult, error)
	signOutFn func(ctx context.Context, accessToken string) error
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string) (*HostedUser, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, email, password)
	}
	return &HostedUser{ID: "user-1", Email: email}, nil
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockProvider) SignOut(ctx context.Context, accessToken string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, accessToken)
	}
	return nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ IdentityProvider = (*mockProvider)(nil)

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
}

// --- テスト ---

func TestSignUp_CreatesUserWithRole(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(_ context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	provider := &mockProvider{
		signUpFn: func(_ context.Context, email, _ string) (*HostedUser, error) {
			return &HostedUser{ID: "provider-user-1", Email: email, EmailVerified: true}, nil
		},
	}
	svc := NewService(provider, repo, ServiceConfig{SessionMaxAge: 3600})

	user, err := svc.SignUp(context.Background(), " alice@example.com ", "password123", model.RoleCreator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected user to be persisted")
	}
	if user.ID != "provider-user-1" {
		t.Errorf("ID = %q, want provider user id", user.ID)
	}
	if user.Role != model.RoleCreator {
		t.Errorf("Role = %q, want %q", user.Role, model.RoleCreator)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want trimmed address", user.Email)
	}
	if !user.EmailVerified {
		t.Error("expected EmailVerified to follow provider")
	}
}

func TestSignUp_RejectsAdminAndUnknownRoles(t *testing.T) {
	called := false
	provider := &mockProvider{
		signUpFn: func(_ context.Context, _, _ string) (*HostedUser, error) {
			called = true
			return &HostedUser{ID: "x"}, nil
		},
	}
	svc := NewService(provider, &mockUserRepo{}, ServiceConfig{})

	for _, role := range []model.Role{model.RoleAdmin, model.Role("owner"), model.Role("")} {
		t.Run(string(role), func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), "a@example.com", "password123", role)
			assertAPIErrorCode(t, err, model.ErrCodeValidation)
		})
	}
	if called {
		t.Error("provider must not be called for a non self-assignable role")
	}
}

func TestSignUp_ValidatesCredentials(t *testing.T) {
	svc := NewService(&mockProvider{}, &mockUserRepo{}, ServiceConfig{})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "password123"},
		{"not an address", "alice", "password123"},
		{"display name form", "Alice <a@example.com>", "password123"},
		{"short password", "a@example.com", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.email, tt.password, model.RoleBrand)
			assertAPIErrorCode(t, err, model.ErrCodeValidation)
		})
	}
}

func TestSignUp_ProviderRejection(t *testing.T) {
	provider := &mockProvider{
		signUpFn: func(_ context.Context, _, _ string) (*HostedUser, error) {
			return nil, &ProviderError{StatusCode: 422, Message: "User already registered"}
		},
	}
	svc := NewService(provider, &mockUserRepo{}, ServiceConfig{})

	_, err := svc.SignUp(context.Background(), "a@example.com", "password123", model.RoleBrand)
	assertAPIErrorCode(t, err, model.ErrCodeValidation)
}

func TestSignUp_ProviderFault(t *testing.T) {
	provider := &mockProvider{
		signUpFn: func(_ context.Context, _, _ string) (*HostedUser, error) {
			return nil, &ProviderError{StatusCode: 503, Message: "unavailable"}
		},
	}
	svc := NewService(provider, &mockUserRepo{}, ServiceConfig{})

	_, err := svc.SignUp(context.Background(), "a@example.com", "password123", model.RoleBrand)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("provider fault must not become an APIError, got %v", apiErr)
	}
}

func TestSignUp_DuplicateUserRow(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return &repository.DuplicateError{Constraint: repository.ConstraintUsersPK}
		},
	}
	svc := NewService(&mockProvider{}, repo, ServiceConfig{})

	_, err := svc.SignUp(context.Background(), "a@example.com", "password123", model.RoleCreator)
	assertAPIErrorCode(t, err, model.ErrCodeConflict)
}

func TestSignIn_Success(t *testing.T) {
	provider := &mockProvider{
		signInFn: func(_ context.Context, _, _ string) (*SignInResult, error) {
			return &SignInResult{AccessToken: "token-1", ExpiresIn: 600, User: HostedUser{ID: "user-1"}}, nil
		},
	}
	repo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "a@example.com", Role: model.RoleBrand}, nil
		},
	}
	svc := NewService(provider, repo, ServiceConfig{SessionMaxAge: 3600})

	before := time.Now()
	session, err := svc.SignIn(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.AccessToken != "token-1" {
		t.Errorf("AccessToken = %q, want %q", session.AccessToken, "token-1")
	}
	if session.User.ID != "user-1" {
		t.Errorf("User.ID = %q, want %q", session.User.ID, "user-1")
	}
	if d := session.ExpiresAt.Sub(before); d < 590*time.Second || d > 610*time.Second {
		t.Errorf("ExpiresAt should follow provider expires_in, got %v", d)
	}
}

func TestSignIn_FallsBackToSessionMaxAge(t *testing.T) {
	provider := &mockProvider{
		signInFn: func(_ context.Context, _, _ string) (*SignInResult, error) {
			return &SignInResult{AccessToken: "token-1", User: HostedUser{ID: "user-1"}}, nil
		},
	}
	repo := &mockUserRepo{
		findByIDFn: func(_ context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleBrand}, nil
		},
	}
	svc := NewService(provider, repo, ServiceConfig{SessionMaxAge: 7200})

	session, err := svc.SignIn(context.Background(), "a@example.com", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := time.Until(session.ExpiresAt); d < 7100*time.Second {
		t.Errorf("expected SessionMaxAge fallback, got %v", d)
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	provider := &mockProvider{
		signInFn: func(_ context.Context, _, _ string) (*SignInResult, error) {
			return nil, &ProviderError{StatusCode: 400, Message: "Invalid login credentials"}
		},
	}
	svc := NewService(provider, &mockUserRepo{}, ServiceConfig{})

	_, err := svc.SignIn(context.Background(), "a@example.com", "wrong-password")
	assertAPIErrorCode(t, err, model.ErrCodeUnauthenticated)
}

func TestSignIn_MissingUserRecord(t *testing.T) {
	provider := &mockProvider{
		signInFn: func(_ context.Context, _, _ string) (*SignInResult, error) {
			return &SignInResult{AccessToken: "token-1", User: HostedUser{ID: "orphan"}}, nil
		},
	}
	svc := NewService(provider, &mockUserRepo{}, ServiceConfig{})

	_, err := svc.SignIn(context.Background(), "a@example.com", "password123")
	assertAPIErrorCode(t, err, model.ErrCodeUnauthenticated)
}

func TestSignOut(t *testing.T) {
	var got string
	provider := &mockProvider{
		signOutFn: func(_ context.Context, token string) error {
			got = token
			return nil
		},
	}
	svc := NewService(provider, &mockUserRepo{}, ServiceConfig{})

	if err := svc.SignOut(context.Background(), "token-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "token-1" {
		t.Errorf("provider received %q, want %q", got, "token-1")
	}

	got = ""
	if err := svc.SignOut(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error for empty token: %v", err)
	}
	if got != "" {
		t.Error("provider must not be called for an empty token")
	}
}
