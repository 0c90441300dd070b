package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HostedAuthConfig はホスト型認証プロバイダーの設定。
type HostedAuthConfig struct {
	// BaseURL は認証APIのベースURL（例: https://xyz.example.co/auth/v1）。
	BaseURL string
	// APIKey はプロジェクトの公開APIキー。apikeyヘッダーで送信する。
	APIKey string

	// テスト用にオーバーライド可能なHTTPクライアント
	HTTPClient *http.Client
}

// HostedUser は認証プロバイダー上のアカウント情報。
type HostedUser struct {
	ID            string
	Email         string
	EmailVerified bool
}

// SignInResult はパスワードサインインの結果。
type SignInResult struct {
	AccessToken string
	ExpiresIn   int
	User        HostedUser
}

// ProviderError は認証プロバイダーが非2xxを返した場合のエラー。
type ProviderError struct {
	StatusCode int
	Message    string
}

// Error はerrorインターフェースを実装する。
func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider returned status %d: %s", e.StatusCode, e.Message)
}

// Rejected はリクエスト内容を理由に拒否された（4xx）かどうかを返す。
func (e *ProviderError) Rejected() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// HostedAuthClient はホスト型認証プロバイダーのREST APIクライアント。
type HostedAuthClient struct {
	config HostedAuthConfig
}

// NewHostedAuthClient はHostedAuthClientを生成する。
func NewHostedAuthClient(config HostedAuthConfig) *HostedAuthClient {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HostedAuthClient{config: config}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// hostedUserResponse はプロバイダーのユーザーオブジェクト。
type hostedUserResponse struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	EmailConfirmedAt string `json:"email_confirmed_at"`
}

func (u hostedUserResponse) toHostedUser() HostedUser {
	return HostedUser{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailConfirmedAt != "",
	}
}

// signUpResponse はメール確認の設定により、ユーザーオブジェクト単体か
// セッション（userフィールド付き）のいずれかで返る。
type signUpResponse struct {
	hostedUserResponse
	User *hostedUserResponse `json:"user"`
}

type tokenResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresIn   int                `json:"expires_in"`
	User        hostedUserResponse `json:"user"`
}

type providerErrorBody struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

// SignUp はメールアドレスとパスワードでアカウントを作成する。
func (c *HostedAuthClient) SignUp(ctx context.Context, email, password string) (*HostedUser, error) {
	body, err := c.do(ctx, http.MethodPost, "/signup", "", credentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("sign up failed: %w", err)
	}

	var resp signUpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse sign up response: %w", err)
	}

	user := resp.hostedUserResponse
	if resp.User != nil {
		user = *resp.User
	}
	if user.ID == "" {
		return nil, fmt.Errorf("empty user id in sign up response")
	}

	hosted := user.toHostedUser()
	return &hosted, nil
}

// SignIn はパスワードグラントでアクセストークンを取得する。
func (c *HostedAuthClient) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	body, err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", credentialsRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}

	var resp tokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}
	if resp.User.ID == "" {
		return nil, fmt.Errorf("empty user id in token response")
	}

	return &SignInResult{
		AccessToken: resp.AccessToken,
		ExpiresIn:   resp.ExpiresIn,
		User:        resp.User.toHostedUser(),
	}, nil
}

// SignOut はアクセストークンに紐づくセッションをプロバイダー側で無効化する。
func (c *HostedAuthClient) SignOut(ctx context.Context, accessToken string) error {
	if _, err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil); err != nil {
		return fmt.Errorf("sign out failed: %w", err)
	}
	return nil
}

// do はリクエストを送信し、2xxの場合にレスポンスボディを返す。
func (c *HostedAuthClient) do(ctx context.Context, method, path, accessToken string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.config.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Message: providerMessage(body)}
	}

	return body, nil
}

func providerMessage(body []byte) string {
	var e providerErrorBody
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.Message != "":
			return e.Message
		case e.ErrorDescription != "":
			return e.ErrorDescription
		case e.Error != "":
			return e.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// compile-time interface check
var _ IdentityProvider = (*HostedAuthClient)(nil)
