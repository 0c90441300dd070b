// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラー種別
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, profile, inquiry, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラー種別
const (
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "アカウントの種類と対象リソースを確認してください。",
	}
}

// NewInvalidLoginError はメールアドレスまたはパスワードが誤っている場合のエラーを生成する。
func NewInvalidLoginError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewAccountExistsError は同じアカウントが既に登録済みの場合のエラーを生成する。
func NewAccountExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "このアカウントは既に登録されています。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewValidationError は入力値エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewNotFoundError は対象リソースが存在しない場合のエラーを生成する。
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定された%sが見つかりません: %s", resource, id),
		Category: "profile",
		Action:   "IDを確認してください。",
	}
}

// NewProfileExistsError は既にプロフィールを作成済みの場合のエラーを生成する。
func NewProfileExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "プロフィールは既に作成されています。",
		Category: "profile",
		Action:   "既存のプロフィールを編集してください。",
	}
}

// NewHandleTakenError はハンドルが既に使われている場合のエラーを生成する。
func NewHandleTakenError(handle string) *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  fmt.Sprintf("ハンドル %q は既に使用されています。", handle),
		Category: "profile",
		Action:   "別のハンドルを指定してください。",
	}
}

// NewDuplicateShortlistError は同じクリエイターを重複して保存しようとした場合のエラーを生成する。
func NewDuplicateShortlistError() *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  "このクリエイターは既に保存されています。",
		Category: "profile",
		Action:   "保存済みリストを確認してください。",
	}
}

// NewInvalidTransitionError は審査状態の遷移が許可されていない場合のエラーを生成する。
func NewInvalidTransitionError(from, to VerificationStatus) *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  fmt.Sprintf("審査状態を %s から %s へ変更できません。", from, to),
		Category: "profile",
		Action:   "現在の審査状態を確認してください。",
	}
}

// NewEmptyMessageError はメッセージ本文が空の場合のエラーを生成する。
func NewEmptyMessageError() *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  "メッセージ本文が空です。",
		Category: "inquiry",
		Action:   "メッセージを入力してください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterの秒数だけ待ってから再度お試しください。",
	}
}

// NewCSRFError はCSRFトークンの検証に失敗した場合のエラーを生成する。
func NewCSRFError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "CSRFトークンの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログにのみ記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
