// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーのロールを表す。
// creator / brand / admin の3値のみを取り、それ以外の値は不正なロールとして扱う。
type Role string

const (
	// RoleCreator はコンテンツクリエイター。
	RoleCreator Role = "creator"
	// RoleBrand はクリエイターを探す企業アカウント。
	RoleBrand Role = "brand"
	// RoleAdmin は運営者。すべてのリソースへの操作が許可される。
	RoleAdmin Role = "admin"
)

// Valid はロールが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleBrand, RoleAdmin:
		return true
	default:
		return false
	}
}

// SelfAssignable はサインアップ時にユーザー自身が選択できるロールかどうかを返す。
// adminは運営側でのみ付与する。
func (r Role) SelfAssignable() bool {
	switch r {
	case RoleCreator, RoleBrand:
		return true
	case RoleAdmin:
		return false
	default:
		return false
	}
}

// User はサービス利用ユーザーを表す。
// IDはホスト型認証プロバイダーが発行したユーザーIDと一致する。
type User struct {
	ID            string
	Email         string
	Role          Role
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
