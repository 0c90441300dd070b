// Package authz はリソースごとの認可判定を提供する。
//
// すべての判定は (identity, 対象リソースの所有者/参加者, 操作) の純粋関数であり、
// リクエスト間で状態を持たない。判定結果は Allow / Deny(UNAUTHENTICATED) /
// Deny(FORBIDDEN) のいずれかになる。
package authz

import "github.com/hitoshi/reelmatch/internal/model"

// Identity はセッションから解決された認証済みユーザーを表す。
// リクエストの間は不変であり、永続化しない。未認証はnilで表す。
type Identity struct {
	ID            string
	Email         string
	Role          model.Role
	EmailVerified bool
}

// IsAdmin は管理者かどうかを返す。
func (i *Identity) IsAdmin() bool {
	if i == nil {
		return false
	}
	switch i.Role {
	case model.RoleAdmin:
		return true
	case model.RoleCreator, model.RoleBrand:
		return false
	default:
		return false
	}
}

// Reason は拒否理由を表す。
type Reason string

const (
	// ReasonNone は許可を表す。
	ReasonNone Reason = ""
	// ReasonUnauthenticated は有効なidentityがないことを表す。
	ReasonUnauthenticated Reason = "UNAUTHENTICATED"
	// ReasonForbidden はidentityはあるが権限がないことを表す。
	ReasonForbidden Reason = "FORBIDDEN"
)

// Decision は認可判定の結果。
type Decision struct {
	// Identity は許可時の呼び出し元。公開リソースへの匿名アクセスではnil。
	Identity *Identity
	Reason   Reason
}

// Allow は許可の判定を返す。
func Allow(identity *Identity) Decision {
	return Decision{Identity: identity}
}

// Deny は拒否の判定を返す。
func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Allowed は許可されたかどうかを返す。
func (d Decision) Allowed() bool {
	return d.Reason == ReasonNone
}

// Outcome はメトリクスとログ用の判定結果ラベルを返す。
func (d Decision) Outcome() string {
	if d.Allowed() {
		return "allow"
	}
	return string(d.Reason)
}

// Err は拒否理由に対応するAPIErrorを返す。許可の場合はnilを返す。
func (d Decision) Err() error {
	switch d.Reason {
	case ReasonNone:
		return nil
	case ReasonUnauthenticated:
		return model.NewUnauthenticatedError()
	default:
		return model.NewForbiddenError()
	}
}
