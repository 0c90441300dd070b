package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// 一意制約名。マイグレーションで明示的に命名している。
const (
	ConstraintUsersPK             = "users_pkey"
	ConstraintCreatorOwnerUnique  = "creator_profiles_owner_id_key"
	ConstraintCreatorHandleUnique = "creator_profiles_handle_key"
	ConstraintBrandOwnerUnique    = "brand_profiles_owner_id_key"
	ConstraintShortlistUnique     = "shortlist_entries_brand_creator_key"
)

// ErrDuplicate は一意制約違反を表す。DuplicateErrorはこのエラーにマッチする。
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound は更新・削除対象の行が存在しないことを表す。
var ErrNotFound = errors.New("row not found")

// DuplicateError は違反した制約名を保持する一意制約違反エラー。
// ストレージ側の一意制約は同時実行時の重複作成に対する最終的な判定となる。
type DuplicateError struct {
	Constraint string
}

// Error はerrorインターフェースを実装する。
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key violates unique constraint %q", e.Constraint)
}

// Unwrap はErrDuplicateを返す。
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// isValidID はidが主キーとして保存され得る形式（UUID）かを返す。
// 形式外のidはどの行にも一致しないため、クエリを発行せず「存在しない」として扱う。
func isValidID(id string) bool {
	return uuid.Validate(id) == nil
}

// translateError はドライバーのエラーを一意制約違反であればDuplicateErrorに変換する。
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return &DuplicateError{Constraint: pqErr.Constraint}
	}
	return err
}

// DuplicateConstraint はerrが一意制約違反であれば制約名とtrueを返す。
func DuplicateConstraint(err error) (string, bool) {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Constraint, true
	}
	return "", false
}
