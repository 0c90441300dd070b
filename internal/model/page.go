package model

const (
	// DefaultPageLimit は一覧取得の既定件数。
	DefaultPageLimit = 50
	// MaxPageLimit は一覧取得の最大件数。
	MaxPageLimit = 100
)

// NormalizePage は一覧取得のlimitとoffsetを既定値と上限に収める。
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
