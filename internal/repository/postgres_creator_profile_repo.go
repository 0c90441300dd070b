package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/reelmatch/internal/model"
)

const creatorProfileColumns = `id, owner_id, handle, display_name, bio, niche, follower_count,
	verification_status, created_at, updated_at`

// PostgresCreatorProfileRepo はPostgreSQLを使用したクリエイタープロフィールリポジトリ。
type PostgresCreatorProfileRepo struct {
	db *sql.DB
}

// NewPostgresCreatorProfileRepo はPostgresCreatorProfileRepoを生成する。
func NewPostgresCreatorProfileRepo(db *sql.DB) *PostgresCreatorProfileRepo {
	return &PostgresCreatorProfileRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreatorProfile(s rowScanner) (*model.CreatorProfile, error) {
	p := &model.CreatorProfile{}
	err := s.Scan(&p.ID, &p.OwnerID, &p.Handle, &p.DisplayName, &p.Bio, &p.Niche,
		&p.FollowerCount, &p.VerificationStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresCreatorProfileRepo) findOne(ctx context.Context, where string, arg any) (*model.CreatorProfile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+creatorProfileColumns+` FROM creator_profiles WHERE `+where+` = $1`,
		arg,
	)
	p, err := scanCreatorProfile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find creator profile by %s: %w", where, err)
	}
	return p, nil
}

// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresCreatorProfileRepo) FindByID(ctx context.Context, id string) (*model.CreatorProfile, error) {
	if !isValidID(id) {
		return nil, nil
	}
	return r.findOne(ctx, "id", id)
}

// FindByOwnerID は所有者IDでプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresCreatorProfileRepo) FindByOwnerID(ctx context.Context, ownerID string) (*model.CreatorProfile, error) {
	return r.findOne(ctx, "owner_id", ownerID)
}

// FindByHandle はハンドルでプロフィールを取得する。見つからない場合はnilを返す。
func (r *PostgresCreatorProfileRepo) FindByHandle(ctx context.Context, handle string) (*model.CreatorProfile, error) {
	return r.findOne(ctx, "handle", handle)
}

// Create はプロフィールを作成する。
func (r *PostgresCreatorProfileRepo) Create(ctx context.Context, p *model.CreatorProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO creator_profiles (`+creatorProfileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.OwnerID, p.Handle, p.DisplayName, p.Bio, p.Niche, p.FollowerCount,
		p.VerificationStatus, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator profile: %w", translateError(err))
	}
	return nil
}

// Update は表示名、自己紹介、ジャンル、フォロワー数を更新する。
func (r *PostgresCreatorProfileRepo) Update(ctx context.Context, p *model.CreatorProfile) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE creator_profiles
		 SET display_name = $1, bio = $2, niche = $3, follower_count = $4, updated_at = $5
		 WHERE id = $6`,
		p.DisplayName, p.Bio, p.Niche, p.FollowerCount, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update creator profile: %w", err)
	}
	return expectOneRow(result, "creator profile", p.ID)
}

// UpdateVerificationStatus は審査状態を更新する。
func (r *PostgresCreatorProfileRepo) UpdateVerificationStatus(ctx context.Context, id string, status model.VerificationStatus) error {
	if !isValidID(id) {
		return fmt.Errorf("creator profile %s: %w", id, ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE creator_profiles SET verification_status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification status: %w", err)
	}
	return expectOneRow(result, "creator profile", id)
}

// ListByStatuses は指定した審査状態のプロフィールをフォロワー数の多い順に返す。
func (r *PostgresCreatorProfileRepo) ListByStatuses(ctx context.Context, statuses []model.VerificationStatus, niche string, limit, offset int) ([]*model.CreatorProfile, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	query := `SELECT ` + creatorProfileColumns + ` FROM creator_profiles
		WHERE verification_status = ANY($1)`
	args := []any{pq.Array(values)}
	if n := strings.TrimSpace(niche); n != "" {
		args = append(args, n)
		query += fmt.Sprintf(" AND niche = $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY follower_count DESC, created_at ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list creator profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.CreatorProfile
	for rows.Next() {
		p, err := scanCreatorProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creator profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate creator profiles: %w", err)
	}
	return profiles, nil
}

// expectOneRow は更新・削除の対象行が存在したかを確認する。
func expectOneRow(result sql.Result, resource, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", resource, id, ErrNotFound)
	}
	return nil
}

// compile-time interface check
var _ CreatorProfileRepository = (*PostgresCreatorProfileRepo)(nil)
