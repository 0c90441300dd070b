package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/reelmatch/internal/model"
)

// PostgresReelRepo はPostgreSQLを使用したリールリポジトリ。
type PostgresReelRepo struct {
	db *sql.DB
}

// NewPostgresReelRepo はPostgresReelRepoを生成する。
func NewPostgresReelRepo(db *sql.DB) *PostgresReelRepo {
	return &PostgresReelRepo{db: db}
}

// FindByID は指定IDのリールを取得する。見つからない場合はnilを返す。
func (r *PostgresReelRepo) FindByID(ctx context.Context, id string) (*model.Reel, error) {
	if !isValidID(id) {
		return nil, nil
	}
	reel := &model.Reel{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, creator_profile_id, url, title, created_at, updated_at FROM reels WHERE id = $1`,
		id,
	).Scan(&reel.ID, &reel.CreatorProfileID, &reel.URL, &reel.Title, &reel.CreatedAt, &reel.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reel by ID: %w", err)
	}
	return reel, nil
}

// ListByCreatorProfileID はクリエイタープロフィールのリールを新しい順に返す。
func (r *PostgresReelRepo) ListByCreatorProfileID(ctx context.Context, creatorProfileID string) ([]*model.Reel, error) {
	if !isValidID(creatorProfileID) {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, creator_profile_id, url, title, created_at, updated_at
		 FROM reels WHERE creator_profile_id = $1 ORDER BY created_at DESC`,
		creatorProfileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reels: %w", err)
	}
	defer rows.Close()

	var reels []*model.Reel
	for rows.Next() {
		reel := &model.Reel{}
		if err := rows.Scan(&reel.ID, &reel.CreatorProfileID, &reel.URL, &reel.Title, &reel.CreatedAt, &reel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reel row: %w", err)
		}
		reels = append(reels, reel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reels: %w", err)
	}
	return reels, nil
}

// Create はリールを作成する。
func (r *PostgresReelRepo) Create(ctx context.Context, reel *model.Reel) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reels (id, creator_profile_id, url, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reel.ID, reel.CreatorProfileID, reel.URL, reel.Title, reel.CreatedAt, reel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reel: %w", translateError(err))
	}
	return nil
}

// Update はURLとタイトルを更新する。
func (r *PostgresReelRepo) Update(ctx context.Context, reel *model.Reel) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reels SET url = $1, title = $2, updated_at = $3 WHERE id = $4`,
		reel.URL, reel.Title, reel.UpdatedAt, reel.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reel: %w", err)
	}
	return expectOneRow(result, "reel", reel.ID)
}

// Delete は指定IDのリールを削除する。
func (r *PostgresReelRepo) Delete(ctx context.Context, id string) error {
	if !isValidID(id) {
		return fmt.Errorf("reel %s: %w", id, ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM reels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reel: %w", err)
	}
	return expectOneRow(result, "reel", id)
}

// compile-time interface check
var _ ReelRepository = (*PostgresReelRepo)(nil)
