package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/reelmatch/internal/model"
)

// PostgresShortlistRepo はPostgreSQLを使用した保存リストリポジトリ。
type PostgresShortlistRepo struct {
	db *sql.DB
}

// NewPostgresShortlistRepo はPostgresShortlistRepoを生成する。
func NewPostgresShortlistRepo(db *sql.DB) *PostgresShortlistRepo {
	return &PostgresShortlistRepo{db: db}
}

// FindByID は指定IDのエントリを取得する。見つからない場合はnilを返す。
func (r *PostgresShortlistRepo) FindByID(ctx context.Context, id string) (*model.ShortlistEntry, error) {
	if !isValidID(id) {
		return nil, nil
	}
	e := &model.ShortlistEntry{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, brand_profile_id, creator_profile_id, note, created_at
		 FROM shortlist_entries WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.BrandProfileID, &e.CreatorProfileID, &e.Note, &e.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find shortlist entry by ID: %w", err)
	}
	return e, nil
}

// ListByBrandProfileID はブランドの保存リストを新しい順に返す。
func (r *PostgresShortlistRepo) ListByBrandProfileID(ctx context.Context, brandProfileID string) ([]*model.ShortlistEntry, error) {
	if !isValidID(brandProfileID) {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, brand_profile_id, creator_profile_id, note, created_at
		 FROM shortlist_entries WHERE brand_profile_id = $1 ORDER BY created_at DESC`,
		brandProfileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shortlist entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.ShortlistEntry
	for rows.Next() {
		e := &model.ShortlistEntry{}
		if err := rows.Scan(&e.ID, &e.BrandProfileID, &e.CreatorProfileID, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shortlist row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shortlist entries: %w", err)
	}
	return entries, nil
}

// Create はエントリを作成する。
func (r *PostgresShortlistRepo) Create(ctx context.Context, e *model.ShortlistEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO shortlist_entries (id, brand_profile_id, creator_profile_id, note, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.BrandProfileID, e.CreatorProfileID, e.Note, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shortlist entry: %w", translateError(err))
	}
	return nil
}

// Delete は指定IDのエントリを削除する。
func (r *PostgresShortlistRepo) Delete(ctx context.Context, id string) error {
	if !isValidID(id) {
		return fmt.Errorf("shortlist entry %s: %w", id, ErrNotFound)
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM shortlist_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete shortlist entry: %w", err)
	}
	return expectOneRow(result, "shortlist entry", id)
}

// compile-time interface check
var _ ShortlistRepository = (*PostgresShortlistRepo)(nil)
