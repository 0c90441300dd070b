package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/reelmatch/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
// メッセージは作成後に変更しない。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// ListByInquiryID は問い合わせ内のメッセージを古い順に返す。
func (r *PostgresMessageRepo) ListByInquiryID(ctx context.Context, inquiryID string) ([]*model.Message, error) {
	if !isValidID(inquiryID) {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, inquiry_id, sender_id, content, created_at
		 FROM messages WHERE inquiry_id = $1 ORDER BY created_at ASC`,
		inquiryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		m := &model.Message{}
		if err := rows.Scan(&m.ID, &m.InquiryID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// Create はメッセージを作成する。
func (r *PostgresMessageRepo) Create(ctx context.Context, m *model.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, inquiry_id, sender_id, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.InquiryID, m.SenderID, m.Content, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", translateError(err))
	}
	return nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
