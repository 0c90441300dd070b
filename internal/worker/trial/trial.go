// Package trial はブランドの無料トライアル期限切れを処理するジョブを提供する。
// trial_ends_atを過ぎたtrialingのブランドプロフィールをexpiredへ更新する。
package trial

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Recorder は期限切れ件数の記録先。
type Recorder interface {
	RecordTrialsExpired(count int)
}

// expireQuery はトライアル期限を過ぎたブランドを一括でexpiredにする。
// 状態を条件に含めるため、何度実行しても結果は変わらない。
const expireQuery = `UPDATE brand_profiles
SET subscription_status = 'expired', updated_at = $1
WHERE subscription_status = 'trialing' AND trial_ends_at < $1`

// ExpiryJob はトライアル期限切れの定期処理ジョブ。
type ExpiryJob struct {
	db       Executor
	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
}

// NewExpiryJob は新しいExpiryJobを生成する。recorderはnilでもよい。
func NewExpiryJob(db Executor, logger *slog.Logger, recorder Recorder) *ExpiryJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryJob{
		db:       db,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Run は期限切れのトライアルをexpiredへ更新し、更新件数を返す。
// 対象がない場合も成功として0を返す。
func (j *ExpiryJob) Run(ctx context.Context) (int64, error) {
	start := time.Now()

	result, err := j.db.ExecContext(ctx, expireQuery, j.now().UTC())
	if err != nil {
		j.logger.Error("トライアル期限切れ処理の実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("トライアル期限切れ処理の実行に失敗: %w", err)
	}

	expired, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("更新件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("更新件数の取得に失敗: %w", err)
	}

	if j.recorder != nil && expired > 0 {
		j.recorder.RecordTrialsExpired(int(expired))
	}

	j.logger.Info("トライアル期限切れ処理が完了しました",
		slog.Int64("expired_count", expired),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return expired, nil
}

// Start は指定間隔のティッカーでジョブを実行する。
// 起動直後に1回実行し、コンテキストがキャンセルされるまで継続する。
func (j *ExpiryJob) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("トライアル期限切れジョブを開始しました",
		slog.Duration("interval", interval),
	)

	// 失敗はRun内でログに記録済みのため、次の周期で再試行する
	_, _ = j.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("トライアル期限切れジョブを停止しました")
			return
		case <-ticker.C:
			_, _ = j.Run(ctx)
		}
	}
}
