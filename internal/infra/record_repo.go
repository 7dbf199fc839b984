package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/Vovarama1992/tutor_context/internal/ports"
)

type historyRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) ports.HistoryRepo {
	return &historyRepo{db: db}
}

func (r *historyRepo) Append(ctx context.Context, userID, question, answer string) (int64, error) {
	query := `
		INSERT INTO chat_history (user_id, question, answer, created_at)
		VALUES (?, ?, ?, ?)
	`
	args := []any{userID, question, answer, r.db.timeArg(time.Now())}

	// lib/pq не умеет LastInsertId
	if r.db.Driver() == DriverPostgres {
		var id int64
		err := r.db.QueryRowContext(ctx, r.db.rebind(query+" RETURNING id"), args...).Scan(&id)
		if err != nil {
			return 0, errors.Wrap(err, "failed to append chat history")
		}
		return id, nil
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to append chat history")
	}
	return res.LastInsertId()
}

func (r *historyRepo) ListRecent(ctx context.Context, userID string, limit int) ([]ports.ChatEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, user_id, question, answer, created_at
		FROM chat_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat history")
	}
	return scanEntries(rows)
}

func (r *historyRepo) ListAll(ctx context.Context, limit int) ([]ports.ChatEntry, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(`
		SELECT id, user_id, question, answer, created_at
		FROM chat_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat history")
	}
	return scanEntries(rows)
}

func (r *historyRepo) Stats(ctx context.Context) (*ports.HistoryStats, error) {
	var st ports.HistoryStats

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_id) FROM chat_history
	`).Scan(&st.TotalConversations, &st.UniqueUsers)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count chat history")
	}
	if st.TotalConversations == 0 {
		return &st, nil
	}

	var latest dbTime
	err = r.db.QueryRowContext(ctx, `
		SELECT user_id, created_at
		FROM chat_history
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`).Scan(&st.LatestUserID, &latest)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to get latest conversation")
	}
	if err == nil {
		st.LatestAt = &latest.Time
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT user_id, COUNT(*) AS message_count
		FROM chat_history
		GROUP BY user_id
		ORDER BY message_count DESC, user_id
		LIMIT 1
	`).Scan(&st.MostActiveUserID, &st.MostActiveCount)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, "failed to get most active user")
	}

	return &st, nil
}

func scanEntries(rows *sql.Rows) ([]ports.ChatEntry, error) {
	defer rows.Close()

	entries := []ports.ChatEntry{}
	for rows.Next() {
		var (
			e         ports.ChatEntry
			createdAt dbTime
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Question, &e.Answer, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat history")
		}
		e.CreatedAt = createdAt.Time
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read chat history")
	}
	return entries, nil
}
