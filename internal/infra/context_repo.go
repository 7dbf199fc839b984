package infra

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/Vovarama1992/tutor_context/internal/ports"
	"github.com/Vovarama1992/tutor_context/internal/prefs"
)

const currentSchemaVersion = prefs.CurrentVersion

type contextRepo struct {
	db *DB
}

func NewContextRepo(db *DB) ports.ContextRepo {
	return &contextRepo{db: db}
}

func (r *contextRepo) EnsureExists(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO contexts (user_id, preferences, schema_version, updated_at)
		VALUES (?, '{}', ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`), userID, currentSchemaVersion, r.db.timeArg(time.Now()))
	if err != nil {
		return errors.Wrap(err, "failed to create context")
	}
	return nil
}

func (r *contextRepo) Get(ctx context.Context, userID string) (*ports.UserContext, error) {
	var (
		uc        ports.UserContext
		updatedAt dbTime
	)
	err := r.db.QueryRowContext(ctx, r.db.rebind(`
		SELECT id, user_id, preferences, schema_version, updated_at
		FROM contexts
		WHERE user_id = ?
	`), userID).Scan(&uc.ID, &uc.UserID, &uc.Preferences, &uc.SchemaVersion, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get context")
	}
	uc.UpdatedAt = updatedAt.Time
	return &uc, nil
}

func (r *contextRepo) Upsert(ctx context.Context, userID string, preferences []byte, schemaVersion int) error {
	// string, а не []byte: lib/pq шлёт []byte бинарно, jsonb такое не примет
	_, err := r.db.ExecContext(ctx, r.db.rebind(`
		INSERT INTO contexts (user_id, preferences, schema_version, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET preferences = excluded.preferences,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`), userID, string(preferences), schemaVersion, r.db.timeArg(time.Now()))
	if err != nil {
		return errors.Wrap(err, "failed to upsert context")
	}
	return nil
}
