package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/platform/logger"
	"github.com/phrazzld/snaplead-api/internal/store"
)

// PostgresFortuneStore implements the store.FortuneStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFortuneStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFortuneStore creates a new PostgreSQL implementation of the
// FortuneStore interface.
func NewPostgresFortuneStore(db store.DBTX, logger *slog.Logger) *PostgresFortuneStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFortuneStore{
		db:     db,
		logger: logger.With(slog.String("component", "fortune_store")),
	}
}

// Ensure PostgresFortuneStore implements store.FortuneStore interface
var _ store.FortuneStore = (*PostgresFortuneStore)(nil)

// GetByMood implements store.FortuneStore.GetByMood
// Returns store.ErrFortuneNotFound if no row matches the mood.
func (s *PostgresFortuneStore) GetByMood(ctx context.Context, mood string) (*domain.Fortune, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, mood, gimmick, story
		FROM fortunes
		WHERE LOWER(mood) = LOWER($1)
		LIMIT 1
	`
	var fortune domain.Fortune
	err := s.db.QueryRowContext(ctx, query, mood).Scan(
		&fortune.ID,
		&fortune.Mood,
		&fortune.Gimmick,
		&fortune.Story,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no fortune for mood", slog.String("mood", mood))
			return nil, store.ErrFortuneNotFound
		}
		log.Error("failed to get fortune",
			slog.String("error", err.Error()),
			slog.String("mood", mood))
		return nil, err
	}

	return &fortune, nil
}
