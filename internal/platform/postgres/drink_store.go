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

// PostgresDrinkStore implements the store.DrinkStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDrinkStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDrinkStore creates a new PostgreSQL implementation of the
// DrinkStore interface.
func NewPostgresDrinkStore(db store.DBTX, logger *slog.Logger) *PostgresDrinkStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDrinkStore{
		db:     db,
		logger: logger.With(slog.String("component", "drink_store")),
	}
}

// Ensure PostgresDrinkStore implements store.DrinkStore interface
var _ store.DrinkStore = (*PostgresDrinkStore)(nil)

// GetByName implements store.DrinkStore.GetByName
// The analysis workflow answers with free-form drink names ("an Espresso
// Martini, perhaps"), so the lookup is a case-insensitive substring match
// taking the first hit. Returns store.ErrDrinkNotFound if nothing matches.
func (s *PostgresDrinkStore) GetByName(ctx context.Context, name string) (*domain.DrinkMenu, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, description, category
		FROM drink_menu
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT 1
	`
	var drink domain.DrinkMenu
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&drink.ID,
		&drink.Name,
		&drink.Description,
		&drink.Category,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no drink menu match", slog.String("name", name))
			return nil, store.ErrDrinkNotFound
		}
		log.Error("failed to get drink",
			slog.String("error", err.Error()),
			slog.String("name", name))
		return nil, err
	}

	return &drink, nil
}
