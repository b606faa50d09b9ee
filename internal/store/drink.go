package store

import (
	"context"

	"github.com/phrazzld/snaplead-api/internal/domain"
)

// DrinkStore defines the interface for drink_menu lookups.
type DrinkStore interface {
	// GetByName retrieves the first drink whose name contains the given
	// string, matched case-insensitively; the analysis webhook returns
	// free-form drink names that rarely match a menu row exactly.
	// Returns ErrDrinkNotFound if nothing matches.
	GetByName(ctx context.Context, name string) (*domain.DrinkMenu, error)
}
