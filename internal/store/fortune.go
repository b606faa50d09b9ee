package store

import (
	"context"

	"github.com/phrazzld/snaplead-api/internal/domain"
)

// FortuneStore defines the interface for fortunes lookups.
type FortuneStore interface {
	// GetByMood retrieves the fortune row for the given mood, matched
	// case-insensitively. Returns ErrFortuneNotFound if nothing matches.
	GetByMood(ctx context.Context, mood string) (*domain.Fortune, error)
}
