package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/snaplead-api/internal/domain"
)

// LeadStore defines the interface for lead persistence.
type LeadStore interface {
	// Create saves a new lead. Returns validation errors from the domain
	// Lead if data is invalid.
	Create(ctx context.Context, lead *domain.Lead) error

	// UpdateImageURL records the public URL of the uploaded photo on an
	// existing lead. Returns ErrLeadNotFound if the lead does not exist.
	UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error

	// GetByID retrieves a lead by its unique ID.
	// Returns ErrLeadNotFound if the lead does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error)

	// List retrieves leads newest-first. A non-positive limit applies the
	// store default.
	List(ctx context.Context, limit, offset int) ([]*domain.Lead, error)
}
