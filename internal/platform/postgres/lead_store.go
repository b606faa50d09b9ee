package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/platform/logger"
	"github.com/phrazzld/snaplead-api/internal/store"
)

// PostgreSQL error codes
const pgUniqueViolationCode = "23505"

// defaultLeadListLimit bounds unpaginated list requests.
const defaultLeadListLimit = 100

// PostgresLeadStore implements the store.LeadStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLeadStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLeadStore creates a new PostgreSQL implementation of the
// LeadStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresLeadStore(db store.DBTX, logger *slog.Logger) *PostgresLeadStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLeadStore{
		db:     db,
		logger: logger.With(slog.String("component", "lead_store")),
	}
}

// Ensure PostgresLeadStore implements store.LeadStore interface
var _ store.LeadStore = (*PostgresLeadStore)(nil)

// Create implements store.LeadStore.Create
// It saves a new lead to the database, handling domain validation.
func (s *PostgresLeadStore) Create(ctx context.Context, lead *domain.Lead) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := lead.Validate(); err != nil {
		log.Warn("lead validation failed during create",
			slog.String("error", err.Error()),
			slog.String("lead_id", lead.ID.String()))
		return err
	}

	query := `
		INSERT INTO leads (id, email, whatsapp, status, source, notes, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		lead.ID,
		lead.Email,
		lead.WhatsApp,
		lead.Status,
		lead.Source,
		lead.Notes,
		lead.ImageURL,
		lead.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Warn("unique violation during lead creation",
				slog.String("lead_id", lead.ID.String()))
			return fmt.Errorf("%w: lead with ID %s already exists",
				store.ErrInvalidEntity, lead.ID)
		}

		log.Error("failed to create lead",
			slog.String("error", err.Error()),
			slog.String("lead_id", lead.ID.String()))
		return err
	}

	log.Info("lead created successfully",
		slog.String("lead_id", lead.ID.String()),
		slog.String("status", string(lead.Status)))
	return nil
}

// UpdateImageURL implements store.LeadStore.UpdateImageURL
// Returns store.ErrLeadNotFound if the lead does not exist.
func (s *PostgresLeadStore) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE leads SET image_url = $2 WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, imageURL)
	if err != nil {
		log.Error("failed to update lead image URL",
			slog.String("error", err.Error()),
			slog.String("lead_id", id.String()))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrLeadNotFound
	}

	log.Debug("lead image URL updated", slog.String("lead_id", id.String()))
	return nil
}

// GetByID implements store.LeadStore.GetByID
// Returns store.ErrLeadNotFound if the lead does not exist.
func (s *PostgresLeadStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, whatsapp, status, source, notes, image_url, created_at
		FROM leads
		WHERE id = $1
	`
	var lead domain.Lead
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&lead.ID,
		&lead.Email,
		&lead.WhatsApp,
		&lead.Status,
		&lead.Source,
		&lead.Notes,
		&lead.ImageURL,
		&lead.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLeadNotFound
		}
		log.Error("failed to get lead",
			slog.String("error", err.Error()),
			slog.String("lead_id", id.String()))
		return nil, err
	}

	return &lead, nil
}

// List implements store.LeadStore.List
// Leads are returned newest-first.
func (s *PostgresLeadStore) List(ctx context.Context, limit, offset int) ([]*domain.Lead, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = defaultLeadListLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, email, whatsapp, status, source, notes, image_url, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to list leads", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	leads := make([]*domain.Lead, 0)
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.Email,
			&lead.WhatsApp,
			&lead.Status,
			&lead.Source,
			&lead.Notes,
			&lead.ImageURL,
			&lead.CreatedAt,
		); err != nil {
			log.Error("failed to scan lead row", slog.String("error", err.Error()))
			return nil, err
		}
		leads = append(leads, &lead)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return leads, nil
}
