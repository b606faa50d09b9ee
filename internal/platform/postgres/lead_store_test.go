//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/platform/postgres"
	"github.com/phrazzld/snaplead-api/internal/store"
	"github.com/phrazzld/snaplead-api/internal/testdb"
)

func newTestLead(t *testing.T, email string) *domain.Lead {
	t.Helper()
	lead, err := domain.NewLead(
		domain.Contact{Email: email, WhatsApp: "+628123456789"},
		"Category: Mocktail\nName: Test",
	)
	require.NoError(t, err)
	return lead
}

func TestPostgresLeadStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	db := testdb.GetTestDBWithT(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		leadStore := postgres.NewPostgresLeadStore(tx, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		lead := newTestLead(t, "create-get@example.com")
		require.NoError(t, leadStore.Create(ctx, lead))

		got, err := leadStore.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, lead.Email, got.Email)
		assert.Equal(t, lead.WhatsApp, got.WhatsApp)
		assert.Equal(t, domain.LeadStatusNew, got.Status)
		assert.Equal(t, domain.LeadSourcePhotoCapture, got.Source)
		assert.Equal(t, lead.Notes, got.Notes)
	})
}

func TestPostgresLeadStore_GetMissing(t *testing.T) {
	t.Parallel()

	db := testdb.GetTestDBWithT(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		leadStore := postgres.NewPostgresLeadStore(tx, nil)

		_, err := leadStore.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrLeadNotFound)
	})
}

func TestPostgresLeadStore_UpdateImageURL(t *testing.T) {
	t.Parallel()

	db := testdb.GetTestDBWithT(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		leadStore := postgres.NewPostgresLeadStore(tx, nil)
		ctx := context.Background()

		lead := newTestLead(t, "update-url@example.com")
		require.NoError(t, leadStore.Create(ctx, lead))

		url := "https://abc.supabase.co/storage/v1/object/public/leads/p.jpg"
		require.NoError(t, leadStore.UpdateImageURL(ctx, lead.ID, url))

		got, err := leadStore.GetByID(ctx, lead.ID)
		require.NoError(t, err)
		assert.Equal(t, url, got.ImageURL)

		err = leadStore.UpdateImageURL(ctx, uuid.New(), url)
		assert.ErrorIs(t, err, store.ErrLeadNotFound)
	})
}

func TestPostgresLeadStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	db := testdb.GetTestDBWithT(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		leadStore := postgres.NewPostgresLeadStore(tx, nil)
		ctx := context.Background()

		older := newTestLead(t, "older@example.com")
		older.CreatedAt = time.Now().UTC().Add(-time.Hour)
		require.NoError(t, leadStore.Create(ctx, older))

		newer := newTestLead(t, "newer@example.com")
		require.NoError(t, leadStore.Create(ctx, newer))

		leads, err := leadStore.List(ctx, 10, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(leads), 2)
		assert.Equal(t, "newer@example.com", leads[0].Email)
	})
}
