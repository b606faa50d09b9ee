//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/snaplead-api/internal/platform/postgres"
	"github.com/phrazzld/snaplead-api/internal/store"
	"github.com/phrazzld/snaplead-api/internal/testdb"
)

func TestPostgresDrinkStore_GetByName(t *testing.T) {
	t.Parallel()

	db := testdb.GetTestDBWithT(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO drink_menu (name, description, category)
			VALUES ('Espresso Martini', 'Coffee, vodka, and a steady hand.', 'Coffee Cocktail')
		`)
		require.NoError(t, err)

		drinkStore := postgres.NewPostgresDrinkStore(tx, nil)

		// Substring, case-insensitive: the analysis workflow never matches
		// menu names exactly.
		drink, err := drinkStore.GetByName(ctx, "espresso martini")
		require.NoError(t, err)
		assert.Equal(t, "Espresso Martini", drink.Name)

		drink, err = drinkStore.GetByName(ctx, "Martini")
		require.NoError(t, err)
		assert.Equal(t, "Espresso Martini", drink.Name)

		_, err = drinkStore.GetByName(ctx, "Aperol Spritz")
		assert.ErrorIs(t, err, store.ErrDrinkNotFound)
	})
}

func TestPostgresFortuneStore_GetByMood(t *testing.T) {
	t.Parallel()

	db := testdb.GetTestDBWithT(t)
	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO fortunes (mood, gimmick, story)
			VALUES ('happy', 'A bright week ahead', 'Someone returns a favor you forgot you did.')
		`)
		require.NoError(t, err)

		fortuneStore := postgres.NewPostgresFortuneStore(tx, nil)

		fortune, err := fortuneStore.GetByMood(ctx, "Happy")
		require.NoError(t, err)
		assert.Equal(t, "A bright week ahead", fortune.Gimmick)

		_, err = fortuneStore.GetByMood(ctx, "melancholic")
		assert.ErrorIs(t, err, store.ErrFortuneNotFound)
	})
}
