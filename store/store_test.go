package store

import (
	"context"
	"fmt"
	"os"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishlist-extractor/internal/types"
)

func openTestStore(t *testing.T) Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_UnknownListIsEmpty(t *testing.T) {
	s := openTestStore(t)

	items, err := s.Items(context.Background(), "nope")

	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStore_ReplaceAndRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := []types.NormalizedItem{
		{Name: "Widget", Price: "$5.00", Link: "https://www.amazon.com/dp/B000000001"},
		{Name: "Gadget", Image: "https://img/1.jpg"},
	}
	require.NoError(t, s.ReplaceItems(ctx, "list-1", first))
	require.NoError(t, s.ReplaceItems(ctx, "list-2", []types.NormalizedItem{{Name: "Other"}}))

	got, err := s.Items(ctx, "list-1")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []types.NormalizedItem{{Name: "Crib"}}
	require.NoError(t, s.ReplaceItems(ctx, "list-1", second))

	got, err = s.Items(ctx, "list-1")
	require.NoError(t, err)
	assert.Equal(t, second, got)

	other, err := s.Items(ctx, "list-2")
	require.NoError(t, err)
	assert.Equal(t, []types.NormalizedItem{{Name: "Other"}}, other)
}

func TestStore_ReplaceWithEmptyClears(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceItems(ctx, "list-1", []types.NormalizedItem{{Name: "Widget"}}))
	require.NoError(t, s.ReplaceItems(ctx, "list-1", nil))

	got, err := s.Items(ctx, "list-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_LargeListKeepsOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	items := make([]types.NormalizedItem, insertBatch*2+7)
	for i := range items {
		items[i] = types.NormalizedItem{Name: fmt.Sprintf("item %03d", len(items)-i)}
	}
	require.NoError(t, s.ReplaceItems(ctx, "big", items))

	got, err := s.Items(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}

func TestStore_RequiresListID(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Items(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyListID)
	assert.ErrorIs(t, s.ReplaceItems(context.Background(), "", nil), ErrEmptyListID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "x")
	assert.Error(t, err)
}

func TestQueries_Placeholders(t *testing.T) {
	query, args, err := newQueries(sq.Dollar).selectItems("abc")
	require.NoError(t, err)
	assert.Equal(t, "SELECT name, price, link, image FROM list_items WHERE list_id = $1 ORDER BY position", query)
	assert.Equal(t, []any{"abc"}, args)

	inserts, err := newQueries(sq.Question).insertItems("abc", []types.NormalizedItem{{Name: "A"}, {Name: "B"}})
	require.NoError(t, err)
	require.Len(t, inserts, 1)
	assert.Contains(t, inserts[0].query, "VALUES (?,?,?,?,?,?),(?,?,?,?,?,?)")
	assert.Len(t, inserts[0].args, 12)
}

// Runs only when a Postgres DSN is provided.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("STORE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("STORE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	s, err := Open(ctx, "postgres", dsn)
	require.NoError(t, err)
	defer s.Close()

	items := []types.NormalizedItem{{Name: "Widget", Price: "$1.00"}, {Name: "Gadget"}}
	require.NoError(t, s.ReplaceItems(ctx, "pg-test", items))

	got, err := s.Items(ctx, "pg-test")
	require.NoError(t, err)
	assert.Equal(t, items, got)
}
