// Package store persists list item snapshots keyed by list ID.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wishlist-extractor/internal/types"
)

// ErrEmptyListID is returned when an operation is called without a list ID.
var ErrEmptyListID = errors.New("list id is required")

// Store holds the last saved items of each list.
type Store interface {
	// Items returns the saved items in their saved order. An unknown list
	// has no items.
	Items(ctx context.Context, listID string) ([]types.NormalizedItem, error)
	// ReplaceItems atomically replaces the saved items of a list.
	ReplaceItems(ctx context.Context, listID string, items []types.NormalizedItem) error
	Close() error
}

// Open connects to the store selected by driver ("sqlite" or "postgres")
// and creates its table if needed.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql", "pgx":
		s, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

func checkListID(listID string) error {
	if strings.TrimSpace(listID) == "" {
		return ErrEmptyListID
	}
	return nil
}
