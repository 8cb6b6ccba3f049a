package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"wishlist-extractor/internal/types"
)

// SQLiteStore keeps lists in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
	q  queries
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the database at path. An empty path or
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite has a single writer, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createItemsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &SQLiteStore{db: db, q: newQueries(sq.Question)}, nil
}

func (s *SQLiteStore) Items(ctx context.Context, listID string) ([]types.NormalizedItem, error) {
	if err := checkListID(listID); err != nil {
		return nil, err
	}

	query, args, err := s.q.selectItems(listID)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	items := []types.NormalizedItem{}
	for rows.Next() {
		var item types.NormalizedItem
		if err := rows.Scan(&item.Name, &item.Price, &item.Link, &item.Image); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

func (s *SQLiteStore) ReplaceItems(ctx context.Context, listID string, items []types.NormalizedItem) error {
	if err := checkListID(listID); err != nil {
		return err
	}

	del, delArgs, err := s.q.deleteItems(listID)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	inserts, err := s.q.insertItems(listID, items)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	for _, stmt := range inserts {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
