package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"wishlist-extractor/internal/types"
)

const defaultMaxConns = 4

// PostgresStore keeps lists in Postgres through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	q    queries
}

var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to dsn and creates the table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns <= 0 || cfg.MaxConns > defaultMaxConns {
		cfg.MaxConns = defaultMaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := pool.Exec(ctx, createItemsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &PostgresStore{pool: pool, q: newQueries(sq.Dollar)}, nil
}

func (s *PostgresStore) Items(ctx context.Context, listID string) ([]types.NormalizedItem, error) {
	if err := checkListID(listID); err != nil {
		return nil, err
	}

	query, args, err := s.q.selectItems(listID)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
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

func (s *PostgresStore) ReplaceItems(ctx context.Context, listID string, items []types.NormalizedItem) error {
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	for _, stmt := range inserts {
		if _, err := tx.Exec(ctx, stmt.query, stmt.args...); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
