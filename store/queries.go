package store

import (
	sq "github.com/Masterminds/squirrel"

	"wishlist-extractor/internal/types"
)

const itemsTable = "list_items"

const createItemsTable = `CREATE TABLE IF NOT EXISTS list_items (
	list_id  TEXT    NOT NULL,
	position INTEGER NOT NULL,
	name     TEXT    NOT NULL,
	price    TEXT    NOT NULL DEFAULT '',
	link     TEXT    NOT NULL DEFAULT '',
	image    TEXT    NOT NULL DEFAULT '',
	PRIMARY KEY (list_id, position)
)`

// insertBatch bounds the rows per INSERT so large lists stay under the
// drivers' bind parameter limits.
const insertBatch = 200

// queries builds the statements shared by both backends; only the
// placeholder format differs.
type queries struct {
	sb sq.StatementBuilderType
}

func newQueries(format sq.PlaceholderFormat) queries {
	return queries{sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

func (q queries) selectItems(listID string) (string, []any, error) {
	return q.sb.
		Select("name", "price", "link", "image").
		From(itemsTable).
		Where(sq.Eq{"list_id": listID}).
		OrderBy("position").
		ToSql()
}

func (q queries) deleteItems(listID string) (string, []any, error) {
	return q.sb.
		Delete(itemsTable).
		Where(sq.Eq{"list_id": listID}).
		ToSql()
}

// insertItems returns one statement per batch of items.
func (q queries) insertItems(listID string, items []types.NormalizedItem) ([]statement, error) {
	var out []statement
	for start := 0; start < len(items); start += insertBatch {
		end := min(start+insertBatch, len(items))

		insert := q.sb.
			Insert(itemsTable).
			Columns("list_id", "position", "name", "price", "link", "image")
		for i, item := range items[start:end] {
			insert = insert.Values(listID, start+i, item.Name, item.Price, item.Link, item.Image)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return nil, err
		}
		out = append(out, statement{query: query, args: args})
	}
	return out, nil
}

type statement struct {
	query string
	args  []any
}
