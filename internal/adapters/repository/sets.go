package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/cardcatalog/pkg/logger"
)

// ListSets returns up to q.Limit sets ordered by id.
func (s *SQLiteStore) ListSets(ctx context.Context, q SetQuery) ([]SetRow, error) {
	var (
		where []string
		args  []any
	)
	if q.Search != nil {
		if match, ok := normalizeSearch(*q.Search); ok {
			where = append(where, "s.id IN (SELECT rowid FROM card_set_fts WHERE card_set_fts MATCH ?)")
			args = append(args, match)
		}
	}
	if q.Cursor != nil {
		where = append(where, "s.id > ?")
		args = append(args, *q.Cursor)
	}
	query := "SELECT s.id, s.name FROM card_set s"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.id LIMIT ?"
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sets: %w", err)
	}
	defer rows.Close()

	sets := make([]SetRow, 0, q.Limit)
	for rows.Next() {
		var r SetRow
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		sets = append(sets, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sets: %w", err)
	}
	return sets, nil
}

// GetSet returns the set with the given id.
func (s *SQLiteStore) GetSet(ctx context.Context, id int32) (SetRow, error) {
	var r SetRow
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM card_set WHERE id = ?`, id).Scan(&r.ID, &r.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return SetRow{}, fmt.Errorf("set %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return SetRow{}, fmt.Errorf("getting set %d: %w", id, err)
	}
	return r, nil
}

// ImportSet creates the named official set if needed and inserts the cards
// it does not already hold. Cards whose text and color already exist in any
// set are skipped. It returns the set and the number of cards inserted.
func (s *SQLiteStore) ImportSet(ctx context.Context, set SetImport) (SetRow, int, error) {
	name := strings.TrimSpace(set.Name)
	if name == "" {
		return SetRow{}, 0, errors.New("import: set name is empty")
	}
	if name == submissionsSetName {
		return SetRow{}, 0, fmt.Errorf("import: %q is reserved", name)
	}

	var (
		row      SetRow
		inserted int
	)
	err := withinTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if err := tx.QueryRowContext(ctx, `INSERT INTO card_set (name) VALUES (?)
			ON CONFLICT(name) DO UPDATE SET name = excluded.name
			RETURNING id, name`, name,
		).Scan(&row.ID, &row.Name); err != nil {
			return fmt.Errorf("upserting set %q: %w", name, err)
		}

		for _, c := range set.Cards {
			text := strings.TrimSpace(c.Text)
			if text == "" {
				continue
			}
			res, err := tx.ExecContext(ctx, `INSERT INTO card (format_text, is_black, set_id)
				VALUES (?, ?, ?)
				ON CONFLICT(format_text, is_black) DO NOTHING`,
				text, boolToInt(c.IsBlack), row.ID,
			)
			if err != nil {
				return fmt.Errorf("inserting card %q: %w", text, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("counting inserted cards: %w", err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return SetRow{}, 0, err
	}

	s.logger.Info(ctx, "set imported", logger.String("set", row.Name), logger.Int("inserted", inserted))
	return row, inserted, nil
}
