package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const cardColumns = `c.id, c.format_text, c.is_black, c.set_id, s.name,
	c.total_votes, c.average_rating, c.submitted_by IS NOT NULL`

// buildCardQuery renders q into SQL with positional arguments. Filters are
// appended in a fixed order so the statement text only depends on which
// filters are present.
func buildCardQuery(q CardQuery) (string, []any, error) {
	var (
		where []string
		args  []any
	)
	if q.Search != nil {
		if match, ok := normalizeSearch(*q.Search); ok {
			where = append(where, "c.id IN (SELECT rowid FROM card_fts WHERE card_fts MATCH ?)")
			args = append(args, match)
		}
	}
	if q.FilterBlack != nil {
		where = append(where, "c.is_black = ?")
		args = append(args, boolToInt(*q.FilterBlack))
	}
	if q.SetIDs != nil {
		ids, err := json.Marshal(q.SetIDs)
		if err != nil {
			return "", nil, fmt.Errorf("encoding set ids: %w", err)
		}
		where = append(where, "c.set_id IN (SELECT value FROM json_each(?))")
		args = append(args, string(ids))
	}
	if q.UserSubmitted != nil {
		where = append(where, "(c.submitted_by IS NOT NULL) = ?")
		args = append(args, boolToInt(*q.UserSubmitted))
	}
	if !q.Shuffle && q.Cursor != nil {
		where = append(where, "c.id > ?")
		args = append(args, *q.Cursor)
	}

	var b strings.Builder
	b.WriteString("SELECT " + cardColumns + "\n\tFROM card c JOIN card_set s ON s.id = c.set_id")
	if len(where) > 0 {
		b.WriteString("\n\tWHERE " + strings.Join(where, " AND "))
	}
	if q.Shuffle {
		var seed float32
		if q.Seed != nil {
			seed = *q.Seed
		}
		b.WriteString("\n\tORDER BY " + shuffleKeyFunc + "(?, c.id), c.id\n\tLIMIT ? OFFSET ?")
		args = append(args, seed, q.Limit, q.Offset)
	} else {
		b.WriteString("\n\tORDER BY c.id\n\tLIMIT ?")
		args = append(args, q.Limit)
	}
	return b.String(), args, nil
}

// ListCards returns up to q.Limit cards matching q.
func (s *SQLiteStore) ListCards(ctx context.Context, q CardQuery) ([]CardRow, error) {
	query, args, err := buildCardQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer rows.Close()

	cards := make([]CardRow, 0, q.Limit)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cards: %w", err)
	}
	return cards, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (CardRow, error) {
	var (
		c         CardRow
		isBlack   int
		submitted int
		avg       sql.NullFloat64
	)
	if err := row.Scan(&c.ID, &c.Text, &isBlack, &c.SetID, &c.SetName, &c.TotalVotes, &avg, &submitted); err != nil {
		return CardRow{}, fmt.Errorf("scanning card: %w", err)
	}
	c.IsBlack = isBlack != 0
	c.UserSubmitted = submitted != 0
	c.AvgRating = nullableFloat32(avg)
	return c, nil
}

// CreateCard stores a user-submitted card in the reserved submissions set.
func (s *SQLiteStore) CreateCard(ctx context.Context, text string, isBlack bool, userID int32) (CardRow, error) {
	var id int32
	err := s.db.QueryRowContext(ctx, `INSERT INTO card (format_text, is_black, set_id, submitted_by)
		VALUES (?, ?, (SELECT id FROM card_set WHERE name = ?), ?)
		RETURNING id`,
		text, boolToInt(isBlack), submissionsSetName, userID,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return CardRow{}, fmt.Errorf("card %q: %w", text, ErrDuplicate)
		}
		return CardRow{}, fmt.Errorf("inserting card: %w", err)
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+cardColumns+`
		FROM card c JOIN card_set s ON s.id = c.set_id WHERE c.id = ?`, id)
	return scanCard(row)
}

// RateCard upserts the rating of userID for cardID and returns the card's
// aggregate as written by the same transaction.
func (s *SQLiteStore) RateCard(ctx context.Context, userID, cardID int32, rating float32) (CardStats, error) {
	var stats CardStats
	err := withinTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		if err := cardExists(ctx, tx, cardID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO card_rating (user_id, card_id, rating)
			VALUES (?, ?, ?)
			ON CONFLICT(user_id, card_id) DO UPDATE SET rating = excluded.rating`,
			userID, cardID, rating,
		); err != nil {
			return fmt.Errorf("upserting rating: %w", err)
		}

		var avg sql.NullFloat64
		if err := tx.QueryRowContext(ctx,
			`SELECT total_votes, average_rating FROM card WHERE id = ?`, cardID,
		).Scan(&stats.TotalVotes, &avg); err != nil {
			return fmt.Errorf("reading card aggregate: %w", err)
		}
		stats.AvgRating = nullableFloat32(avg)
		return nil
	})
	if err != nil {
		return CardStats{}, err
	}
	return stats, nil
}

// RateCardCombination upserts a rating of a white card in a black card's slot.
func (s *SQLiteStore) RateCardCombination(ctx context.Context, userID, blackID, whiteID int32, rating float32, ordinal int32) error {
	return withinTx(ctx, s.db, func(ctx context.Context, tx DBTX) error {
		for _, id := range []int32{blackID, whiteID} {
			if err := cardExists(ctx, tx, id); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO card_combination_rating
			(user_id, black_card_id, white_card_id, ordinal, rating)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(user_id, black_card_id, white_card_id, ordinal)
			DO UPDATE SET rating = excluded.rating`,
			userID, blackID, whiteID, ordinal, rating,
		); err != nil {
			return fmt.Errorf("upserting combination rating: %w", err)
		}
		return nil
	})
}

func cardExists(ctx context.Context, tx DBTX, id int32) error {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM card WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("looking up card %d: %w", id, err)
	}
	return nil
}
