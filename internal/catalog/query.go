package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/cardcatalog/internal/adapters/repository"
	"github.com/okian/cardcatalog/internal/cursor"
)

const (
	// MaxPageSize bounds every listing.
	MaxPageSize = 1000
	// DefaultPageSize applies when the client sends no page size.
	DefaultPageSize = 10
)

// SeedSource yields a fresh shuffle seed in [0, 1).
type SeedSource func() float32

// cardQuery is the validated form of a CardRequest plus what windowing
// needs to build the continuation.
type cardQuery struct {
	repository.CardQuery
	pageSize int
	seed     float32
}

// buildCardQuery validates req and resolves its tokens. It never touches
// the store.
func buildCardQuery(op string, req CardRequest, newSeed SeedSource) (cardQuery, error) {
	size, err := pageSize(op, req.Pagination.PageSize)
	if err != nil {
		return cardQuery{}, err
	}

	q := cardQuery{
		CardQuery: repository.CardQuery{
			Search:  searchText(req.Search),
			Limit:   int32(size) + 1,
			Shuffle: req.Shuffle,
		},
		pageSize: size,
	}

	switch req.Color {
	case ColorBlack:
		q.FilterBlack = boolPtr(true)
	case ColorWhite:
		q.FilterBlack = boolPtr(false)
	}

	switch req.Provenance {
	case ProvenanceOfficial:
		q.UserSubmitted = boolPtr(false)
	case ProvenanceUser:
		q.UserSubmitted = boolPtr(true)
	}

	if req.SetIDs != nil {
		q.SetIDs = make([]int32, 0, len(req.SetIDs))
		for _, raw := range req.SetIDs {
			id, err := parseID(op, "set id", raw)
			if err != nil {
				return cardQuery{}, err
			}
			q.SetIDs = append(q.SetIDs, id)
		}
	}

	boundary, err := decodeCursor(op, req.Pagination.Cursor)
	if err != nil {
		return cardQuery{}, err
	}
	if !req.Shuffle {
		q.Cursor = boundary
		return q, nil
	}

	// In shuffle mode the cursor is the resume offset.
	if boundary != nil && *boundary > 0 {
		q.Offset = *boundary
	}
	seed, err := resolveSeed(op, req.Pagination.Seed, newSeed)
	if err != nil {
		return cardQuery{}, err
	}
	q.seed = seed
	q.Seed = &seed
	return q, nil
}

// buildSetQuery validates a set listing request.
func buildSetQuery(op string, req SetRequest) (repository.SetQuery, int, error) {
	size, err := pageSize(op, req.Pagination.PageSize)
	if err != nil {
		return repository.SetQuery{}, 0, err
	}
	boundary, err := decodeCursor(op, req.Pagination.Cursor)
	if err != nil {
		return repository.SetQuery{}, 0, err
	}
	return repository.SetQuery{
		Search: searchText(req.Search),
		Limit:  int32(size) + 1,
		Cursor: boundary,
	}, size, nil
}

func pageSize(op string, requested *int) (int, error) {
	if requested == nil {
		return DefaultPageSize, nil
	}
	n := *requested
	if n < 0 || n > MaxPageSize {
		return 0, invalid(op, KindOutOfBounds, "page size %d outside [0, %d]", n, MaxPageSize)
	}
	return n, nil
}

// decodeCursor returns nil for an absent or empty token.
func decodeCursor(op string, token *string) (*int32, error) {
	if token == nil || *token == "" {
		return nil, nil
	}
	v, err := cursor.DecodeInt32(*token)
	if err != nil {
		return nil, &Error{Op: op, Kind: KindInvalidCursor, Err: err}
	}
	return &v, nil
}

func resolveSeed(op string, token *string, newSeed SeedSource) (float32, error) {
	if token == nil || *token == "" {
		return newSeed(), nil
	}
	seed, err := cursor.DecodeFloat32(*token)
	if err != nil {
		return 0, &Error{Op: op, Kind: KindInvalidCursor, Err: err}
	}
	return seed, nil
}

func searchText(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// parseID parses a base-10 int32 identity.
func parseID(op, field, raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, invalid(op, KindInvalidReference, "%s %q is not a valid id", field, raw)
	}
	return int32(id), nil
}

func checkRating(op string, rating float64) (float32, error) {
	if math.IsNaN(rating) || rating < 0 || rating > 1 {
		return 0, invalid(op, KindRatingOutOfBounds, "rating %v outside [0, 1]", rating)
	}
	return float32(rating), nil
}

func checkOrdinal(op string, ordinal int) (int32, error) {
	if ordinal < 0 {
		return 0, invalid(op, KindNegativeOrdinal, "ordinal %d is negative", ordinal)
	}
	if ordinal > math.MaxInt32 {
		return 0, invalid(op, KindInvalidReference, "ordinal %d is too large", ordinal)
	}
	return int32(ordinal), nil
}

func checkText(op, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", invalid(op, KindEmptyFormatText, "card text is blank")
	}
	return trimmed, nil
}

func boolPtr(b bool) *bool { return &b }
