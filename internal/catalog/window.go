package catalog

import (
	"math"

	"github.com/okian/cardcatalog/internal/cursor"
)

// Window cuts rows, fetched with a limit of pageSize+1 in ascending id
// order, down to one page. The extra row only signals that more exist.
// LastCursor is the id of the last returned row when the page is full.
func Window[T any](rows []T, pageSize int, id func(T) int32) Page[T] {
	page := Page[T]{
		Results:     truncate(rows, pageSize),
		HasNextPage: len(rows) > pageSize,
	}
	if pageSize > 0 && len(rows) >= pageSize {
		tok := cursor.EncodeInt32(id(rows[pageSize-1]))
		page.LastCursor = &tok
	}
	return page
}

// ShuffleWindow is Window for a seeded shuffle. The cursor is the offset of
// the next page in the shuffled order and the seed is always echoed.
func ShuffleWindow[T any](rows []T, pageSize int, offset int32, seed float32) Page[T] {
	next := int64(offset) + int64(pageSize)
	if next > math.MaxInt32 {
		next = math.MaxInt32
	}
	tok := cursor.EncodeInt32(int32(next))
	seedTok := cursor.EncodeFloat32(seed)
	return Page[T]{
		Results:     truncate(rows, pageSize),
		HasNextPage: len(rows) > pageSize,
		LastCursor:  &tok,
		RandomSeed:  &seedTok,
	}
}

func truncate[T any](rows []T, n int) []T {
	if len(rows) > n {
		rows = rows[:n]
	}
	if rows == nil {
		return []T{}
	}
	return rows
}
