// Package repository defines the catalog store surface and its SQLite implementation.
package repository

import (
	"context"
	"database/sql"
)

// CardQuery is the normalized, bounds-checked descriptor for a card listing.
// Nil pointers mean "no filter".
type CardQuery struct {
	Search        *string
	FilterBlack   *bool
	Cursor        *int32 // ascending id boundary, ignored when Shuffle is set
	Limit         int32  // page size + 1
	SetIDs        []int32
	Shuffle       bool
	Seed          *float32
	Offset        int32 // shuffle resume offset
	UserSubmitted *bool
}

// SetQuery is the descriptor for a set listing.
type SetQuery struct {
	Search *string
	Limit  int32
	Cursor *int32
}

// CardRow is a card joined with its owning set.
type CardRow struct {
	ID            int32
	Text          string
	IsBlack       bool
	SetID         int32
	SetName       string
	TotalVotes    int32
	AvgRating     *float32
	UserSubmitted bool
}

// SetRow is a set without its cards.
type SetRow struct {
	ID   int32
	Name string
}

// CardStats is the rating aggregate of a card after a write.
type CardStats struct {
	TotalVotes int32
	AvgRating  *float32
}

// ImportCard is one official card of a bulk import.
type ImportCard struct {
	Text    string `yaml:"text"`
	IsBlack bool   `yaml:"black"`
}

// SetImport describes an official set delivered as a bulk file.
type SetImport struct {
	Name  string       `yaml:"name"`
	Cards []ImportCard `yaml:"cards"`
}

// Store provides read/write access to the card catalog.
// Every method is a single round trip and holds one pooled connection for
// its duration only.
type Store interface {
	// ListCards returns up to q.Limit rows matching q.
	ListCards(ctx context.Context, q CardQuery) ([]CardRow, error)
	// ListSets returns up to q.Limit sets ordered by id.
	ListSets(ctx context.Context, q SetQuery) ([]SetRow, error)
	// GetSet returns ErrNotFound when no set has the id.
	GetSet(ctx context.Context, id int32) (SetRow, error)

	// CreateCard stores a user-submitted card in the reserved submissions set.
	// Returns ErrDuplicate when the same text and color already exist.
	CreateCard(ctx context.Context, text string, isBlack bool, userID int32) (CardRow, error)
	// RateCard upserts the (user, card) rating and returns the fresh aggregate.
	// Returns ErrNotFound when the card does not exist.
	RateCard(ctx context.Context, userID, cardID int32, rating float32) (CardStats, error)
	// RateCardCombination upserts the (user, black, white, ordinal) rating.
	RateCardCombination(ctx context.Context, userID, blackID, whiteID int32, rating float32, ordinal int32) error

	// ImportSet creates or reuses the named set and inserts its missing cards.
	ImportSet(ctx context.Context, set SetImport) (SetRow, int, error)

	Ping(ctx context.Context) error
	Stats() sql.DBStats
	Close() error
}
