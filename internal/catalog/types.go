// Package catalog turns card and set requests into bounded, resumable result
// windows over a repository.Store and applies ratings and submissions.
package catalog

import (
	"fmt"
	"strings"
)

// Color is the tri-state card color filter. A stored card is always
// Black or White.
type Color int

const (
	ColorUnset Color = iota
	ColorBlack
	ColorWhite
)

func (c Color) String() string {
	switch c {
	case ColorBlack:
		return "black"
	case ColorWhite:
		return "white"
	default:
		return ""
	}
}

// ParseColor accepts "black", "white" or an empty string, case-insensitively.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ColorUnset, nil
	case "black":
		return ColorBlack, nil
	case "white":
		return ColorWhite, nil
	}
	return ColorUnset, fmt.Errorf("unknown color %q", s)
}

func colorOf(isBlack bool) Color {
	if isBlack {
		return ColorBlack
	}
	return ColorWhite
}

// Provenance selects official cards, user submissions, or both.
// The zero value is Official.
type Provenance int

const (
	ProvenanceOfficial Provenance = iota
	ProvenanceUser
	ProvenanceAll
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceUser:
		return "user"
	case ProvenanceAll:
		return "all"
	default:
		return "official"
	}
}

// ParseProvenance accepts "official", "user", "all" or an empty string.
func ParseProvenance(s string) (Provenance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "official":
		return ProvenanceOfficial, nil
	case "user":
		return ProvenanceUser, nil
	case "all":
		return ProvenanceAll, nil
	}
	return ProvenanceOfficial, fmt.Errorf("unknown provenance %q", s)
}

// Pagination carries the client's continuation tokens. A nil PageSize
// means DefaultPageSize.
type Pagination struct {
	Cursor   *string
	PageSize *int
	Seed     *string
}

// CardRequest describes a card listing. A nil SetIDs applies no set filter;
// an empty, non-nil one matches nothing.
type CardRequest struct {
	Search     *string
	Color      Color
	Provenance Provenance
	SetIDs     []string
	Pagination Pagination
	Shuffle    bool
}

// SetRequest describes a set listing.
type SetRequest struct {
	Search     *string
	Pagination Pagination
}

// SetRef is the owning set embedded in a card.
type SetRef struct {
	ID   int32
	Name string
}

// Card is a prompt (black) or answer (white) card.
type Card struct {
	ID            int32
	Text          string
	Color         Color
	Set           SetRef
	TotalVotes    int32
	AverageRating *float32 // nil until the first vote
	UserSubmitted bool
}

// Set is a named group of cards.
type Set struct {
	ID   int32
	Name string
}

// CardStats is a card's rating aggregate.
type CardStats struct {
	TotalVotes    int32
	AverageRating *float32
}

// Page is one result window. LastCursor resumes the scan; RandomSeed is
// set only for shuffled listings and must be sent back with the cursor.
type Page[T any] struct {
	Results     []T
	HasNextPage bool
	LastCursor  *string
	RandomSeed  *string
}

type (
	CardPage = Page[Card]
	SetPage  = Page[Set]
)
