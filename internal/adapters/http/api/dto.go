package api

import (
	"strconv"

	"github.com/okian/cardcatalog/internal/catalog"
)

// Wire shapes. Ids travel as strings.

type setResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type cardResponse struct {
	ID            string      `json:"id"`
	FormatText    string      `json:"format_text"`
	Color         string      `json:"color"`
	Set           setResponse `json:"set"`
	TotalVotes    int32       `json:"total_votes"`
	AverageRating *float32    `json:"average_rating,omitempty"`
	UserSubmitted bool        `json:"user_submitted"`
}

type pageResponse[T any] struct {
	Results     []T     `json:"results"`
	HasNextPage bool    `json:"has_next_page"`
	LastCursor  *string `json:"last_cursor,omitempty"`
	RandomSeed  *string `json:"random_seed,omitempty"`
}

type statsResponse struct {
	TotalVotes    int32    `json:"total_votes"`
	AverageRating *float32 `json:"average_rating,omitempty"`
}

type addCardRequest struct {
	UserID     *int32 `json:"user_id"`
	FormatText string `json:"format_text"`
	Color      string `json:"color"`
}

type rateCardRequest struct {
	UserID *int32   `json:"user_id"`
	Rating *float64 `json:"rating"`
}

type rateCombinationRequest struct {
	UserID      *int32   `json:"user_id"`
	BlackCardID string   `json:"black_card_id"`
	WhiteCardID string   `json:"white_card_id"`
	Rating      *float64 `json:"rating"`
	Ordinal     int      `json:"ordinal"`
}

func formatID(id int32) string { return strconv.FormatInt(int64(id), 10) }

func toSetResponse(s catalog.Set) setResponse {
	return setResponse{ID: formatID(s.ID), Name: s.Name}
}

func toCardResponse(c catalog.Card) cardResponse {
	return cardResponse{
		ID:            formatID(c.ID),
		FormatText:    c.Text,
		Color:         c.Color.String(),
		Set:           setResponse{ID: formatID(c.Set.ID), Name: c.Set.Name},
		TotalVotes:    c.TotalVotes,
		AverageRating: c.AverageRating,
		UserSubmitted: c.UserSubmitted,
	}
}

func toPageResponse[T, R any](p catalog.Page[T], conv func(T) R) pageResponse[R] {
	out := pageResponse[R]{
		Results:     make([]R, len(p.Results)),
		HasNextPage: p.HasNextPage,
		LastCursor:  p.LastCursor,
		RandomSeed:  p.RandomSeed,
	}
	for i, v := range p.Results {
		out.Results[i] = conv(v)
	}
	return out
}
