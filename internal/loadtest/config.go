// Package loadtest drives a running catalog over HTTP: it rates cards
// concurrently and then checks the aggregates and a shuffled walk.
package loadtest

import (
	"errors"
	"time"
)

var (
	// ErrNoCards is returned when the target catalog is empty.
	ErrNoCards = errors.New("catalog has no cards")
	// ErrVerification is returned when the catalog disagrees with what was sent.
	ErrVerification = errors.New("verification failed")
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Ratings  int           // Number of card ratings to submit
	Users    int           // Number of distinct raters
	Workers  int           // Concurrent requests in flight
	PageSize int           // Window size used while walking listings
	Timeout  time.Duration // HTTP request timeout
}

// Stats holds run statistics.
type Stats struct {
	CardsSeen        int
	RatingsSubmitted int
	RatingsFailed    int
	CardsVerified    int
	ShufflePages     int
	StartTime        time.Time
	Duration         time.Duration
}

type card struct {
	ID         string `json:"id"`
	Color      string `json:"color"`
	TotalVotes int32  `json:"total_votes"`
}

type page struct {
	Results     []card  `json:"results"`
	HasNextPage bool    `json:"has_next_page"`
	LastCursor  *string `json:"last_cursor"`
	RandomSeed  *string `json:"random_seed"`
}

type rating struct {
	UserID int32   `json:"user_id"`
	Rating float64 `json:"rating"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
