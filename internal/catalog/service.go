package catalog

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/okian/cardcatalog/internal/adapters/repository"
	"github.com/okian/cardcatalog/pkg/logger"
	"github.com/okian/cardcatalog/pkg/metrics"
)

const defaultStoreTimeout = 5 * time.Second

// Catalog serves card and set listings, ratings and submissions. It holds
// no per-request state; the store's connection pool is the only shared
// resource.
type Catalog struct {
	store        repository.Store
	logger       logger.Logger
	storeTimeout time.Duration
	newSeed      SeedSource
}

// New creates a Catalog over store.
func New(store repository.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:        store,
		logger:       logger.Nop(),
		storeTimeout: defaultStoreTimeout,
		newSeed:      rand.Float32,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListCards returns one window of cards matching req.
func (c *Catalog) ListCards(ctx context.Context, req CardRequest) (CardPage, error) {
	const op = "catalog.list_cards"
	q, err := buildCardQuery(op, req, c.newSeed)
	if err != nil {
		return CardPage{}, c.rejected(ctx, err)
	}
	return c.listCards(ctx, op, q)
}

func (c *Catalog) listCards(ctx context.Context, op string, q cardQuery) (CardPage, error) {
	rows, err := storeCall(ctx, c, op, func(ctx context.Context) ([]repository.CardRow, error) {
		return c.store.ListCards(ctx, q.CardQuery)
	})
	if err != nil {
		return CardPage{}, c.storeFailed(ctx, op, err)
	}

	cards := make([]Card, len(rows))
	for i, r := range rows {
		cards[i] = cardFromRow(r)
	}
	metrics.RecordPage("cards", q.Shuffle)
	if q.Shuffle {
		return ShuffleWindow(cards, q.pageSize, q.Offset, q.seed), nil
	}
	return Window(cards, q.pageSize, func(card Card) int32 { return card.ID }), nil
}

// ListSets returns one window of sets, optionally filtered by a search.
func (c *Catalog) ListSets(ctx context.Context, req SetRequest) (SetPage, error) {
	const op = "catalog.list_sets"
	q, size, err := buildSetQuery(op, req)
	if err != nil {
		return SetPage{}, c.rejected(ctx, err)
	}
	rows, err := storeCall(ctx, c, op, func(ctx context.Context) ([]repository.SetRow, error) {
		return c.store.ListSets(ctx, q)
	})
	if err != nil {
		return SetPage{}, c.storeFailed(ctx, op, err)
	}

	sets := make([]Set, len(rows))
	for i, r := range rows {
		sets[i] = Set{ID: r.ID, Name: r.Name}
	}
	metrics.RecordPage("sets", false)
	return Window(sets, size, func(s Set) int32 { return s.ID }), nil
}

// GetSet returns the set with the given id.
func (c *Catalog) GetSet(ctx context.Context, id string) (Set, error) {
	const op = "catalog.get_set"
	setID, err := parseID(op, "set id", id)
	if err != nil {
		return Set{}, c.rejected(ctx, err)
	}
	return c.getSet(ctx, op, setID)
}

func (c *Catalog) getSet(ctx context.Context, op string, id int32) (Set, error) {
	row, err := storeCall(ctx, c, op, func(ctx context.Context) (repository.SetRow, error) {
		return c.store.GetSet(ctx, id)
	})
	if err != nil {
		return Set{}, c.storeFailed(ctx, op, err)
	}
	return Set{ID: row.ID, Name: row.Name}, nil
}

// ListSetCards lists the cards of one set. Every listing rule of
// ListCards applies, except that official and user cards are both listed
// and any set filter in req is replaced by the set itself.
func (c *Catalog) ListSetCards(ctx context.Context, setID string, req CardRequest) (CardPage, error) {
	const op = "catalog.list_set_cards"
	id, err := parseID(op, "set id", setID)
	if err != nil {
		return CardPage{}, c.rejected(ctx, err)
	}
	req.SetIDs = []string{setID}
	req.Provenance = ProvenanceAll
	q, err := buildCardQuery(op, req, c.newSeed)
	if err != nil {
		return CardPage{}, c.rejected(ctx, err)
	}
	if _, err := c.getSet(ctx, op, id); err != nil {
		return CardPage{}, err
	}
	return c.listCards(ctx, op, q)
}

// RateCard records userID's rating of a card, replacing any earlier rating
// by the same user, and returns the card's new aggregate.
func (c *Catalog) RateCard(ctx context.Context, userID int32, cardID string, rating float64) (CardStats, error) {
	const op = "catalog.rate_card"
	id, err := parseID(op, "card id", cardID)
	if err != nil {
		return CardStats{}, c.rejected(ctx, err)
	}
	r, err := checkRating(op, rating)
	if err != nil {
		return CardStats{}, c.rejected(ctx, err)
	}

	stats, err := storeCall(ctx, c, op, func(ctx context.Context) (repository.CardStats, error) {
		return c.store.RateCard(ctx, userID, id, r)
	})
	if err != nil {
		return CardStats{}, c.storeFailed(ctx, op, err)
	}
	metrics.RecordRating("card")
	c.logger.Debug(ctx, "card rated",
		logger.Int32("user_id", userID), logger.Int32("card_id", id), logger.Int32("total_votes", stats.TotalVotes))
	return CardStats{TotalVotes: stats.TotalVotes, AverageRating: stats.AvgRating}, nil
}

// RateCardCombination records how well a white card fills slot ordinal of
// a black card. It does not affect card aggregates.
func (c *Catalog) RateCardCombination(ctx context.Context, userID int32, blackID, whiteID string, rating float64, ordinal int) error {
	const op = "catalog.rate_card_combination"
	black, err := parseID(op, "black card id", blackID)
	if err != nil {
		return c.rejected(ctx, err)
	}
	white, err := parseID(op, "white card id", whiteID)
	if err != nil {
		return c.rejected(ctx, err)
	}
	r, err := checkRating(op, rating)
	if err != nil {
		return c.rejected(ctx, err)
	}
	slot, err := checkOrdinal(op, ordinal)
	if err != nil {
		return c.rejected(ctx, err)
	}

	_, err = storeCall(ctx, c, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.store.RateCardCombination(ctx, userID, black, white, r, slot)
	})
	if err != nil {
		return c.storeFailed(ctx, op, err)
	}
	metrics.RecordRating("combination")
	return nil
}

// AddCard stores a user-submitted card. Duplicates are detected by the
// store and reported as a server error.
func (c *Catalog) AddCard(ctx context.Context, userID int32, text string, color Color) (Card, error) {
	const op = "catalog.add_card"
	trimmed, err := checkText(op, text)
	if err != nil {
		return Card{}, c.rejected(ctx, err)
	}
	if color != ColorBlack && color != ColorWhite {
		return Card{}, c.rejected(ctx, invalid(op, KindInvalidReference, "card color must be black or white"))
	}

	row, err := storeCall(ctx, c, op, func(ctx context.Context) (repository.CardRow, error) {
		return c.store.CreateCard(ctx, trimmed, color == ColorBlack, userID)
	})
	if err != nil {
		return Card{}, c.storeFailed(ctx, op, err)
	}
	metrics.RecordCardSubmitted()
	c.logger.Info(ctx, "card submitted", logger.Int32("user_id", userID), logger.Int32("card_id", row.ID))
	return cardFromRow(row), nil
}

// storeCall runs fn under the store timeout and records its latency.
// Not-found answers are not counted as store errors.
func storeCall[T any](ctx context.Context, c *Catalog, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.storeTimeout)
	defer cancel()

	start := time.Now()
	v, err := fn(ctx)
	failed := err != nil && !errors.Is(err, repository.ErrNotFound)
	metrics.RecordStoreCall(op, time.Since(start).Seconds(), failed)
	return v, err
}

// storeFailed classifies a store error. Anything but a missing row is a
// server error; its detail is logged here and kept off the wire.
func (c *Catalog) storeFailed(ctx context.Context, op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &Error{Op: op, Kind: KindNotFound, Err: err}
	}
	c.logger.Error(ctx, "store call failed", logger.String("op", op), logger.Error(err))
	return &Error{Op: op, Kind: KindServerError, Err: err}
}

// rejected counts a validation failure and returns err unchanged.
func (c *Catalog) rejected(ctx context.Context, err error) error {
	kind := KindOf(err)
	metrics.RecordValidationFailure(kind.String())
	if kind == KindInvalidCursor {
		metrics.RecordCursorDecodeFailure()
	}
	c.logger.Debug(ctx, "request rejected", logger.Error(err))
	return err
}

func cardFromRow(r repository.CardRow) Card {
	return Card{
		ID:            r.ID,
		Text:          r.Text,
		Color:         colorOf(r.IsBlack),
		Set:           SetRef{ID: r.SetID, Name: r.SetName},
		TotalVotes:    r.TotalVotes,
		AverageRating: r.AvgRating,
		UserSubmitted: r.UserSubmitted,
	}
}
