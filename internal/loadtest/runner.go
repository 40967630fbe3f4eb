package loadtest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/cardcatalog/pkg/logger"
)

type pair struct {
	user int32
	card string
}

// Run executes a complete load run against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")
	c := newClient(cfg)

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("ratings", cfg.Ratings),
		logger.Int("users", cfg.Users),
		logger.Int("workers", cfg.Workers),
	)

	if err := c.get(ctx, "/healthz", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	before, _, err := c.walk(ctx, url.Values{"provenance": {"all"}}, cfg.PageSize)
	if err != nil {
		return stats, fmt.Errorf("listing cards: %w", err)
	}
	if len(before) == 0 {
		return stats, ErrNoCards
	}
	stats.CardsSeen = len(before)

	// Fresh user ids keep earlier runs from masking new votes.
	base := rand.Int32N(1<<30) + 1
	planned := make([]pair, cfg.Ratings)
	for i := range planned {
		planned[i] = pair{
			user: base + int32(i%cfg.Users),
			card: before[rand.IntN(len(before))].ID,
		}
	}

	var submitted, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, p := range planned {
		g.Go(func() error {
			body := rating{UserID: p.user, Rating: rand.Float64()}
			if err := c.post(gctx, "/cards/"+p.card+"/ratings", body, nil); err != nil {
				failed.Add(1)
				log.Debug(gctx, "rating failed", logger.String("card", p.card), logger.Error(err))
				return nil
			}
			submitted.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	stats.RatingsSubmitted = int(submitted.Load())
	stats.RatingsFailed = int(failed.Load())

	after, _, err := c.walk(ctx, url.Values{"provenance": {"all"}}, cfg.PageSize)
	if err != nil {
		return stats, fmt.Errorf("listing cards: %w", err)
	}
	if stats.RatingsFailed == 0 {
		n, err := verifyVotes(before, after, planned)
		stats.CardsVerified = n
		if err != nil {
			return stats, err
		}
	}

	shuffled, pages, err := c.walk(ctx, url.Values{"provenance": {"all"}, "shuffle": {"true"}}, cfg.PageSize)
	if err != nil {
		return stats, fmt.Errorf("shuffled walk: %w", err)
	}
	stats.ShufflePages = pages
	if err := verifyShuffle(after, shuffled); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "load run completed",
		logger.Int("cardsSeen", stats.CardsSeen),
		logger.Int("ratingsSubmitted", stats.RatingsSubmitted),
		logger.Int("ratingsFailed", stats.RatingsFailed),
		logger.Int("cardsVerified", stats.CardsVerified),
		logger.Int("shufflePages", stats.ShufflePages),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}
