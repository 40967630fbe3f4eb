package loadtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/cardcatalog/internal/adapters/http/api"
	"github.com/okian/cardcatalog/internal/adapters/repository"
	service "github.com/okian/cardcatalog/internal/app"
	"github.com/okian/cardcatalog/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func startCatalog(t *testing.T, cards int) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	svc := service.New(
		service.WithDBPath(filepath.Join(t.TempDir(), "load.db")),
		service.WithLogger(logger.Nop()),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = svc.Stop() })

	if cards > 0 {
		set := repository.SetImport{Name: "Load"}
		for i := range cards {
			set.Cards = append(set.Cards, repository.ImportCard{Text: fmt.Sprintf("Card %d _.", i), IsBlack: i%3 == 0})
		}
		if _, _, err := svc.ImportSet(ctx, set); err != nil {
			t.Fatal(err)
		}
	}

	mux := http.NewServeMux()
	api.NewServer(svc.Catalog(), svc, svc, nil).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running catalog with cards", t, func() {
		srv := startCatalog(t, 23)
		cfg := &Config{
			BaseURL:  srv.URL,
			Ratings:  120,
			Users:    9,
			Workers:  4,
			PageSize: 5,
			Timeout:  5 * time.Second,
		}

		Convey("When a load run is executed", func() {
			stats, err := Run(context.Background(), cfg)

			Convey("Then every rating lands and the walks agree", func() {
				So(err, ShouldBeNil)
				So(stats.CardsSeen, ShouldEqual, 23)
				So(stats.RatingsSubmitted, ShouldEqual, 120)
				So(stats.RatingsFailed, ShouldEqual, 0)
				So(stats.CardsVerified, ShouldBeGreaterThan, 0)
				So(stats.ShufflePages, ShouldEqual, 5)
			})
		})
	})

	Convey("Given a running catalog without cards", t, func() {
		srv := startCatalog(t, 0)
		cfg := &Config{BaseURL: srv.URL, Ratings: 1, Users: 1, Workers: 1, PageSize: 5, Timeout: time.Second}

		Convey("When a load run is executed", func() {
			_, err := Run(context.Background(), cfg)

			Convey("Then it reports the empty catalog", func() {
				So(errors.Is(err, ErrNoCards), ShouldBeTrue)
			})
		})
	})
}

func TestVerification(t *testing.T) {
	Convey("Given listings before and after a run", t, func() {
		before := []card{{ID: "1", TotalVotes: 2}, {ID: "2"}}
		planned := []pair{{user: 10, card: "1"}, {user: 10, card: "1"}, {user: 11, card: "1"}}

		Convey("When the counts match distinct raters", func() {
			after := []card{{ID: "1", TotalVotes: 4}, {ID: "2"}}
			n, err := verifyVotes(before, after, planned)

			Convey("Then verification passes", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
			})
		})

		Convey("When a repeat rating was counted twice", func() {
			after := []card{{ID: "1", TotalVotes: 5}, {ID: "2"}}
			_, err := verifyVotes(before, after, planned)

			Convey("Then verification fails", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
			})
		})

		Convey("When a shuffled walk repeats a card", func() {
			err := verifyShuffle(before, []card{{ID: "1"}, {ID: "1"}})

			Convey("Then verification fails", func() {
				So(errors.Is(err, ErrVerification), ShouldBeTrue)
			})
		})

		Convey("When a shuffled walk is a permutation", func() {
			err := verifyShuffle(before, []card{{ID: "2"}, {ID: "1"}})

			Convey("Then verification passes", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
