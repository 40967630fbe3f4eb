package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/okian/cardcatalog/internal/adapters/http/api"
	"github.com/okian/cardcatalog/internal/adapters/repository"
	service "github.com/okian/cardcatalog/internal/app"
	"github.com/okian/cardcatalog/internal/catalog"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/sync/errgroup"
)

func baseGame() repository.SetImport {
	set := repository.SetImport{Name: "Base Game"}
	for i := 1; i <= 6; i++ {
		set.Cards = append(set.Cards, repository.ImportCard{Text: fmt.Sprintf("Prompt %d _.", i), IsBlack: true})
	}
	for i := 1; i <= 12; i++ {
		set.Cards = append(set.Cards, repository.ImportCard{Text: fmt.Sprintf("Answer %d.", i)})
	}
	return set
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with an imported set", t, func() {
		svc := newService(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop() }()

		row, added, err := svc.ImportSet(ctx, baseGame())
		So(err, ShouldBeNil)
		So(added, ShouldEqual, 18)

		mux := http.NewServeMux()
		api.NewServer(svc.Catalog(), svc, svc, nil).Register(ctx, mux)

		get := func(target string) map[string]any {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			return body
		}

		Convey("When the set is imported a second time", func() {
			again, addedAgain, err := svc.ImportSet(ctx, baseGame())

			Convey("Then nothing is added", func() {
				So(err, ShouldBeNil)
				So(again.ID, ShouldEqual, row.ID)
				So(addedAgain, ShouldEqual, 0)
			})
		})

		Convey("When walking the white cards page by page over HTTP", func() {
			var ids []string
			target := "/cards?color=white&page_size=5"
			for pages := 0; pages < 10; pages++ {
				body := get(target)
				for _, r := range body["results"].([]any) {
					ids = append(ids, r.(map[string]any)["id"].(string))
				}
				if body["has_next_page"] != true {
					break
				}
				target = "/cards?color=white&page_size=5&cursor=" + url.QueryEscape(body["last_cursor"].(string))
			}

			Convey("Then every white card is seen once", func() {
				So(ids, ShouldHaveLength, 12)
				seen := map[string]bool{}
				for _, id := range ids {
					So(seen[id], ShouldBeFalse)
					seen[id] = true
				}
			})
		})

		Convey("When the set is looked up", func() {
			body := get(fmt.Sprintf("/sets/%d", row.ID))

			Convey("Then its name is returned", func() {
				So(body["name"], ShouldEqual, "Base Game")
			})
		})

		Convey("When the stats endpoint is called", func() {
			body := get("/stats")

			Convey("Then the service is reported as started", func() {
				So(body["started"], ShouldEqual, true)
				So(body["poolSize"], ShouldEqual, 3.0)
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given a started service with a small pool", t, func() {
		svc := newService(t, service.WithPoolSize(3))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop() }()

		_, _, err := svc.ImportSet(ctx, baseGame())
		So(err, ShouldBeNil)
		cat := svc.Catalog()

		Convey("When many users rate the same card concurrently, each twice", func() {
			const users = 20
			g, gctx := errgroup.WithContext(ctx)
			for u := int32(1); u <= users; u++ {
				g.Go(func() error {
					if _, err := cat.RateCard(gctx, u, "1", 0); err != nil {
						return err
					}
					_, err := cat.RateCard(gctx, u, "1", 1)
					return err
				})
			}
			err := g.Wait()

			Convey("Then each user counts once with their last rating", func() {
				So(err, ShouldBeNil)
				stats, err := cat.RateCard(ctx, 1, "1", 1)
				So(err, ShouldBeNil)
				So(stats.TotalVotes, ShouldEqual, int32(users))
				So(*stats.AverageRating, ShouldAlmostEqual, 1, 0.0001)
			})
		})

		Convey("When readers and writers share the pool", func() {
			g, gctx := errgroup.WithContext(ctx)
			for i := range 10 {
				g.Go(func() error {
					_, err := cat.ListCards(gctx, catalog.CardRequest{Color: catalog.ColorBlack, Shuffle: true})
					return err
				})
				g.Go(func() error {
					_, err := cat.AddCard(gctx, int32(i+1), fmt.Sprintf("User answer %d.", i), catalog.ColorWhite)
					return err
				})
			}
			err := g.Wait()

			Convey("Then nothing fails and every submission is listed", func() {
				So(err, ShouldBeNil)
				size := 100
				page, err := cat.ListCards(ctx, catalog.CardRequest{
					Provenance: catalog.ProvenanceUser,
					Pagination: catalog.Pagination{PageSize: &size},
				})
				So(err, ShouldBeNil)
				So(page.Results, ShouldHaveLength, 10)
				So(page.HasNextPage, ShouldBeFalse)
			})
		})
	})
}
