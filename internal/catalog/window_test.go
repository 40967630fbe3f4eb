package catalog

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/okian/cardcatalog/internal/cursor"
	. "github.com/smartystreets/goconvey/convey"
)

func identity(v int32) int32 { return v }

func TestWindow(t *testing.T) {
	Convey("Given rows fetched with a limit of page size plus one", t, func() {
		Convey("When the probe row came back", func() {
			page := Window([]int32{4, 8, 15}, 2, identity)

			Convey("Then it is dropped and signals a next page", func() {
				So(page.Results, ShouldResemble, []int32{4, 8})
				So(page.HasNextPage, ShouldBeTrue)
				So(*page.LastCursor, ShouldEqual, cursor.EncodeInt32(8))
				So(page.RandomSeed, ShouldBeNil)
			})
		})

		Convey("When fewer rows than the page size came back", func() {
			page := Window([]int32{4}, 2, identity)

			Convey("Then there is neither a next page nor a cursor", func() {
				So(page.Results, ShouldResemble, []int32{4})
				So(page.HasNextPage, ShouldBeFalse)
				So(page.LastCursor, ShouldBeNil)
			})
		})

		Convey("When nothing came back", func() {
			page := Window[int32](nil, 3, identity)

			Convey("Then the results are empty, not nil", func() {
				So(page.Results, ShouldNotBeNil)
				So(page.Results, ShouldBeEmpty)
			})
		})

		Convey("When the page size is zero", func() {
			page := Window([]int32{4}, 0, identity)

			Convey("Then no cursor is produced", func() {
				So(page.Results, ShouldBeEmpty)
				So(page.HasNextPage, ShouldBeTrue)
				So(page.LastCursor, ShouldBeNil)
			})
		})
	})
}

func TestShuffleWindow(t *testing.T) {
	Convey("Given a shuffled fetch", t, func() {
		Convey("When resuming from offset 6 with page size 3", func() {
			page := ShuffleWindow([]int32{9, 2}, 3, 6, 0.125)

			Convey("Then the cursor is the next offset and the seed is echoed", func() {
				So(page.Results, ShouldResemble, []int32{9, 2})
				So(page.HasNextPage, ShouldBeFalse)
				So(*page.LastCursor, ShouldEqual, cursor.EncodeInt32(9))
				So(*page.RandomSeed, ShouldEqual, cursor.EncodeFloat32(0.125))
			})
		})

		Convey("When the next offset would overflow", func() {
			page := ShuffleWindow([]int32{}, 10, math.MaxInt32-1, 0)

			Convey("Then it saturates", func() {
				So(*page.LastCursor, ShouldEqual, cursor.EncodeInt32(math.MaxInt32))
			})
		})
	})
}

func TestErrorTaxonomy(t *testing.T) {
	Convey("Given classified errors", t, func() {
		Convey("When a validation error is built", func() {
			err := invalid("catalog.list_cards", KindOutOfBounds, "page size %d outside [0, %d]", 1001, MaxPageSize)

			Convey("Then it matches its sentinel and carries the detail", func() {
				So(errors.Is(err, ErrOutOfBounds), ShouldBeTrue)
				So(errors.Is(err, ErrNotFound), ShouldBeFalse)
				So(err.Error(), ShouldEqual, "catalog.list_cards: page size out of bounds: page size 1001 outside [0, 1000]")
				So(PublicMessage(err), ShouldEqual, "page size out of bounds: page size 1001 outside [0, 1000]")
				So(KindOf(fmt.Errorf("wrapped: %w", err)), ShouldEqual, KindOutOfBounds)
			})
		})

		Convey("When a store failure is classified", func() {
			err := &Error{Op: "catalog.get_set", Kind: KindServerError, Err: errors.New("database is locked")}

			Convey("Then its public message hides the store text", func() {
				So(PublicMessage(err), ShouldEqual, "internal server error")
				So(err.Error(), ShouldContainSubstring, "database is locked")
			})
		})

		Convey("When an error is unclassified", func() {
			err := errors.New("boom")

			Convey("Then it is a server error", func() {
				So(KindOf(err), ShouldEqual, KindServerError)
				So(PublicMessage(err), ShouldEqual, "internal server error")
			})
		})

		Convey("When kinds are rendered", func() {
			Convey("Then they use snake_case codes", func() {
				So(KindRatingOutOfBounds.String(), ShouldEqual, "rating_out_of_bounds")
				So(KindNotFound.String(), ShouldEqual, "not_found")
				So(Kind(99).String(), ShouldEqual, "server_error")
				So(KindInvalidCursor.IsValidation(), ShouldBeTrue)
				So(KindNotFound.IsValidation(), ShouldBeFalse)
			})
		})
	})
}

func TestParseEnums(t *testing.T) {
	Convey("Given filter strings", t, func() {
		Convey("Then colors parse case-insensitively", func() {
			c, err := ParseColor("Black")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, ColorBlack)
			c, err = ParseColor("")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, ColorUnset)
			_, err = ParseColor("red")
			So(err, ShouldNotBeNil)
		})

		Convey("Then provenance defaults to official", func() {
			p, err := ParseProvenance("")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, ProvenanceOfficial)
			p, err = ParseProvenance("ALL")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, ProvenanceAll)
			_, err = ParseProvenance("mine")
			So(err, ShouldNotBeNil)
		})
	})
}
