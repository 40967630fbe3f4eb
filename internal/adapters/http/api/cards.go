package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/cardcatalog/internal/catalog"
)

// CardsHandler serves card listings and submissions.
type CardsHandler struct {
	catalog Catalog
}

// NewCardsHandler creates a new cards handler.
func NewCardsHandler(cat Catalog) *CardsHandler {
	return &CardsHandler{catalog: cat}
}

// HandleListCards handles GET /cards.
func (h *CardsHandler) HandleListCards(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_cards"
	req, err := parseCardRequest(op, r.URL.Query())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	page, err := h.catalog.ListCards(r.Context(), req)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page, toCardResponse))
}

// HandleAddCard handles POST /cards.
func (h *CardsHandler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_card"
	var body addCardRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if body.UserID == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrInvalidID))
		return
	}
	color, err := catalog.ParseColor(body.Color)
	if err != nil {
		writeCatalogError(w, &catalog.Error{Op: op, Kind: catalog.KindInvalidReference, Err: err})
		return
	}

	card, err := h.catalog.AddCard(r.Context(), *body.UserID, body.FormatText, color)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

// parseCardRequest reads the card listing parameters from the query string.
// Repeated set_id values build the set filter; a lone empty set_id asks for
// an empty filter, which matches no card.
func parseCardRequest(op string, q url.Values) (catalog.CardRequest, error) {
	var req catalog.CardRequest

	if q.Has("search") {
		s := q.Get("search")
		req.Search = &s
	}

	color, err := catalog.ParseColor(q.Get("color"))
	if err != nil {
		return req, &catalog.Error{Op: op, Kind: catalog.KindInvalidReference, Err: err}
	}
	req.Color = color

	prov, err := catalog.ParseProvenance(q.Get("provenance"))
	if err != nil {
		return req, &catalog.Error{Op: op, Kind: catalog.KindInvalidReference, Err: err}
	}
	req.Provenance = prov

	if q.Has("set_id") {
		req.SetIDs = []string{}
		for _, id := range q["set_id"] {
			if id != "" {
				req.SetIDs = append(req.SetIDs, id)
			}
		}
	}

	if q.Has("shuffle") {
		shuffle, err := strconv.ParseBool(q.Get("shuffle"))
		if err != nil {
			return req, &catalog.Error{Op: op, Kind: catalog.KindInvalidReference, Err: errors.New("shuffle must be true or false")}
		}
		req.Shuffle = shuffle
	}

	req.Pagination, err = parsePagination(op, q)
	return req, err
}

func parsePagination(op string, q url.Values) (catalog.Pagination, error) {
	var p catalog.Pagination
	if q.Has("cursor") {
		c := q.Get("cursor")
		p.Cursor = &c
	}
	if q.Has("seed") {
		s := q.Get("seed")
		p.Seed = &s
	}
	if raw := q.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, &catalog.Error{Op: op, Kind: catalog.KindOutOfBounds, Err: errors.New("page_size must be an integer")}
		}
		p.PageSize = &n
	}
	return p, nil
}
