package api

import (
	"net/http"

	"github.com/okian/cardcatalog/internal/catalog"
)

// SetsHandler serves set lookups and listings.
type SetsHandler struct {
	catalog Catalog
}

// NewSetsHandler creates a new sets handler.
func NewSetsHandler(cat Catalog) *SetsHandler {
	return &SetsHandler{catalog: cat}
}

// HandleListSets handles GET /sets.
func (h *SetsHandler) HandleListSets(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_sets"
	q := r.URL.Query()
	var req catalog.SetRequest
	if q.Has("search") {
		s := q.Get("search")
		req.Search = &s
	}
	p, err := parsePagination(op, q)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	req.Pagination = p

	page, err := h.catalog.ListSets(r.Context(), req)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page, toSetResponse))
}

// HandleGetSet handles GET /sets/{id}.
func (h *SetsHandler) HandleGetSet(w http.ResponseWriter, r *http.Request) {
	set, err := h.catalog.GetSet(r.Context(), r.PathValue("id"))
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSetResponse(set))
}

// HandleListSetCards handles GET /sets/{id}/cards. It takes the card
// listing parameters except provenance and set_id.
func (h *SetsHandler) HandleListSetCards(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_set_cards"
	req, err := parseCardRequest(op, r.URL.Query())
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	page, err := h.catalog.ListSetCards(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPageResponse(page, toCardResponse))
}
