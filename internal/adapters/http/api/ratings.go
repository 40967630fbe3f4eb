package api

import (
	"errors"
	"net/http"
)

// RatingsHandler records card and combination ratings.
type RatingsHandler struct {
	catalog Catalog
}

// NewRatingsHandler creates a new ratings handler.
func NewRatingsHandler(cat Catalog) *RatingsHandler {
	return &RatingsHandler{catalog: cat}
}

// HandleRateCard handles POST /cards/{id}/ratings.
func (h *RatingsHandler) HandleRateCard(w http.ResponseWriter, r *http.Request) {
	const op = "api.rate_card"
	var body rateCardRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if body.UserID == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrInvalidID))
		return
	}
	if body.Rating == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing rating")))
		return
	}

	stats, err := h.catalog.RateCard(r.Context(), *body.UserID, r.PathValue("id"), *body.Rating)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{TotalVotes: stats.TotalVotes, AverageRating: stats.AverageRating})
}

// HandleRateCombination handles POST /ratings/combinations.
func (h *RatingsHandler) HandleRateCombination(w http.ResponseWriter, r *http.Request) {
	const op = "api.rate_combination"
	var body rateCombinationRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if body.UserID == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrInvalidID))
		return
	}
	if body.Rating == nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing rating")))
		return
	}

	err := h.catalog.RateCardCombination(r.Context(), *body.UserID, body.BlackCardID, body.WhiteCardID, *body.Rating, body.Ordinal)
	if err != nil {
		writeCatalogError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
