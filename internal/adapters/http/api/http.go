// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/cardcatalog/internal/catalog"
	"github.com/okian/cardcatalog/pkg/logger"
)

// Catalog is the card catalog as seen by the handlers.
type Catalog interface {
	ListCards(ctx context.Context, req catalog.CardRequest) (catalog.CardPage, error)
	ListSets(ctx context.Context, req catalog.SetRequest) (catalog.SetPage, error)
	GetSet(ctx context.Context, id string) (catalog.Set, error)
	ListSetCards(ctx context.Context, setID string, req catalog.CardRequest) (catalog.CardPage, error)
	RateCard(ctx context.Context, userID int32, cardID string, rating float64) (catalog.CardStats, error)
	RateCardCombination(ctx context.Context, userID int32, blackID, whiteID string, rating float64, ordinal int) error
	AddCard(ctx context.Context, userID int32, text string, color catalog.Color) (catalog.Card, error)
}

var _ Catalog = (*catalog.Catalog)(nil)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	cardsHandler  *CardsHandler
	setsHandler   *SetsHandler
	ratingHandler *RatingsHandler
	logger        logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(cat Catalog, pinger Pinger, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		healthHandler: NewHealthHandler(pinger),
		statsHandler:  NewStatsHandler(statsProvider),
		cardsHandler:  NewCardsHandler(cat),
		setsHandler:   NewSetsHandler(cat),
		ratingHandler: NewRatingsHandler(cat),
		logger:        log,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	s.handle(mux, "GET /healthz", "healthz", s.healthHandler.HandleHealth)
	s.handle(mux, "GET /stats", "stats", s.statsHandler.HandleStats)
	s.handle(mux, "GET /metrics", "metrics", HandleMetrics)

	s.handle(mux, "GET /cards", "list_cards", s.cardsHandler.HandleListCards)
	s.handle(mux, "POST /cards", "add_card", s.cardsHandler.HandleAddCard)
	s.handle(mux, "POST /cards/{id}/ratings", "rate_card", s.ratingHandler.HandleRateCard)
	s.handle(mux, "POST /ratings/combinations", "rate_combination", s.ratingHandler.HandleRateCombination)

	s.handle(mux, "GET /sets", "list_sets", s.setsHandler.HandleListSets)
	s.handle(mux, "GET /sets/{id}", "get_set", s.setsHandler.HandleGetSet)
	s.handle(mux, "GET /sets/{id}/cards", "list_set_cards", s.setsHandler.HandleListSetCards)
}

func (s *Server) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.Handle(pattern, RequestMiddleware(s.logger, MetricsMiddleware(h, endpoint)))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeCatalogError renders a catalog failure. Only the public message of
// the error reaches the client.
func writeCatalogError(w http.ResponseWriter, err error) {
	kind := catalog.KindOf(err)
	writeJSON(w, statusFor(kind), errorResponse{Code: kind.String(), Message: catalog.PublicMessage(err)})
}

// decodeBody reads a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON body")
	}
	return nil
}
