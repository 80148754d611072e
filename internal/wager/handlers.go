package wager

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carsoncohen10/SlingApp-sub001/internal/market"
	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
	"github.com/carsoncohen10/SlingApp-sub001/internal/odds"
)

// --- Request/Response types ---

// CreateMarketRequest is the JSON body for POST /api/v1/markets.
type CreateMarketRequest struct {
	CreatorID   string            `json:"creator_id"`
	CommunityID string            `json:"community_id"`
	Options     []string          `json:"options"`
	Odds        map[string]string `json:"odds"`
	Deadline    time.Time         `json:"deadline"`
}

// RepriceMarketRequest is the JSON body for PUT /api/v1/markets/{id}/odds.
type RepriceMarketRequest struct {
	ActorID string            `json:"actor_id"`
	Odds    map[string]string `json:"odds"`
}

// PlaceStakeRequest is the JSON body for POST /api/v1/stakes.
type PlaceStakeRequest struct {
	MarketID     string `json:"market_id"`
	UserID       string `json:"user_id"`
	ChosenOption string `json:"chosen_option"`
	StakeAmount  int64  `json:"stake_amount"`
}

// ResolveRequest is the JSON body for settle/void/cancel endpoints.
type ResolveRequest struct {
	ActorID      string `json:"actor_id"`
	WinnerOption string `json:"winner_option,omitempty"` // settle only
}

// CancelStakeResponse reports how many stakes were removed.
type CancelStakeResponse struct {
	Removed int64 `json:"removed"`
}

// BalanceResponse is a single user's derived balance.
type BalanceResponse struct {
	CommunityID string `json:"community_id"`
	UserID      string `json:"user_id"`
	Net         int64  `json:"net"`
}

// --- HTTP Handlers ---

// HandleCreateMarket handles POST /api/v1/markets.
func (s *Service) HandleCreateMarket(w http.ResponseWriter, r *http.Request) {
	var req CreateMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := s.CreateMarket(r.Context(), req.CreatorID, req.CommunityID, req.Options, req.Odds, req.Deadline)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleGetMarket handles GET /api/v1/markets/{marketID}.
func (s *Service) HandleGetMarket(w http.ResponseWriter, r *http.Request) {
	m, err := s.GetMarket(r.Context(), chi.URLParam(r, "marketID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleListMarkets handles GET /api/v1/markets?community=<id>.
func (s *Service) HandleListMarkets(w http.ResponseWriter, r *http.Request) {
	communityID := r.URL.Query().Get("community")
	if communityID == "" {
		writeError(w, "community query parameter is required", http.StatusBadRequest)
		return
	}

	markets, err := s.ListCommunityMarkets(r.Context(), communityID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if markets == nil {
		markets = []model.Market{}
	}
	writeJSON(w, http.StatusOK, markets)
}

// HandleMarketStakes handles GET /api/v1/markets/{marketID}/stakes.
func (s *Service) HandleMarketStakes(w http.ResponseWriter, r *http.Request) {
	participations, err := s.MarketStakes(r.Context(), chi.URLParam(r, "marketID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if participations == nil {
		participations = []model.Participation{}
	}
	writeJSON(w, http.StatusOK, participations)
}

// HandleRepriceMarket handles PUT /api/v1/markets/{marketID}/odds.
func (s *Service) HandleRepriceMarket(w http.ResponseWriter, r *http.Request) {
	var req RepriceMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := s.RepriceMarket(r.Context(), chi.URLParam(r, "marketID"), req.ActorID, req.Odds)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandlePlaceStake handles POST /api/v1/stakes.
func (s *Service) HandlePlaceStake(w http.ResponseWriter, r *http.Request) {
	var req PlaceStakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		writeError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	p, err := s.PlaceStake(r.Context(), req.MarketID, req.UserID, req.ChosenOption, req.StakeAmount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleCancelStake handles DELETE /api/v1/markets/{marketID}/stakes/{userID}.
func (s *Service) HandleCancelStake(w http.ResponseWriter, r *http.Request) {
	removed, err := s.CancelStake(r.Context(), chi.URLParam(r, "marketID"), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CancelStakeResponse{Removed: removed})
}

// HandleSettleMarket handles POST /api/v1/markets/{marketID}/settle.
func (s *Service) HandleSettleMarket(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := s.SettleMarket(r.Context(), chi.URLParam(r, "marketID"), req.WinnerOption, req.ActorID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleVoidMarket handles POST /api/v1/markets/{marketID}/void.
func (s *Service) HandleVoidMarket(w http.ResponseWriter, r *http.Request) {
	s.handleRefund(w, r, s.VoidMarket)
}

// HandleCancelMarket handles POST /api/v1/markets/{marketID}/cancel.
func (s *Service) HandleCancelMarket(w http.ResponseWriter, r *http.Request) {
	s.handleRefund(w, r, s.CancelMarket)
}

func (s *Service) handleRefund(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, marketID, actorID string) (*model.Market, error)) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := op(r.Context(), chi.URLParam(r, "marketID"), req.ActorID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleNetBalance handles GET /api/v1/communities/{communityID}/balances/{userID}.
func (s *Service) HandleNetBalance(w http.ResponseWriter, r *http.Request) {
	communityID := chi.URLParam(r, "communityID")
	userID := chi.URLParam(r, "userID")

	net, err := s.NetBalance(r.Context(), communityID, userID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{CommunityID: communityID, UserID: userID, Net: net})
}

// HandleMemberBalances handles GET /api/v1/communities/{communityID}/balances.
func (s *Service) HandleMemberBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.MemberBalances(r.Context(), chi.URLParam(r, "communityID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

// --- Error mapping ---

// writeEngineError maps the engine's error taxonomy onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrInvalidMarket),
		errors.Is(err, market.ErrUnknownOption),
		errors.Is(err, odds.ErrInvalidOdds),
		errors.Is(err, ErrInvalidStake):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotAuthorized):
		writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrMarketClosed),
		errors.Is(err, ErrTooLate),
		errors.Is(err, ErrAlreadySettled),
		errors.Is(err, market.ErrInvalidTransition):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrRetryable):
		writeError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		writeError(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
