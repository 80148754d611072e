// Package wager implements the settlement engine and participation ledger:
// escrowing stakes against market outcomes, resolving markets exactly once,
// refunding voided or cancelled markets, and serving derived point balances.
package wager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carsoncohen10/SlingApp-sub001/internal/balance"
	"github.com/carsoncohen10/SlingApp-sub001/internal/market"
	"github.com/carsoncohen10/SlingApp-sub001/internal/metrics"
	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
	"github.com/carsoncohen10/SlingApp-sub001/internal/odds"
	"github.com/carsoncohen10/SlingApp-sub001/internal/store"
)

// Service is the wager engine. All mutating operations take the market's
// lock so concurrent staking and settlement on the same market serialize;
// balance reads run lock-free against the store.
type Service struct {
	store store.Store
	locks *marketLocks
	hub   *EventHub // optional event broadcast, nil disables
}

// NewService creates a wager engine backed by the given store.
// Pass nil for hub if event broadcasting is not needed.
func NewService(st store.Store, hub *EventHub) *Service {
	return &Service{
		store: st,
		locks: newMarketLocks(),
		hub:   hub,
	}
}

// CreateMarket validates and persists a new open market.
func (s *Service) CreateMarket(ctx context.Context, creatorID, communityID string, options []string, oddsByOption map[string]string, deadline time.Time) (*model.Market, error) {
	m, err := market.New(creatorID, communityID, options, oddsByOption, deadline)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateMarket(ctx, m); err != nil {
		return nil, storeErr(err)
	}

	slog.Info("market created",
		"market", m.ID,
		"community", communityID,
		"creator", creatorID,
		"options", len(options),
	)
	return m, nil
}

// RepriceMarket replaces an open market's odds. Allowed only while no
// participation references the market, since odds freeze at first stake.
func (s *Service) RepriceMarket(ctx context.Context, marketID, actorID string, oddsByOption map[string]string) (*model.Market, error) {
	unlock := s.locks.acquire(marketID)
	defer unlock()

	m, err := s.store.GetMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	if m.CreatorID != actorID {
		return nil, ErrNotAuthorized
	}
	if m.IsTerminal() {
		return nil, fmt.Errorf("%w: status %s", market.ErrInvalidTransition, m.Status)
	}

	// Validate the new odds against the existing option set.
	if len(oddsByOption) != len(m.Options) {
		return nil, fmt.Errorf("%w: odds must cover exactly the option set", market.ErrInvalidMarket)
	}
	for _, opt := range m.Options {
		line, ok := oddsByOption[opt]
		if !ok {
			return nil, fmt.Errorf("%w: missing odds for option %q", market.ErrInvalidMarket, opt)
		}
		if _, err := odds.Parse(line); err != nil {
			return nil, err
		}
	}

	participations, err := s.store.GetParticipationsByMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	if len(participations) > 0 {
		return nil, fmt.Errorf("%w: odds frozen after first stake", market.ErrInvalidTransition)
	}

	if err := s.store.UpdateMarketOdds(ctx, marketID, oddsByOption); err != nil {
		return nil, storeErr(err)
	}
	m.Odds = oddsByOption
	slog.Info("market repriced", "market", marketID)
	return m, nil
}

// GetMarket reads a single market.
func (s *Service) GetMarket(ctx context.Context, marketID string) (*model.Market, error) {
	m, err := s.store.GetMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// ListCommunityMarkets returns a community's markets.
func (s *Service) ListCommunityMarkets(ctx context.Context, communityID string) ([]model.Market, error) {
	markets, err := s.store.ListMarketsByCommunity(ctx, communityID)
	if err != nil {
		return nil, storeErr(err)
	}
	return markets, nil
}

// MarketStakes returns all participations against one market.
func (s *Service) MarketStakes(ctx context.Context, marketID string) ([]model.Participation, error) {
	if _, err := s.store.GetMarket(ctx, marketID); err != nil {
		return nil, storeErr(err)
	}
	participations, err := s.store.GetParticipationsByMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	return participations, nil
}

// PlaceStake escrows a stake against a market outcome. The deadline guard
// and the participation write happen under the market's lock, so a stake
// can never slip in after a concurrent settlement locked the market.
func (s *Service) PlaceStake(ctx context.Context, marketID, userID, chosenOption string, stakeAmount int64) (*model.Participation, error) {
	if stakeAmount <= 0 {
		metrics.StakesRejected.Inc()
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStake, stakeAmount)
	}

	unlock := s.locks.acquire(marketID)
	defer unlock()

	m, err := s.store.GetMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !market.AcceptStake(m, time.Now().UTC()) {
		metrics.StakesRejected.Inc()
		return nil, fmt.Errorf("%w: status %s", ErrMarketClosed, m.Status)
	}
	if !m.HasOption(chosenOption) {
		metrics.StakesRejected.Inc()
		return nil, fmt.Errorf("%w: %q", market.ErrUnknownOption, chosenOption)
	}

	p := &model.Participation{
		ID:           uuid.New().String(),
		MarketID:     m.ID,
		CommunityID:  m.CommunityID,
		UserID:       userID,
		ChosenOption: chosenOption,
		StakeAmount:  stakeAmount,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.InsertParticipation(ctx, p); err != nil {
		return nil, storeErr(err)
	}

	metrics.StakesTotal.Inc()
	slog.Info("stake placed",
		"market", m.ID,
		"user", userID,
		"option", chosenOption,
		"stake", stakeAmount,
	)
	s.broadcast(Event{
		Type:        "stake_placed",
		MarketID:    m.ID,
		CommunityID: m.CommunityID,
		UserID:      userID,
		Option:      chosenOption,
		Stake:       stakeAmount,
	})
	return p, nil
}

// CancelStake removes the caller's own unresolved participations on an
// open market. Returns how many stakes were removed.
func (s *Service) CancelStake(ctx context.Context, marketID, userID string) (int64, error) {
	unlock := s.locks.acquire(marketID)
	defer unlock()

	m, err := s.store.GetMarket(ctx, marketID)
	if err != nil {
		return 0, storeErr(err)
	}
	if m.IsTerminal() {
		return 0, fmt.Errorf("%w: status %s", ErrTooLate, m.Status)
	}

	removed, err := s.store.DeleteParticipations(ctx, marketID, userID)
	if err != nil {
		return 0, storeErr(err)
	}
	if removed > 0 {
		slog.Info("stakes cancelled", "market", marketID, "user", userID, "removed", removed)
		s.broadcast(Event{
			Type:        "stake_cancelled",
			MarketID:    m.ID,
			CommunityID: m.CommunityID,
			UserID:      userID,
		})
	}
	return removed, nil
}

// SettleMarket resolves an open market with a winning outcome, computing
// every participation's payout from the market's fixed odds. The Open-guard
// runs twice: here under the market lock, and again inside the store's
// settlement transaction, so at most one settlement lands even when two
// engine instances share one database. The loser of either race fails with
// ErrAlreadySettled.
func (s *Service) SettleMarket(ctx context.Context, marketID, winnerOption, actorID string) (*model.Market, error) {
	unlock := s.locks.acquire(marketID)
	defer unlock()

	m, err := s.store.GetMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	if m.CreatorID != actorID {
		return nil, ErrNotAuthorized
	}
	if m.IsTerminal() {
		metrics.SettlementConflicts.Inc()
		return nil, fmt.Errorf("%w: status %s", ErrAlreadySettled, m.Status)
	}
	if err := market.Settle(m, winnerOption); err != nil {
		return nil, err
	}

	participations, err := s.store.GetParticipationsByMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	resolved, paidOut, err := resolvePayouts(m, participations, false)
	if err != nil {
		return nil, err
	}
	if err := s.store.ApplySettlement(ctx, m, resolved); err != nil {
		return nil, storeErr(err)
	}

	metrics.ResolutionsTotal.WithLabelValues(m.Status).Inc()
	metrics.PointsPaidOut.Add(float64(paidOut))
	slog.Info("market settled",
		"market", m.ID,
		"winner", winnerOption,
		"stakes", len(resolved),
		"paid_out", paidOut,
	)
	s.broadcast(Event{
		Type:        "market_settled",
		MarketID:    m.ID,
		CommunityID: m.CommunityID,
		Status:      m.Status,
		Winner:      winnerOption,
	})
	return m, nil
}

// VoidMarket resolves an open market without a winner; every stake refunds.
func (s *Service) VoidMarket(ctx context.Context, marketID, actorID string) (*model.Market, error) {
	return s.refundMarket(ctx, marketID, actorID, market.Void)
}

// CancelMarket withdraws an open market before resolution; every stake refunds.
func (s *Service) CancelMarket(ctx context.Context, marketID, actorID string) (*model.Market, error) {
	return s.refundMarket(ctx, marketID, actorID, market.Cancel)
}

// refundMarket is the shared void/cancel path: both end in a terminal state
// with full refund semantics, differing only in the recorded status.
func (s *Service) refundMarket(ctx context.Context, marketID, actorID string, transition func(*model.Market) error) (*model.Market, error) {
	unlock := s.locks.acquire(marketID)
	defer unlock()

	m, err := s.store.GetMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	if m.CreatorID != actorID {
		return nil, ErrNotAuthorized
	}
	if m.IsTerminal() {
		metrics.SettlementConflicts.Inc()
		return nil, fmt.Errorf("%w: status %s", ErrAlreadySettled, m.Status)
	}
	if err := transition(m); err != nil {
		return nil, err
	}

	participations, err := s.store.GetParticipationsByMarket(ctx, marketID)
	if err != nil {
		return nil, storeErr(err)
	}
	resolved, _, err := resolvePayouts(m, participations, false)
	if err != nil {
		return nil, err
	}
	if err := s.store.ApplySettlement(ctx, m, resolved); err != nil {
		return nil, storeErr(err)
	}

	metrics.ResolutionsTotal.WithLabelValues(m.Status).Inc()
	slog.Info("market refunded",
		"market", m.ID,
		"status", m.Status,
		"stakes", len(resolved),
	)
	s.broadcast(Event{
		Type:        "market_refunded",
		MarketID:    m.ID,
		CommunityID: m.CommunityID,
		Status:      m.Status,
	})
	return m, nil
}

// NetBalance derives one user's net point balance within a community by
// folding settled and voided participations. Read-only.
func (s *Service) NetBalance(ctx context.Context, communityID, userID string) (int64, error) {
	metrics.BalanceQueries.WithLabelValues("user").Inc()

	participations, err := s.store.GetParticipationsByUser(ctx, communityID, userID)
	if err != nil {
		return 0, storeErr(err)
	}
	markets, err := s.communityMarketIndex(ctx, communityID)
	if err != nil {
		return 0, err
	}
	return balance.Net(participations, markets), nil
}

// MemberBalances derives every member's net balance within a community,
// using the same fold as NetBalance.
func (s *Service) MemberBalances(ctx context.Context, communityID string) (map[string]int64, error) {
	metrics.BalanceQueries.WithLabelValues("community").Inc()

	participations, err := s.store.GetParticipationsByCommunity(ctx, communityID)
	if err != nil {
		return nil, storeErr(err)
	}
	markets, err := s.communityMarketIndex(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return balance.ByMember(participations, markets), nil
}

func (s *Service) communityMarketIndex(ctx context.Context, communityID string) (map[string]model.Market, error) {
	markets, err := s.store.ListMarketsByCommunity(ctx, communityID)
	if err != nil {
		return nil, storeErr(err)
	}
	index := make(map[string]model.Market, len(markets))
	for _, m := range markets {
		index[m.ID] = m
	}
	return index, nil
}

// ReconcileMarket re-runs payout computation for a terminal market that
// still has unresolved participations (a crash between the market write and
// the participation writes). Recomputation is deterministic and only
// unresolved participations are touched, so the pass is idempotent.
// Returns how many participations were resolved.
func (s *Service) ReconcileMarket(ctx context.Context, marketID string) (int, error) {
	unlock := s.locks.acquire(marketID)
	defer unlock()

	m, err := s.store.GetMarket(ctx, marketID)
	if err != nil {
		return 0, storeErr(err)
	}
	if !m.IsTerminal() {
		return 0, nil
	}

	participations, err := s.store.GetParticipationsByMarket(ctx, marketID)
	if err != nil {
		return 0, storeErr(err)
	}
	resolved, _, err := resolvePayouts(m, participations, true)
	if err != nil {
		return 0, err
	}
	if len(resolved) == 0 {
		return 0, nil
	}
	// The market row is already terminal; only the orphaned payouts are
	// written, so a guarded settlement write would refuse this re-apply.
	if err := s.store.ResolveParticipations(ctx, resolved); err != nil {
		return 0, storeErr(err)
	}

	slog.Warn("reconciled unresolved participations",
		"market", marketID,
		"status", m.Status,
		"resolved", len(resolved),
	)
	return len(resolved), nil
}

// ReconcileAll runs ReconcileMarket over every known market. Called once at
// startup to repair any settlement interrupted by a crash.
func (s *Service) ReconcileAll(ctx context.Context) error {
	markets, err := s.store.ListMarkets(ctx)
	if err != nil {
		return storeErr(err)
	}
	for _, m := range markets {
		if m.Status == model.StatusOpen {
			continue
		}
		if _, err := s.ReconcileMarket(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// resolvePayouts computes the terminal payout for each participation of a
// resolved market. For a settled market the winner's payout comes from the
// market's odds for the winning option and losers pay out zero; voided and
// cancelled markets refund every stake with IsWinner left unset. When
// onlyUnresolved is set, participations that already carry a payout are
// skipped (the reconciliation idempotency check). Returns the mutated
// participations and the total points paid out.
func resolvePayouts(m *model.Market, participations []model.Participation, onlyUnresolved bool) ([]model.Participation, int64, error) {
	var (
		resolved []model.Participation
		paidOut  int64
	)
	for _, p := range participations {
		if onlyUnresolved && p.Resolved() {
			continue
		}

		if m.Status == model.StatusSettled {
			won := p.ChosenOption == m.WinnerOption
			var payout int64
			if won {
				var err error
				payout, err = odds.Payout(p.StakeAmount, m.Odds[m.WinnerOption])
				if err != nil {
					return nil, 0, err
				}
			}
			p.IsWinner = &won
			p.FinalPayout = &payout
		} else {
			refund := p.StakeAmount
			p.IsWinner = nil
			p.FinalPayout = &refund
		}

		paidOut += *p.FinalPayout
		resolved = append(resolved, p)
	}
	return resolved, paidOut, nil
}

func (s *Service) broadcast(e Event) {
	if s.hub != nil {
		s.hub.Broadcast(e)
	}
}
