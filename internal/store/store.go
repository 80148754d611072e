// Package store defines the persistence interface for the wager engine.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing).
package store

import (
	"context"
	"errors"

	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
)

var (
	// ErrNotFound is returned when a requested market does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned by ApplySettlement when the market exists but
	// is no longer open. It is how a settlement race between two engine
	// instances sharing one database resolves: the loser's write hits zero
	// rows and must not be retried.
	ErrConflict = errors.New("store: market no longer open")
)

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer. ApplySettlement is the single
// multi-document write and must be atomic per market: the market's terminal
// transition and its participation payouts land together or not at all.
type Store interface {
	// --- Market operations ---

	// CreateMarket persists a new market.
	CreateMarket(ctx context.Context, m *model.Market) error

	// GetMarket retrieves a market by its ID.
	GetMarket(ctx context.Context, id string) (*model.Market, error)

	// ListMarkets returns all markets.
	ListMarkets(ctx context.Context) ([]model.Market, error)

	// ListMarketsByCommunity returns all markets owned by a community.
	ListMarketsByCommunity(ctx context.Context, communityID string) ([]model.Market, error)

	// UpdateMarketOdds re-prices an open market. Callers must ensure no
	// participation references the market yet.
	UpdateMarketOdds(ctx context.Context, id string, odds map[string]string) error

	// ApplySettlement atomically persists a market's terminal transition
	// together with the resolved participations. The transition is guarded:
	// it applies only if the stored market is still open, and returns
	// ErrConflict otherwise. The guard lives in the store, not the engine,
	// so it holds even across process boundaries.
	ApplySettlement(ctx context.Context, m *model.Market, participations []model.Participation) error

	// ResolveParticipations writes payouts for participations whose market
	// is already terminal. Used by crash-recovery reconciliation, which
	// legitimately re-applies payouts without touching the market row.
	ResolveParticipations(ctx context.Context, participations []model.Participation) error

	// --- Participation operations ---

	// InsertParticipation escrows a new stake.
	InsertParticipation(ctx context.Context, p *model.Participation) error

	// GetParticipationsByMarket returns all stakes against one market.
	GetParticipationsByMarket(ctx context.Context, marketID string) ([]model.Participation, error)

	// GetParticipationsByUser returns one user's stakes within a community.
	GetParticipationsByUser(ctx context.Context, communityID, userID string) ([]model.Participation, error)

	// GetParticipationsByCommunity returns every stake within a community.
	GetParticipationsByCommunity(ctx context.Context, communityID string) ([]model.Participation, error)

	// DeleteParticipations removes a user's stakes on one market and
	// returns how many were removed.
	DeleteParticipations(ctx context.Context, marketID, userID string) (int64, error)
}
