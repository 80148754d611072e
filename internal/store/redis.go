package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
)

// invalidationGrace caps how long stale cache entries survive a failed
// invalidation. Far below the read-through TTL, so a settled market cannot
// keep serving as open.
const invalidationGrace = time.Second

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and invalidate the cache; reads
// check Redis first then fall back to the primary. Balance queries bypass
// the cache entirely: they are derived reads and tolerate staleness only
// across markets, not within one.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through (write to primary, invalidate cache) ---

func (s *CachedStore) CreateMarket(ctx context.Context, m *model.Market) error {
	if err := s.primary.CreateMarket(ctx, m); err != nil {
		return err
	}
	s.cacheMarket(ctx, m, s.ttl)
	return nil
}

func (s *CachedStore) UpdateMarketOdds(ctx context.Context, id string, odds map[string]string) error {
	if err := s.primary.UpdateMarketOdds(ctx, id, odds); err != nil {
		return err
	}
	// Invalidate; next read re-populates.
	s.invalidate(ctx, marketKey(id))
	return nil
}

func (s *CachedStore) ApplySettlement(ctx context.Context, m *model.Market, participations []model.Participation) error {
	if err := s.primary.ApplySettlement(ctx, m, participations); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, marketKey(m.ID), stakesKey(m.ID)).Err(); err != nil {
		slog.Warn("cache invalidation failed after settlement", "market", m.ID, "err", err)
		// Overwrite with the terminal state so a cached open market cannot
		// keep accepting stakes, and clamp the stakes entry.
		s.cacheMarket(ctx, m, invalidationGrace)
		s.rdb.Expire(ctx, stakesKey(m.ID), invalidationGrace)
	}
	return nil
}

func (s *CachedStore) ResolveParticipations(ctx context.Context, participations []model.Participation) error {
	if err := s.primary.ResolveParticipations(ctx, participations); err != nil {
		return err
	}
	seen := make(map[string]bool)
	for _, p := range participations {
		if !seen[p.MarketID] {
			seen[p.MarketID] = true
			s.invalidate(ctx, stakesKey(p.MarketID))
		}
	}
	return nil
}

func (s *CachedStore) InsertParticipation(ctx context.Context, p *model.Participation) error {
	if err := s.primary.InsertParticipation(ctx, p); err != nil {
		return err
	}
	s.invalidate(ctx, stakesKey(p.MarketID))
	return nil
}

func (s *CachedStore) DeleteParticipations(ctx context.Context, marketID, userID string) (int64, error) {
	n, err := s.primary.DeleteParticipations(ctx, marketID, userID)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, stakesKey(marketID))
	return n, nil
}

// --- Read-through (check cache first) ---

func (s *CachedStore) GetMarket(ctx context.Context, id string) (*model.Market, error) {
	data, err := s.rdb.Get(ctx, marketKey(id)).Bytes()
	if err == nil {
		var m model.Market
		if json.Unmarshal(data, &m) == nil {
			return &m, nil
		}
	}

	// Cache miss: read from primary.
	m, err := s.primary.GetMarket(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheMarket(ctx, m, s.ttl)
	return m, nil
}

func (s *CachedStore) GetParticipationsByMarket(ctx context.Context, marketID string) ([]model.Participation, error) {
	data, err := s.rdb.Get(ctx, stakesKey(marketID)).Bytes()
	if err == nil {
		var participations []model.Participation
		if json.Unmarshal(data, &participations) == nil {
			return participations, nil
		}
	}

	// Cache miss.
	participations, err := s.primary.GetParticipationsByMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(participations); err == nil {
		s.rdb.Set(ctx, stakesKey(marketID), data, s.ttl)
	}
	return participations, nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListMarkets(ctx context.Context) ([]model.Market, error) {
	return s.primary.ListMarkets(ctx)
}

func (s *CachedStore) ListMarketsByCommunity(ctx context.Context, communityID string) ([]model.Market, error) {
	return s.primary.ListMarketsByCommunity(ctx, communityID)
}

func (s *CachedStore) GetParticipationsByUser(ctx context.Context, communityID, userID string) ([]model.Participation, error) {
	return s.primary.GetParticipationsByUser(ctx, communityID, userID)
}

func (s *CachedStore) GetParticipationsByCommunity(ctx context.Context, communityID string) ([]model.Participation, error) {
	return s.primary.GetParticipationsByCommunity(ctx, communityID)
}

// --- Cache helpers ---

func (s *CachedStore) cacheMarket(ctx context.Context, m *model.Market, ttl time.Duration) {
	if data, err := json.Marshal(m); err == nil {
		s.rdb.Set(ctx, marketKey(m.ID), data, ttl)
	}
}

// invalidate deletes cache keys after a primary write. A failed delete must
// not let stale entries outlive the write, so on error the keys are clamped
// to a short TTL instead.
func (s *CachedStore) invalidate(ctx context.Context, keys ...string) {
	err := s.rdb.Del(ctx, keys...).Err()
	if err == nil {
		return
	}
	slog.Warn("cache invalidation failed", "keys", keys, "err", err)
	for _, k := range keys {
		s.rdb.Expire(ctx, k, invalidationGrace)
	}
}

func marketKey(id string) string { return fmt.Sprintf("market:%s", id) }
func stakesKey(id string) string { return fmt.Sprintf("stakes:%s", id) }
