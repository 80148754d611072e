package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
)

// MemoryStore implements Store with in-memory maps. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu             sync.RWMutex
	markets        map[string]*model.Market
	participations map[string]*model.Participation
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		markets:        make(map[string]*model.Market),
		participations: make(map[string]*model.Participation),
	}
}

func (s *MemoryStore) CreateMarket(_ context.Context, m *model.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.markets[m.ID]; exists {
		return fmt.Errorf("market %s already exists", m.ID)
	}
	s.markets[m.ID] = cloneMarket(m)
	return nil
}

func (s *MemoryStore) GetMarket(_ context.Context, id string) (*model.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.markets[id]
	if !ok {
		return nil, fmt.Errorf("market %s: %w", id, ErrNotFound)
	}
	return cloneMarket(m), nil
}

func (s *MemoryStore) ListMarkets(_ context.Context) ([]model.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	markets := make([]model.Market, 0, len(s.markets))
	for _, m := range s.markets {
		markets = append(markets, *cloneMarket(m))
	}
	return markets, nil
}

func (s *MemoryStore) ListMarketsByCommunity(_ context.Context, communityID string) ([]model.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var markets []model.Market
	for _, m := range s.markets {
		if m.CommunityID == communityID {
			markets = append(markets, *cloneMarket(m))
		}
	}
	return markets, nil
}

func (s *MemoryStore) UpdateMarketOdds(_ context.Context, id string, odds map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.markets[id]
	if !ok {
		return fmt.Errorf("market %s: %w", id, ErrNotFound)
	}
	lines := make(map[string]string, len(odds))
	for k, v := range odds {
		lines[k] = v
	}
	m.Odds = lines
	return nil
}

// ApplySettlement replaces the market and its resolved participations under
// a single lock, mirroring the transactional write of the Postgres store.
// The transition only applies while the stored market is still open.
func (s *MemoryStore) ApplySettlement(_ context.Context, m *model.Market, participations []model.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.markets[m.ID]
	if !ok {
		return fmt.Errorf("market %s: %w", m.ID, ErrNotFound)
	}
	if current.Status != model.StatusOpen {
		return fmt.Errorf("market %s is %s: %w", m.ID, current.Status, ErrConflict)
	}
	s.markets[m.ID] = cloneMarket(m)
	for i := range participations {
		p := participations[i]
		s.participations[p.ID] = cloneParticipation(&p)
	}
	return nil
}

func (s *MemoryStore) ResolveParticipations(_ context.Context, participations []model.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range participations {
		p := participations[i]
		if _, ok := s.participations[p.ID]; !ok {
			return fmt.Errorf("participation %s: %w", p.ID, ErrNotFound)
		}
		s.participations[p.ID] = cloneParticipation(&p)
	}
	return nil
}

func (s *MemoryStore) InsertParticipation(_ context.Context, p *model.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.participations[p.ID]; exists {
		return fmt.Errorf("participation %s already exists", p.ID)
	}
	s.participations[p.ID] = cloneParticipation(p)
	return nil
}

func (s *MemoryStore) GetParticipationsByMarket(_ context.Context, marketID string) ([]model.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Participation
	for _, p := range s.participations {
		if p.MarketID == marketID {
			result = append(result, *cloneParticipation(p))
		}
	}
	return result, nil
}

func (s *MemoryStore) GetParticipationsByUser(_ context.Context, communityID, userID string) ([]model.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Participation
	for _, p := range s.participations {
		if p.CommunityID == communityID && p.UserID == userID {
			result = append(result, *cloneParticipation(p))
		}
	}
	return result, nil
}

func (s *MemoryStore) GetParticipationsByCommunity(_ context.Context, communityID string) ([]model.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Participation
	for _, p := range s.participations {
		if p.CommunityID == communityID {
			result = append(result, *cloneParticipation(p))
		}
	}
	return result, nil
}

func (s *MemoryStore) DeleteParticipations(_ context.Context, marketID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, p := range s.participations {
		if p.MarketID == marketID && p.UserID == userID {
			delete(s.participations, id)
			removed++
		}
	}
	return removed, nil
}

// cloneMarket copies a market deeply so callers cannot mutate stored state.
func cloneMarket(m *model.Market) *model.Market {
	out := *m
	out.Options = make([]string, len(m.Options))
	copy(out.Options, m.Options)
	out.Odds = make(map[string]string, len(m.Odds))
	for k, v := range m.Odds {
		out.Odds[k] = v
	}
	return &out
}

// cloneParticipation copies a participation including its resolution fields.
func cloneParticipation(p *model.Participation) *model.Participation {
	out := *p
	if p.IsWinner != nil {
		v := *p.IsWinner
		out.IsWinner = &v
	}
	if p.FinalPayout != nil {
		v := *p.FinalPayout
		out.FinalPayout = &v
	}
	return &out
}
