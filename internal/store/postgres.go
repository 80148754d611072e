package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Options are stored as TEXT[] (order matters), odds as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const marketColumns = `id, community_id, creator_id, options, odds, deadline, status, COALESCE(winner_option, ''), created_at`

func (s *PostgresStore) CreateMarket(ctx context.Context, m *model.Market) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO markets (id, community_id, creator_id, options, odds, deadline, status, winner_option, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`,
		m.ID, m.CommunityID, m.CreatorID, m.Options, m.Odds,
		m.Deadline, m.Status, m.WinnerOption, m.CreatedAt,
	)
	return err
}

func scanMarket(row pgx.Row) (*model.Market, error) {
	var m model.Market
	err := row.Scan(&m.ID, &m.CommunityID, &m.CreatorID, &m.Options, &m.Odds,
		&m.Deadline, &m.Status, &m.WinnerOption, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PostgresStore) GetMarket(ctx context.Context, id string) (*model.Market, error) {
	m, err := scanMarket(s.pool.QueryRow(ctx,
		`SELECT `+marketColumns+` FROM markets WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("market %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get market %s: %w", id, err)
	}
	return m, nil
}

func (s *PostgresStore) ListMarkets(ctx context.Context) ([]model.Market, error) {
	return s.queryMarkets(ctx,
		`SELECT `+marketColumns+` FROM markets ORDER BY created_at DESC`)
}

func (s *PostgresStore) ListMarketsByCommunity(ctx context.Context, communityID string) ([]model.Market, error) {
	return s.queryMarkets(ctx,
		`SELECT `+marketColumns+` FROM markets WHERE community_id = $1 ORDER BY created_at DESC`,
		communityID)
}

func (s *PostgresStore) queryMarkets(ctx context.Context, sql string, args ...any) ([]model.Market, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markets []model.Market
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			return nil, err
		}
		markets = append(markets, *m)
	}
	return markets, rows.Err()
}

func (s *PostgresStore) UpdateMarketOdds(ctx context.Context, id string, odds map[string]string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE markets SET odds = $2 WHERE id = $1`, id, odds)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("market %s: %w", id, ErrNotFound)
	}
	return nil
}

// ApplySettlement writes the market's terminal transition and all resolved
// participations inside one transaction. The status predicate on the UPDATE
// makes the open-guard part of the write itself: when two instances race,
// the loser's UPDATE matches zero rows and the whole transaction rolls back,
// leaving the winner's payouts untouched.
func (s *PostgresStore) ApplySettlement(ctx context.Context, m *model.Market, participations []model.Participation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE markets SET status = $2, winner_option = NULLIF($3, '') WHERE id = $1 AND status = $4`,
		m.ID, m.Status, m.WinnerOption, model.StatusOpen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := tx.QueryRow(ctx, `SELECT status FROM markets WHERE id = $1`, m.ID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("market %s: %w", m.ID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("market %s is %s: %w", m.ID, status, ErrConflict)
	}

	if err := resolveInTx(ctx, tx, participations); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ResolveParticipations(ctx context.Context, participations []model.Participation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := resolveInTx(ctx, tx, participations); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func resolveInTx(ctx context.Context, tx pgx.Tx, participations []model.Participation) error {
	for i := range participations {
		p := &participations[i]
		if _, err := tx.Exec(ctx,
			`UPDATE participations SET is_winner = $2, final_payout = $3 WHERE id = $1`,
			p.ID, p.IsWinner, p.FinalPayout); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) InsertParticipation(ctx context.Context, p *model.Participation) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO participations (id, market_id, community_id, user_id, chosen_option, stake_amount, is_winner, final_payout, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.MarketID, p.CommunityID, p.UserID, p.ChosenOption,
		p.StakeAmount, p.IsWinner, p.FinalPayout, p.CreatedAt,
	)
	return err
}

const participationColumns = `id, market_id, community_id, user_id, chosen_option, stake_amount, is_winner, final_payout, created_at`

func (s *PostgresStore) GetParticipationsByMarket(ctx context.Context, marketID string) ([]model.Participation, error) {
	return s.queryParticipations(ctx,
		`SELECT `+participationColumns+` FROM participations WHERE market_id = $1 ORDER BY created_at`,
		marketID)
}

func (s *PostgresStore) GetParticipationsByUser(ctx context.Context, communityID, userID string) ([]model.Participation, error) {
	return s.queryParticipations(ctx,
		`SELECT `+participationColumns+` FROM participations WHERE community_id = $1 AND user_id = $2 ORDER BY created_at`,
		communityID, userID)
}

func (s *PostgresStore) GetParticipationsByCommunity(ctx context.Context, communityID string) ([]model.Participation, error) {
	return s.queryParticipations(ctx,
		`SELECT `+participationColumns+` FROM participations WHERE community_id = $1 ORDER BY created_at`,
		communityID)
}

func (s *PostgresStore) queryParticipations(ctx context.Context, sql string, args ...any) ([]model.Participation, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.ID, &p.MarketID, &p.CommunityID, &p.UserID, &p.ChosenOption,
			&p.StakeAmount, &p.IsWinner, &p.FinalPayout, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *PostgresStore) DeleteParticipations(ctx context.Context, marketID, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM participations WHERE market_id = $1 AND user_id = $2`,
		marketID, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
