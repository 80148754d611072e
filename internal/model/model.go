// Package model defines the core domain types shared across the wager engine.
// Stakes and payouts are whole points (int64) — the platform currency has no
// fractional unit.
package model

import "time"

// Market statuses. Open is the only non-terminal state; once a market reaches
// Settled, Voided, or Cancelled it never changes again.
const (
	StatusOpen      = "open"
	StatusSettled   = "settled"
	StatusVoided    = "voided"
	StatusCancelled = "cancelled"
)

// Market represents one wager inside a community: an ordered set of outcome
// labels, an American-odds price per outcome, and a staking deadline.
type Market struct {
	ID           string            `json:"id" db:"id"`
	CommunityID  string            `json:"community_id" db:"community_id"`
	CreatorID    string            `json:"creator_id" db:"creator_id"`
	Options      []string          `json:"options" db:"options"`
	Odds         map[string]string `json:"odds" db:"odds"` // option label → American odds, e.g. "-110"
	Deadline     time.Time         `json:"deadline" db:"deadline"`
	Status       string            `json:"status" db:"status"`
	WinnerOption string            `json:"winner_option,omitempty" db:"winner_option"` // set only when settled
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

// IsTerminal reports whether the market has reached a final state.
func (m *Market) IsTerminal() bool {
	return m.Status != StatusOpen
}

// HasOption reports whether label is one of the market's outcomes.
func (m *Market) HasOption(label string) bool {
	for _, o := range m.Options {
		if o == label {
			return true
		}
	}
	return false
}

// Participation is a single escrowed stake against one market outcome.
// It is written once at placement and mutated exactly once at resolution,
// when the settlement engine fills IsWinner and FinalPayout.
type Participation struct {
	ID           string    `json:"id" db:"id"`
	MarketID     string    `json:"market_id" db:"market_id"`
	CommunityID  string    `json:"community_id" db:"community_id"` // denormalized for balance queries
	UserID       string    `json:"user_id" db:"user_id"`
	ChosenOption string    `json:"chosen_option" db:"chosen_option"`
	StakeAmount  int64     `json:"stake_amount" db:"stake_amount"`
	IsWinner     *bool     `json:"is_winner,omitempty" db:"is_winner"`       // nil until settled; stays nil on refund
	FinalPayout  *int64    `json:"final_payout,omitempty" db:"final_payout"` // nil until resolved
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Resolved reports whether the settlement engine has already written a
// payout for this stake. Used as the per-participation idempotency check
// during reconciliation.
func (p *Participation) Resolved() bool {
	return p.FinalPayout != nil
}
