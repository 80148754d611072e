// Package market implements the wager market lifecycle: creation with odds
// validation, the staking guard, and the terminal transitions Settled,
// Voided, and Cancelled.
package market

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
	"github.com/carsoncohen10/SlingApp-sub001/internal/odds"
)

var (
	// ErrInvalidMarket is returned when market creation parameters are
	// malformed: fewer than two options, duplicate options, or an odds map
	// that does not cover exactly the option set.
	ErrInvalidMarket = errors.New("market: invalid market definition")

	// ErrInvalidTransition is returned when a terminal transition is
	// requested on a market that is not open.
	ErrInvalidTransition = errors.New("market: market is not open")

	// ErrUnknownOption is returned when a referenced outcome label is not
	// part of the market's option set.
	ErrUnknownOption = errors.New("market: unknown option")
)

// New validates creation parameters and returns an Open market.
// Every option must carry exactly one parseable American-odds entry.
func New(creatorID, communityID string, options []string, oddsByOption map[string]string, deadline time.Time) (*model.Market, error) {
	if creatorID == "" || communityID == "" {
		return nil, fmt.Errorf("%w: creator and community are required", ErrInvalidMarket)
	}
	if len(options) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 options, got %d", ErrInvalidMarket, len(options))
	}
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		if opt == "" {
			return nil, fmt.Errorf("%w: empty option label", ErrInvalidMarket)
		}
		if seen[opt] {
			return nil, fmt.Errorf("%w: duplicate option %q", ErrInvalidMarket, opt)
		}
		seen[opt] = true
	}
	if len(oddsByOption) != len(options) {
		return nil, fmt.Errorf("%w: odds must cover exactly the option set", ErrInvalidMarket)
	}
	for _, opt := range options {
		line, ok := oddsByOption[opt]
		if !ok {
			return nil, fmt.Errorf("%w: missing odds for option %q", ErrInvalidMarket, opt)
		}
		if _, err := odds.Parse(line); err != nil {
			return nil, err
		}
	}

	opts := make([]string, len(options))
	copy(opts, options)
	lines := make(map[string]string, len(oddsByOption))
	for k, v := range oddsByOption {
		lines[k] = v
	}

	return &model.Market{
		ID:          uuid.New().String(),
		CommunityID: communityID,
		CreatorID:   creatorID,
		Options:     opts,
		Odds:        lines,
		Deadline:    deadline,
		Status:      model.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// AcceptStake reports whether a new stake may be placed at instant now.
// Pure guard: the caller composes it with the participation write inside
// the market's atomic unit.
func AcceptStake(m *model.Market, now time.Time) bool {
	return m.Status == model.StatusOpen && now.Before(m.Deadline)
}

// Settle transitions an open market to Settled with the given winner.
func Settle(m *model.Market, winnerOption string) error {
	if m.Status != model.StatusOpen {
		return fmt.Errorf("%w: status %s", ErrInvalidTransition, m.Status)
	}
	if !m.HasOption(winnerOption) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, winnerOption)
	}
	m.Status = model.StatusSettled
	m.WinnerOption = winnerOption
	return nil
}

// Void transitions an open market to Voided (resolved without a winner).
func Void(m *model.Market) error {
	if m.Status != model.StatusOpen {
		return fmt.Errorf("%w: status %s", ErrInvalidTransition, m.Status)
	}
	m.Status = model.StatusVoided
	return nil
}

// Cancel transitions an open market to Cancelled (withdrawn by its creator).
func Cancel(m *model.Market) error {
	if m.Status != model.StatusOpen {
		return fmt.Errorf("%w: status %s", ErrInvalidTransition, m.Status)
	}
	m.Status = model.StatusCancelled
	return nil
}
