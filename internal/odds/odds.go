// Package odds implements American-odds math for fixed-odds wager markets.
//
// An American odds string is a signed integer with nonzero magnitude:
//   - negative odds "-X": staking X points wins 100 points of profit
//   - positive odds "+X": staking 100 points wins X points of profit
//
// Payout computation uses shopspring/decimal for the intermediate ratio —
// never float64 for money — and floors to the nearest whole point, since the
// platform currency has no fractional unit. Implied probability is not money
// and is returned as float64.
package odds

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidOdds is returned when an odds string does not parse as a
	// signed integer with nonzero magnitude.
	ErrInvalidOdds = errors.New("odds: invalid American odds string")

	// ErrNegativeStake is returned when a payout is requested for a
	// negative stake. Stakes are non-negative by contract.
	ErrNegativeStake = errors.New("odds: stake must be non-negative")
)

var hundred = decimal.NewFromInt(100)

// Parse validates an American odds string and returns its signed value.
// Accepts an explicit sign ("-110", "+150"); a bare positive integer
// ("150") is also accepted since the sign is recoverable.
func Parse(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidOdds)
	}
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidOdds, s)
	}
	if v == 0 {
		return 0, fmt.Errorf("%w: %q (magnitude must be nonzero)", ErrInvalidOdds, s)
	}
	return v, nil
}

// ImpliedProbability converts an odds string to its implied win probability
// in (0, 1): negative odds -X ⇒ X/(X+100); positive odds +X ⇒ 100/(X+100).
func ImpliedProbability(s string) (float64, error) {
	v, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		x := float64(-v)
		return x / (x + 100), nil
	}
	return 100 / (float64(v) + 100), nil
}

// Payout returns the total returned to a winning stake (profit plus the
// stake itself), floored to a whole point:
//
//	negative odds -X: stake*(100/X) + stake
//	positive odds +X: stake*(X/100) + stake
//
// A zero stake pays zero.
func Payout(stake int64, s string) (int64, error) {
	if stake < 0 {
		return 0, ErrNegativeStake
	}
	v, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if stake == 0 {
		return 0, nil
	}

	st := decimal.NewFromInt(stake)
	var profit decimal.Decimal
	if v < 0 {
		profit = st.Mul(hundred).Div(decimal.NewFromInt(-v))
	} else {
		profit = st.Mul(decimal.NewFromInt(v)).Div(hundred)
	}
	return profit.Floor().IntPart() + stake, nil
}
