// Package balance derives net point balances from participation history.
//
// A balance is never stored: it is a fold over a user's participations and
// the markets they reference. A participation contributes
// final_payout − stake_amount once its market is terminal and its payout has
// been written; anything still pending contributes zero. Cancelled markets
// refund the stake, so they contribute zero through the same rule without
// special-casing.
package balance

import "github.com/carsoncohen10/SlingApp-sub001/internal/model"

// Net folds a user's participations into a single net balance.
// The markets map is keyed by market ID and supplies each participation's
// market status; participations referencing a missing or still-open market
// are pending and contribute nothing.
func Net(participations []model.Participation, markets map[string]model.Market) int64 {
	var net int64
	for _, p := range participations {
		net += contribution(p, markets)
	}
	return net
}

// ByMember folds participations for a whole community, grouped by user.
// Uses the same contribution rule as Net, so for every user the grouped
// result equals Net over that user's participations.
func ByMember(participations []model.Participation, markets map[string]model.Market) map[string]int64 {
	balances := make(map[string]int64)
	for _, p := range participations {
		balances[p.UserID] += contribution(p, markets)
	}
	return balances
}

func contribution(p model.Participation, markets map[string]model.Market) int64 {
	m, ok := markets[p.MarketID]
	if !ok || !m.IsTerminal() || !p.Resolved() {
		return 0
	}
	return *p.FinalPayout - p.StakeAmount
}
