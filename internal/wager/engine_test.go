package wager_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carsoncohen10/SlingApp-sub001/internal/market"
	"github.com/carsoncohen10/SlingApp-sub001/internal/model"
	"github.com/carsoncohen10/SlingApp-sub001/internal/store"
	"github.com/carsoncohen10/SlingApp-sub001/internal/wager"
)

const (
	creator   = "creator"
	community = "community-1"
)

// newEngine creates a wager engine over a fresh in-memory store.
func newEngine(t *testing.T) (*wager.Service, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	return wager.NewService(ms, nil), ms
}

// seedMarket creates an open test market directly in the store.
func seedMarket(t *testing.T, ms *store.MemoryStore, id string, oddsByOption map[string]string, deadline time.Time) *model.Market {
	t.Helper()
	options := make([]string, 0, len(oddsByOption))
	for _, opt := range []string{"Yes", "No", "Maybe"} {
		if _, ok := oddsByOption[opt]; ok {
			options = append(options, opt)
		}
	}
	m := &model.Market{
		ID:          id,
		CommunityID: community,
		CreatorID:   creator,
		Options:     options,
		Odds:        oddsByOption,
		Deadline:    deadline,
		Status:      model.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}
	if err := ms.CreateMarket(context.Background(), m); err != nil {
		t.Fatalf("failed to seed market: %v", err)
	}
	return m
}

func openDeadline() time.Time { return time.Now().Add(time.Hour) }

// --- Staking ---

func TestPlaceStake(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	p, err := eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 50)
	if err != nil {
		t.Fatalf("PlaceStake: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated participation ID")
	}
	if p.CommunityID != community {
		t.Errorf("community not denormalized, got %q", p.CommunityID)
	}
	if p.IsWinner != nil || p.FinalPayout != nil {
		t.Error("new participation must be unresolved")
	}

	stakes, err := ms.GetParticipationsByMarket(context.Background(), "m1")
	if err != nil {
		t.Fatalf("GetParticipationsByMarket: %v", err)
	}
	if len(stakes) != 1 {
		t.Fatalf("expected 1 escrowed stake, got %d", len(stakes))
	}
}

func TestPlaceStake_RepeatedStakesStayIndependent(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	for i := 0; i < 3; i++ {
		if _, err := eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 10); err != nil {
			t.Fatalf("stake %d: %v", i, err)
		}
	}

	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	if len(stakes) != 3 {
		t.Errorf("expected 3 independent participations, got %d", len(stakes))
	}
}

func TestPlaceStake_Rejections(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "open", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	seedMarket(t, ms, "expired", map[string]string{"Yes": "-110", "No": "+120"}, time.Now().Add(-time.Minute))
	settled := seedMarket(t, ms, "settled", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	if _, err := eng.SettleMarket(context.Background(), settled.ID, "Yes", creator); err != nil {
		t.Fatalf("settle: %v", err)
	}

	cases := []struct {
		name     string
		marketID string
		option   string
		stake    int64
		want     error
	}{
		{"zero stake", "open", "Yes", 0, wager.ErrInvalidStake},
		{"negative stake", "open", "Yes", -5, wager.ErrInvalidStake},
		{"unknown option", "open", "Draw", 10, market.ErrUnknownOption},
		{"past deadline", "expired", "Yes", 10, wager.ErrMarketClosed},
		{"settled market", "settled", "Yes", 10, wager.ErrMarketClosed},
		{"missing market", "nope", "Yes", 10, wager.ErrNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := eng.PlaceStake(context.Background(), c.marketID, "u1", c.option, c.stake)
			if !errors.Is(err, c.want) {
				t.Errorf("got %v, want %v", err, c.want)
			}
		})
	}

	// Rejections never leave a partial write behind.
	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "expired")
	if len(stakes) != 0 {
		t.Errorf("rejected stake was persisted: %d records", len(stakes))
	}
}

func TestCancelStake(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 10)
	eng.PlaceStake(context.Background(), "m1", "u1", "No", 20)
	eng.PlaceStake(context.Background(), "m1", "u2", "Yes", 30)

	removed, err := eng.CancelStake(context.Background(), "m1", "u1")
	if err != nil {
		t.Fatalf("CancelStake: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	if len(stakes) != 1 || stakes[0].UserID != "u2" {
		t.Errorf("other users' stakes must survive, got %+v", stakes)
	}
}

func TestCancelStake_TooLate(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 10)

	if _, err := eng.SettleMarket(context.Background(), "m1", "Yes", creator); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := eng.CancelStake(context.Background(), "m1", "u1"); !errors.Is(err, wager.ErrTooLate) {
		t.Errorf("got %v, want ErrTooLate", err)
	}
}

// --- Settlement ---

func TestSettleMarket_Scenario(t *testing.T) {
	// Market with Yes at -110 and No at +120; U1 stakes 50 on Yes, U2 stakes
	// 30 on No; creator settles Yes.
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 50)
	eng.PlaceStake(context.Background(), "m1", "u2", "No", 30)

	m, err := eng.SettleMarket(context.Background(), "m1", "Yes", creator)
	if err != nil {
		t.Fatalf("SettleMarket: %v", err)
	}
	if m.Status != model.StatusSettled || m.WinnerOption != "Yes" {
		t.Fatalf("got status=%s winner=%q", m.Status, m.WinnerOption)
	}

	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	for _, p := range stakes {
		if !p.Resolved() || p.IsWinner == nil {
			t.Fatalf("participation %s not resolved", p.ID)
		}
		switch p.UserID {
		case "u1":
			if !*p.IsWinner || *p.FinalPayout != 95 {
				t.Errorf("u1: winner=%v payout=%d, want true/95", *p.IsWinner, *p.FinalPayout)
			}
		case "u2":
			if *p.IsWinner || *p.FinalPayout != 0 {
				t.Errorf("u2: winner=%v payout=%d, want false/0", *p.IsWinner, *p.FinalPayout)
			}
		}
	}

	u1, _ := eng.NetBalance(context.Background(), community, "u1")
	u2, _ := eng.NetBalance(context.Background(), community, "u2")
	if u1 != 45 {
		t.Errorf("u1 net = %d, want +45", u1)
	}
	if u2 != -30 {
		t.Errorf("u2 net = %d, want -30", u2)
	}
}

func TestSettleMarket_Guards(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	if _, err := eng.SettleMarket(context.Background(), "missing", "Yes", creator); !errors.Is(err, wager.ErrNotFound) {
		t.Errorf("missing market: got %v, want ErrNotFound", err)
	}
	if _, err := eng.SettleMarket(context.Background(), "m1", "Yes", "intruder"); !errors.Is(err, wager.ErrNotAuthorized) {
		t.Errorf("wrong actor: got %v, want ErrNotAuthorized", err)
	}
	if _, err := eng.SettleMarket(context.Background(), "m1", "Draw", creator); !errors.Is(err, market.ErrUnknownOption) {
		t.Errorf("unknown winner: got %v, want ErrUnknownOption", err)
	}

	// Failed settlements must leave the market open.
	m, _ := ms.GetMarket(context.Background(), "m1")
	if m.Status != model.StatusOpen {
		t.Errorf("market mutated by failed settlement: %s", m.Status)
	}

	if _, err := eng.SettleMarket(context.Background(), "m1", "Yes", creator); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if _, err := eng.SettleMarket(context.Background(), "m1", "No", creator); !errors.Is(err, wager.ErrAlreadySettled) {
		t.Errorf("second settle: got %v, want ErrAlreadySettled", err)
	}
}

func TestSettleMarket_AtMostOnce(t *testing.T) {
	// Two concurrent settlements with different winners: exactly one wins,
	// the other observes the terminal state and fails cleanly.
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 50)

	winners := []string{"Yes", "No"}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.SettleMarket(context.Background(), "m1", winners[i], creator)
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	var winnerArg string
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
			winnerArg = winners[i]
		case errors.Is(err, wager.ErrAlreadySettled):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly 1 of each", succeeded, conflicted)
	}

	m, _ := ms.GetMarket(context.Background(), "m1")
	if m.WinnerOption != winnerArg {
		t.Errorf("stored winner %q does not match winning call %q", m.WinnerOption, winnerArg)
	}
}

func TestSettleMarket_AtMostOnceAcrossInstances(t *testing.T) {
	// Two engine instances over one store: each holds its own process-local
	// lock, so the store's settlement guard must break the tie on its own.
	ms := store.NewMemoryStore()
	engines := []*wager.Service{wager.NewService(ms, nil), wager.NewService(ms, nil)}
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	engines[0].PlaceStake(context.Background(), "m1", "u1", "Yes", 50)

	winners := []string{"Yes", "No"}
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engines[i].SettleMarket(context.Background(), "m1", winners[i], creator)
		}(i)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, wager.ErrAlreadySettled):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly 1 of each", succeeded, conflicted)
	}

	// The losing instance's write must not have clobbered the winner's
	// payouts: every stake stays resolved against the stored winner.
	m, _ := ms.GetMarket(context.Background(), "m1")
	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	for _, p := range stakes {
		if !p.Resolved() {
			t.Errorf("stake %s left unresolved after settlement", p.ID)
		}
		if p.IsWinner != nil && *p.IsWinner != (p.ChosenOption == m.WinnerOption) {
			t.Errorf("stake %s winner flag disagrees with stored winner %q", p.ID, m.WinnerOption)
		}
	}
}

func TestSettleMarket_ConcurrentStakeNeverLands(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	var wg sync.WaitGroup
	stakeErrs := make([]error, 20)
	wg.Add(1)
	go func() {
		defer wg.Done()
		eng.SettleMarket(context.Background(), "m1", "Yes", creator)
	}()
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, stakeErrs[i] = eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 10)
		}(i)
	}
	wg.Wait()

	// Every stake either landed before settlement and got resolved, or was
	// rejected; no unresolved stake exists on the settled market.
	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	var accepted int
	for _, err := range stakeErrs {
		if err == nil {
			accepted++
		} else if !errors.Is(err, wager.ErrMarketClosed) {
			t.Errorf("unexpected stake error: %v", err)
		}
	}
	if len(stakes) != accepted {
		t.Errorf("store holds %d stakes but %d were accepted", len(stakes), accepted)
	}
	for _, p := range stakes {
		if !p.Resolved() {
			t.Errorf("stake %s escaped settlement unresolved", p.ID)
		}
	}
}

// --- Refunds ---

func TestVoidMarket_RefundsEveryStake(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 50)
	eng.PlaceStake(context.Background(), "m1", "u2", "No", 30)

	m, err := eng.VoidMarket(context.Background(), "m1", creator)
	if err != nil {
		t.Fatalf("VoidMarket: %v", err)
	}
	if m.Status != model.StatusVoided {
		t.Errorf("got status %s", m.Status)
	}

	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	for _, p := range stakes {
		if p.FinalPayout == nil || *p.FinalPayout != p.StakeAmount {
			t.Errorf("stake %s not refunded: %+v", p.ID, p.FinalPayout)
		}
		if p.IsWinner != nil {
			t.Errorf("refund must not mark a winner, got %v", *p.IsWinner)
		}
	}

	// Refunds net to zero.
	for _, user := range []string{"u1", "u2"} {
		if net, _ := eng.NetBalance(context.Background(), community, user); net != 0 {
			t.Errorf("%s net = %d after void, want 0", user, net)
		}
	}
}

func TestCancelMarket_RefundsEveryStake(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 75)

	m, err := eng.CancelMarket(context.Background(), "m1", creator)
	if err != nil {
		t.Fatalf("CancelMarket: %v", err)
	}
	if m.Status != model.StatusCancelled {
		t.Errorf("got status %s", m.Status)
	}

	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	if len(stakes) != 1 || stakes[0].FinalPayout == nil || *stakes[0].FinalPayout != 75 {
		t.Errorf("cancelled market must refund the stake: %+v", stakes)
	}
	if net, _ := eng.NetBalance(context.Background(), community, "u1"); net != 0 {
		t.Errorf("net = %d after cancel, want 0", net)
	}
}

// --- Balances ---

func TestBalances_FixedOddsAreNotConserved(t *testing.T) {
	// Two 100-point stakes at -110 on each side. Settling Yes pays the
	// winner 190, so the net balances are {a: +90, b: -100}: fixed-odds
	// settlement mints and burns points rather than redistributing a pool.
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "-110"}, openDeadline())
	eng.PlaceStake(context.Background(), "m1", "a", "Yes", 100)
	eng.PlaceStake(context.Background(), "m1", "b", "No", 100)

	if _, err := eng.SettleMarket(context.Background(), "m1", "Yes", creator); err != nil {
		t.Fatalf("settle: %v", err)
	}

	balances, err := eng.MemberBalances(context.Background(), community)
	if err != nil {
		t.Fatalf("MemberBalances: %v", err)
	}
	if balances["a"] != 90 || balances["b"] != -100 {
		t.Errorf("got %v, want {a: +90, b: -100}", balances)
	}
}

func TestMemberBalances_ConsistentWithNetBalance(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	seedMarket(t, ms, "m2", map[string]string{"Yes": "+150", "No": "-200"}, openDeadline())

	eng.PlaceStake(context.Background(), "m1", "a", "Yes", 50)
	eng.PlaceStake(context.Background(), "m1", "b", "No", 30)
	eng.PlaceStake(context.Background(), "m2", "a", "No", 40)
	eng.PlaceStake(context.Background(), "m2", "c", "Yes", 20)

	eng.SettleMarket(context.Background(), "m1", "Yes", creator)
	eng.VoidMarket(context.Background(), "m2", creator)

	balances, err := eng.MemberBalances(context.Background(), community)
	if err != nil {
		t.Fatalf("MemberBalances: %v", err)
	}
	for _, user := range []string{"a", "b", "c"} {
		net, err := eng.NetBalance(context.Background(), community, user)
		if err != nil {
			t.Fatalf("NetBalance(%s): %v", user, err)
		}
		if balances[user] != net {
			t.Errorf("MemberBalances[%s] = %d, NetBalance = %d", user, balances[user], net)
		}
	}
}

// --- Reconciliation ---

func TestReconcileMarket_ResolvesOrphans(t *testing.T) {
	// Simulate a crash that left the market settled but one participation
	// unresolved: the market's terminal state is authoritative and the
	// payout recomputation is deterministic.
	eng, ms := newEngine(t)
	m := seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	payout := int64(95)
	isWinner := true
	resolved := model.Participation{
		ID: "p-resolved", MarketID: "m1", CommunityID: community, UserID: "u1",
		ChosenOption: "Yes", StakeAmount: 50, IsWinner: &isWinner, FinalPayout: &payout,
		CreatedAt: time.Now().UTC(),
	}
	orphan := model.Participation{
		ID: "p-orphan", MarketID: "m1", CommunityID: community, UserID: "u2",
		ChosenOption: "No", StakeAmount: 30, CreatedAt: time.Now().UTC(),
	}
	ms.InsertParticipation(context.Background(), &resolved)
	ms.InsertParticipation(context.Background(), &orphan)

	m.Status = model.StatusSettled
	m.WinnerOption = "Yes"
	if err := ms.ApplySettlement(context.Background(), m, nil); err != nil {
		t.Fatalf("seed terminal market: %v", err)
	}

	n, err := eng.ReconcileMarket(context.Background(), "m1")
	if err != nil {
		t.Fatalf("ReconcileMarket: %v", err)
	}
	if n != 1 {
		t.Errorf("resolved %d participations, want 1 (already-resolved must be skipped)", n)
	}

	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "m1")
	for _, p := range stakes {
		if !p.Resolved() {
			t.Errorf("participation %s still unresolved", p.ID)
		}
		if p.ID == "p-orphan" && *p.FinalPayout != 0 {
			t.Errorf("orphan payout = %d, want 0 for losing stake", *p.FinalPayout)
		}
	}

	// Second pass is a no-op.
	if n, _ := eng.ReconcileMarket(context.Background(), "m1"); n != 0 {
		t.Errorf("second reconcile resolved %d, want 0", n)
	}
}

func TestReconcileAll_SkipsOpenMarkets(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "open", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())
	eng.PlaceStake(context.Background(), "open", "u1", "Yes", 10)

	if err := eng.ReconcileAll(context.Background()); err != nil {
		t.Fatalf("ReconcileAll: %v", err)
	}

	stakes, _ := ms.GetParticipationsByMarket(context.Background(), "open")
	if stakes[0].Resolved() {
		t.Error("reconciliation must not touch stakes on open markets")
	}
}

// --- Creator participation (permitted) ---

func TestCreatorMayStakeOnOwnMarket(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	if _, err := eng.PlaceStake(context.Background(), "m1", creator, "Yes", 50); err != nil {
		t.Fatalf("creator stake: %v", err)
	}
	if _, err := eng.SettleMarket(context.Background(), "m1", "Yes", creator); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if net, _ := eng.NetBalance(context.Background(), community, creator); net != 45 {
		t.Errorf("creator net = %d, want +45", net)
	}
}

// --- Re-pricing ---

func TestRepriceMarket(t *testing.T) {
	eng, ms := newEngine(t)
	seedMarket(t, ms, "m1", map[string]string{"Yes": "-110", "No": "+120"}, openDeadline())

	m, err := eng.RepriceMarket(context.Background(), "m1", creator, map[string]string{"Yes": "-150", "No": "+130"})
	if err != nil {
		t.Fatalf("RepriceMarket: %v", err)
	}
	if m.Odds["Yes"] != "-150" {
		t.Errorf("odds not updated: %v", m.Odds)
	}

	// Odds freeze once any stake exists.
	eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 10)
	if _, err := eng.RepriceMarket(context.Background(), "m1", creator, map[string]string{"Yes": "-110", "No": "+120"}); !errors.Is(err, market.ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition after first stake", err)
	}
}

// --- Store failures ---

// failingStore wraps a Store and fails reads with an injected error,
// standing in for a primary that is timing out.
type failingStore struct {
	store.Store
	err error
}

func (f *failingStore) GetMarket(context.Context, string) (*model.Market, error) {
	return nil, f.err
}

func (f *failingStore) ListMarketsByCommunity(context.Context, string) ([]model.Market, error) {
	return nil, f.err
}

func TestStoreFailureIsRetryable(t *testing.T) {
	fs := &failingStore{Store: store.NewMemoryStore(), err: errors.New("connection reset by peer")}
	eng := wager.NewService(fs, nil)

	if _, err := eng.PlaceStake(context.Background(), "m1", "u1", "Yes", 10); !errors.Is(err, wager.ErrRetryable) {
		t.Errorf("PlaceStake: got %v, want ErrRetryable", err)
	}
	if _, err := eng.SettleMarket(context.Background(), "m1", "Yes", creator); !errors.Is(err, wager.ErrRetryable) {
		t.Errorf("SettleMarket: got %v, want ErrRetryable", err)
	}
	if _, err := eng.NetBalance(context.Background(), community, "u1"); !errors.Is(err, wager.ErrRetryable) {
		t.Errorf("NetBalance: got %v, want ErrRetryable", err)
	}
}
