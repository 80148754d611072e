package odds_test

import (
	"errors"
	"math"
	"testing"

	"github.com/carsoncohen10/SlingApp-sub001/internal/odds"
)

func TestParse_Valid(t *testing.T) {
	cases := map[string]int64{
		"-110":   -110,
		"+150":   150,
		"-500":   -500,
		"+100":   100,
		"150":    150,
		" -110 ": -110,
	}
	for in, want := range cases {
		got, err := odds.Parse(in)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("Parse(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "0", "+0", "-0", "abc", "-1.5", "+1e3", "--110"} {
		if _, err := odds.Parse(in); !errors.Is(err, odds.ErrInvalidOdds) {
			t.Errorf("Parse(%q) = %v, want ErrInvalidOdds", in, err)
		}
	}
}

func TestImpliedProbability(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"-110", 110.0 / 210.0},
		{"+150", 100.0 / 250.0},
		{"-500", 500.0 / 600.0},
		{"+100", 0.5},
	}
	for _, c := range cases {
		got, err := odds.ImpliedProbability(c.in)
		if err != nil {
			t.Fatalf("ImpliedProbability(%q) error: %v", c.in, err)
		}
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("ImpliedProbability(%q) = %v, want %v", c.in, got, c.want)
		}
		if got <= 0 || got >= 1 {
			t.Errorf("ImpliedProbability(%q) = %v, outside (0,1)", c.in, got)
		}
	}
}

func TestPayout(t *testing.T) {
	cases := []struct {
		stake int64
		in    string
		want  int64
	}{
		{100, "-110", 190}, // 100*100/110 = 90.9 → 90 profit
		{100, "+150", 250},
		{100, "-500", 120},
		{100, "+100", 200},
		{50, "-110", 95}, // 50*100/110 = 45.45 → 45 profit
		{30, "+120", 66},
		{0, "-110", 0},
		{7, "+333", 30}, // 7*333/100 = 23.31 → 23 profit
	}
	for _, c := range cases {
		got, err := odds.Payout(c.stake, c.in)
		if err != nil {
			t.Fatalf("Payout(%d, %q) error: %v", c.stake, c.in, err)
		}
		if got != c.want {
			t.Errorf("Payout(%d, %q) = %d, want %d", c.stake, c.in, got, c.want)
		}
	}
}

func TestPayout_NegativeStake(t *testing.T) {
	if _, err := odds.Payout(-1, "-110"); !errors.Is(err, odds.ErrNegativeStake) {
		t.Errorf("expected ErrNegativeStake, got %v", err)
	}
}

func TestPayout_InvalidOdds(t *testing.T) {
	if _, err := odds.Payout(100, "even"); !errors.Is(err, odds.ErrInvalidOdds) {
		t.Errorf("expected ErrInvalidOdds, got %v", err)
	}
}
