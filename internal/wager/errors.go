package wager

import (
	"errors"
	"fmt"

	"github.com/carsoncohen10/SlingApp-sub001/internal/store"
)

var (
	// ErrInvalidStake is returned when a stake amount is not positive.
	ErrInvalidStake = errors.New("wager: stake amount must be positive")

	// ErrMarketClosed is returned when a stake is placed on a market that
	// is past its deadline or no longer open.
	ErrMarketClosed = errors.New("wager: market is closed to new stakes")

	// ErrTooLate is returned when a stake cancellation arrives after the
	// market left the open state.
	ErrTooLate = errors.New("wager: market is no longer open")

	// ErrNotFound is returned when the referenced market does not exist.
	ErrNotFound = errors.New("wager: market not found")

	// ErrNotAuthorized is returned when a settlement is requested by
	// anyone other than the market's creator.
	ErrNotAuthorized = errors.New("wager: only the market creator may resolve it")

	// ErrAlreadySettled is returned when a settlement request finds the
	// market already in a terminal state. It is the loser's half of the
	// settlement race and must never be retried.
	ErrAlreadySettled = errors.New("wager: market already resolved")

	// ErrRetryable is returned for transient store failures (contention,
	// timeouts). Callers may retry with backoff; settlement callers must
	// re-read market status first.
	ErrRetryable = errors.New("wager: transient store failure")
)

// storeErr maps store-layer failures onto the engine's error taxonomy.
// Missing documents and settlement conflicts are terminal; everything else
// is transient.
func storeErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, store.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrAlreadySettled, err)
	}
	return fmt.Errorf("%w: %v", ErrRetryable, err)
}
