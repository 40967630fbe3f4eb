package loadtest

import (
	"fmt"
)

// verifyVotes checks that every card gained one vote per distinct new
// rater. It returns the number of cards that received ratings.
func verifyVotes(before, after []card, planned []pair) (int, error) {
	raters := make(map[string]map[int32]struct{})
	for _, p := range planned {
		if raters[p.card] == nil {
			raters[p.card] = make(map[int32]struct{})
		}
		raters[p.card][p.user] = struct{}{}
	}

	prev := make(map[string]int32, len(before))
	for _, c := range before {
		prev[c.ID] = c.TotalVotes
	}
	for _, c := range after {
		want := prev[c.ID] + int32(len(raters[c.ID]))
		if c.TotalVotes != want {
			return 0, fmt.Errorf("%w: card %s has %d votes, want %d", ErrVerification, c.ID, c.TotalVotes, want)
		}
	}
	return len(raters), nil
}

// verifyShuffle checks that a shuffled walk visits every card exactly once.
func verifyShuffle(ordered, shuffled []card) error {
	if len(shuffled) != len(ordered) {
		return fmt.Errorf("%w: shuffled walk returned %d cards, want %d", ErrVerification, len(shuffled), len(ordered))
	}
	seen := make(map[string]bool, len(shuffled))
	for _, c := range shuffled {
		if seen[c.ID] {
			return fmt.Errorf("%w: card %s repeated in shuffled walk", ErrVerification, c.ID)
		}
		seen[c.ID] = true
	}
	for _, c := range ordered {
		if !seen[c.ID] {
			return fmt.Errorf("%w: card %s missing from shuffled walk", ErrVerification, c.ID)
		}
	}
	return nil
}
