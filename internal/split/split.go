// Package split implements the shared-expense arithmetic: equal-share
// allocation when an expense is created, and reduction of a group's expense
// history to net pairwise balances.
package split

import (
	"errors"

	"expensex/internal/core"
)

var (
	ErrNoParticipants = errors.New("must have at least one participant")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

// Shares divides amount equally among the given member ids, returning one
// unsettled split per member in input order.
//
// No remainder redistribution is performed: when the amount does not divide
// evenly the fractional residue stays in the shares and is absorbed by the
// balance engine's epsilon tolerance.
func Shares(amount float64, memberIDs []string) ([]core.Split, error) {
	if len(memberIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	share := amount / float64(len(memberIDs))
	splits := make([]core.Split, len(memberIDs))
	for i, id := range memberIDs {
		splits[i] = core.Split{
			UserID:  id,
			Amount:  share,
			Settled: false,
		}
	}
	return splits, nil
}
