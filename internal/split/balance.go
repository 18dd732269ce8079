package split

import (
	"math"
	"sort"

	"expensex/internal/core"
)

// Epsilon is the threshold below which a net pair balance is treated as zero.
// It absorbs the floating-point residue of equal-split division, so it is a
// correctness requirement rather than a convenience.
const Epsilon = 0.01

// Balances reduces a group's shared expenses to the minimal set of net
// directed debts among its members.
//
// Debts are accumulated into a signed pair matrix rather than itemized per
// expense, so opposing debts between the same two people net out into a
// single residual balance. Settled expenses contribute nothing. The per-head
// share is re-derived from the split count, not from the stored split
// amounts, so edited split rows cannot skew the matrix.
//
// Members appearing in expense history but absent from the current member
// list (removed members) still participate; the caller decides how to render
// balances against ids it can no longer resolve.
//
// The function is pure: it never fails and returns an empty slice when there
// is nothing owed. Output order is deterministic.
func Balances(members []core.Member, expenses []core.SharedExpense) []core.Balance {
	// acc[a][b] > 0 means a net-owes b; the mirrored entry carries the
	// opposite sign so the whole matrix always sums to zero.
	acc := make(map[string]map[string]float64, len(members))
	for _, m := range members {
		acc[m.UserID] = make(map[string]float64)
	}
	row := func(id string) map[string]float64 {
		if r, ok := acc[id]; ok {
			return r
		}
		r := make(map[string]float64)
		acc[id] = r
		return r
	}

	for _, exp := range expenses {
		if exp.Settled || len(exp.Splits) == 0 {
			continue
		}
		share := exp.Amount / float64(len(exp.Splits))
		payer := exp.PaidBy
		for _, sp := range exp.Splits {
			if sp.UserID == payer {
				continue
			}
			row(sp.UserID)[payer] += share
			row(payer)[sp.UserID] -= share
		}
	}

	// Walk each unordered pair exactly once.
	ids := make([]string, 0, len(acc))
	for id := range acc {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var balances []core.Balance
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			v := acc[a][b]
			switch {
			case math.Abs(v) <= Epsilon:
				// Netted out (or never owed).
			case v > 0:
				balances = append(balances, core.Balance{UserID: a, OtherUserID: b, Amount: v})
			default:
				balances = append(balances, core.Balance{UserID: b, OtherUserID: a, Amount: math.Abs(v)})
			}
		}
	}
	return balances
}
