package split

import (
	"math"
	"testing"

	"expensex/internal/core"
)

func members(ids ...string) []core.Member {
	out := make([]core.Member, len(ids))
	for i, id := range ids {
		out[i] = core.Member{UserID: id, DisplayName: id}
	}
	return out
}

func sharedExpense(amount float64, paidBy string, participants ...string) core.SharedExpense {
	splits, _ := Shares(amount, participants)
	return core.SharedExpense{
		Amount: amount,
		PaidBy: paidBy,
		Splits: splits,
	}
}

func settled(e core.SharedExpense) core.SharedExpense {
	e.Settled = true
	for i := range e.Splits {
		e.Splits[i].Settled = true
	}
	return e
}

func findBalance(t *testing.T, balances []core.Balance, debtor, creditor string) core.Balance {
	t.Helper()
	for _, b := range balances {
		if b.UserID == debtor && b.OtherUserID == creditor {
			return b
		}
	}
	t.Fatalf("no balance %s -> %s in %v", debtor, creditor, balances)
	return core.Balance{}
}

func TestBalancesSimpleSplit(t *testing.T) {
	// Two members, one 100 expense paid by alice and split equally:
	// bob owes alice half.
	grp := members("alice", "bob")
	exps := []core.SharedExpense{sharedExpense(100, "alice", "alice", "bob")}

	balances := Balances(grp, exps)

	if len(balances) != 1 {
		t.Fatalf("got %d balances, want 1: %v", len(balances), balances)
	}
	b := findBalance(t, balances, "bob", "alice")
	if math.Abs(b.Amount-50) > Epsilon {
		t.Errorf("bob owes alice %v, want 50", b.Amount)
	}
}

func TestBalancesNetting(t *testing.T) {
	// Same pair, opposing expenses: bob owes 50 for the first, alice owes 20
	// for the second. The engine must emit a single residual debt computed by
	// the accumulator rule, never one balance per expense.
	grp := members("alice", "bob")
	exps := []core.SharedExpense{
		sharedExpense(100, "alice", "alice", "bob"),
		sharedExpense(40, "bob", "alice", "bob"),
	}

	balances := Balances(grp, exps)

	if len(balances) != 1 {
		t.Fatalf("got %d balances, want 1: %v", len(balances), balances)
	}
	b := findBalance(t, balances, "bob", "alice")
	if math.Abs(b.Amount-30) > Epsilon {
		t.Errorf("bob owes alice %v, want 30", b.Amount)
	}
}

func TestBalancesPerfectNetCancels(t *testing.T) {
	grp := members("alice", "bob")
	exps := []core.SharedExpense{
		sharedExpense(60, "alice", "alice", "bob"),
		sharedExpense(60, "bob", "alice", "bob"),
	}

	if balances := Balances(grp, exps); len(balances) != 0 {
		t.Errorf("expected no balances after perfect netting, got %v", balances)
	}
}

func TestBalancesThreeWayGroup(t *testing.T) {
	// 90 split three ways, paid by alice: the other two each owe her 30 and
	// owe each other nothing.
	grp := members("alice", "bob", "carol")
	exps := []core.SharedExpense{sharedExpense(90, "alice", "alice", "bob", "carol")}

	balances := Balances(grp, exps)

	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2: %v", len(balances), balances)
	}
	for _, debtor := range []string{"bob", "carol"} {
		b := findBalance(t, balances, debtor, "alice")
		if math.Abs(b.Amount-30) > Epsilon {
			t.Errorf("%s owes alice %v, want 30", debtor, b.Amount)
		}
	}
}

func TestBalancesSettledExcluded(t *testing.T) {
	grp := members("alice", "bob")
	exps := []core.SharedExpense{
		settled(sharedExpense(100, "alice", "alice", "bob")),
		settled(sharedExpense(40, "bob", "alice", "bob")),
	}

	if balances := Balances(grp, exps); len(balances) != 0 {
		t.Errorf("settled expenses must not produce balances, got %v", balances)
	}
}

func TestBalancesEmptyInputs(t *testing.T) {
	if balances := Balances(members("alice", "bob"), nil); len(balances) != 0 {
		t.Errorf("no expenses must mean no balances, got %v", balances)
	}
	if balances := Balances(nil, nil); len(balances) != 0 {
		t.Errorf("empty group must mean no balances, got %v", balances)
	}
}

func TestBalancesRemovedMemberStillParticipates(t *testing.T) {
	// dave paid and then left the group. His claim survives in the expense
	// history and must still be reported.
	grp := members("alice", "bob")
	exps := []core.SharedExpense{sharedExpense(90, "dave", "dave", "alice", "bob")}

	balances := Balances(grp, exps)

	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2: %v", len(balances), balances)
	}
	for _, debtor := range []string{"alice", "bob"} {
		b := findBalance(t, balances, debtor, "dave")
		if math.Abs(b.Amount-30) > Epsilon {
			t.Errorf("%s owes dave %v, want 30", debtor, b.Amount)
		}
	}
}

func TestBalancesUnevenSplitWithinEpsilon(t *testing.T) {
	// 100/3 leaves a floating residue. Each non-payer owes a third; the
	// residue never surfaces as a spurious extra balance.
	grp := members("alice", "bob", "carol")
	exps := []core.SharedExpense{sharedExpense(100, "alice", "alice", "bob", "carol")}

	balances := Balances(grp, exps)

	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2: %v", len(balances), balances)
	}
	for _, debtor := range []string{"bob", "carol"} {
		b := findBalance(t, balances, debtor, "alice")
		if math.Abs(b.Amount-100.0/3) > Epsilon {
			t.Errorf("%s owes alice %v, want %v", debtor, b.Amount, 100.0/3)
		}
	}
}

func TestBalancesInvariants(t *testing.T) {
	// A messier history to exercise the structural guarantees: no self-debt,
	// at most one direction per pair, and the emitted balances must agree
	// with per-member net positions derived independently (every debit has a
	// matching credit, so the net positions sum to zero).
	grp := members("alice", "bob", "carol", "dave")
	exps := []core.SharedExpense{
		sharedExpense(120, "alice", "alice", "bob", "carol", "dave"),
		sharedExpense(45, "bob", "alice", "bob", "carol"),
		sharedExpense(80, "carol", "carol", "dave"),
		settled(sharedExpense(500, "dave", "alice", "bob", "carol", "dave")),
		sharedExpense(33.33, "dave", "alice", "dave"),
	}

	balances := Balances(grp, exps)

	seenPair := make(map[[2]string]bool)
	for _, b := range balances {
		if b.UserID == b.OtherUserID {
			t.Errorf("self-debt emitted: %v", b)
		}
		if b.Amount <= 0 {
			t.Errorf("non-positive balance emitted: %v", b)
		}
		key := [2]string{b.UserID, b.OtherUserID}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seenPair[key] {
			t.Errorf("pair %v emitted more than once", key)
		}
		seenPair[key] = true
	}

	// Net position per member straight from the expense list: what they paid
	// for others minus what others paid for them.
	net := make(map[string]float64)
	for _, exp := range exps {
		if exp.Settled {
			continue
		}
		share := exp.Amount / float64(len(exp.Splits))
		for _, sp := range exp.Splits {
			if sp.UserID == exp.PaidBy {
				continue
			}
			net[sp.UserID] -= share
			net[exp.PaidBy] += share
		}
	}

	fromBalances := make(map[string]float64)
	for _, b := range balances {
		fromBalances[b.UserID] -= b.Amount
		fromBalances[b.OtherUserID] += b.Amount
	}

	var total float64
	for id, want := range net {
		if math.Abs(fromBalances[id]-want) > Epsilon {
			t.Errorf("net position of %s = %v, want %v", id, fromBalances[id], want)
		}
		total += fromBalances[id]
	}
	if math.Abs(total) > Epsilon {
		t.Errorf("net positions sum to %v, want 0", total)
	}
}

func TestBalancesDeterministicOrder(t *testing.T) {
	grp := members("carol", "alice", "bob")
	exps := []core.SharedExpense{sharedExpense(90, "carol", "carol", "alice", "bob")}

	first := Balances(grp, exps)
	for i := 0; i < 10; i++ {
		again := Balances(grp, exps)
		if len(again) != len(first) {
			t.Fatalf("length changed between runs: %d vs %d", len(again), len(first))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("order changed between runs: %v vs %v", first, again)
			}
		}
	}
}
