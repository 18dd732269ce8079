package split

import (
	"math"
	"testing"
)

func TestShares(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		memberIDs []string
		wantErr   error
		wantEach  float64
	}{
		{
			name:      "two members split evenly",
			amount:    100,
			memberIDs: []string{"alice", "bob"},
			wantEach:  50,
		},
		{
			name:      "single member keeps the whole amount",
			amount:    42.50,
			memberIDs: []string{"alice"},
			wantEach:  42.50,
		},
		{
			name:      "no members",
			amount:    10,
			memberIDs: nil,
			wantErr:   ErrNoParticipants,
		},
		{
			name:      "zero amount",
			amount:    0,
			memberIDs: []string{"alice"},
			wantErr:   ErrInvalidAmount,
		},
		{
			name:      "negative amount",
			amount:    -5,
			memberIDs: []string{"alice"},
			wantErr:   ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := Shares(tt.amount, tt.memberIDs)
			if err != tt.wantErr {
				t.Fatalf("Shares() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if len(splits) != len(tt.memberIDs) {
				t.Fatalf("got %d splits, want %d", len(splits), len(tt.memberIDs))
			}
			for i, sp := range splits {
				if sp.UserID != tt.memberIDs[i] {
					t.Errorf("split %d user = %s, want %s", i, sp.UserID, tt.memberIDs[i])
				}
				if math.Abs(sp.Amount-tt.wantEach) > 0.001 {
					t.Errorf("split %d amount = %v, want %v", i, sp.Amount, tt.wantEach)
				}
				if sp.Settled {
					t.Errorf("split %d created settled", i)
				}
			}
		})
	}
}

func TestSharesUnevenDivision(t *testing.T) {
	// 100 / 3 does not divide evenly; the residue stays within the engine's
	// epsilon instead of being redistributed.
	splits, err := Shares(100, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Shares() error = %v", err)
	}

	var sum float64
	for _, sp := range splits {
		if math.Abs(sp.Amount-splits[0].Amount) > 1e-9 {
			t.Errorf("shares are not equal: %v vs %v", sp.Amount, splits[0].Amount)
		}
		sum += sp.Amount
	}
	if math.Abs(sum-100) > Epsilon {
		t.Errorf("sum of shares = %v, want 100 within %v", sum, Epsilon)
	}
}
