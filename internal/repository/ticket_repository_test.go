package repository

import "testing"

func TestPairUpdateOrderIsDeterministic(t *testing.T) {
	cases := []struct {
		a, b uint64
	}{
		{3, 7},
		{7, 3},
		{1, 2},
		{100, 99},
	}
	for _, c := range cases {
		got := pairUpdateOrder(c.a, c.b)
		if got[0][0] > got[1][0] {
			t.Fatalf("pairUpdateOrder(%d,%d): lower id must lock first, got %v", c.a, c.b, got)
		}
		if got[0][1] != got[1][0] || got[1][1] != got[0][0] {
			t.Fatalf("pairUpdateOrder(%d,%d): opponents must be reciprocal, got %v", c.a, c.b, got)
		}
	}
	// Same inputs in either order must produce the same lock sequence.
	if pairUpdateOrder(3, 7) != pairUpdateOrder(7, 3) {
		t.Fatalf("lock order must not depend on argument order")
	}
}
