package store

import "testing"

func TestPairKeyIsOrderIndependent(t *testing.T) {
	if PairKey("a", "b") != PairKey("b", "a") {
		t.Fatal("pair key must not depend on argument order")
	}
	if PairKey("a", "b") != "a:b" {
		t.Fatalf("unexpected key: %s", PairKey("a", "b"))
	}
	if PairKey("x", "x") != "x:x" {
		t.Fatalf("unexpected self key: %s", PairKey("x", "x"))
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 20},
		{-1, 500, 1, 20},
		{3, 50, 3, 50},
	}
	for _, c := range cases {
		page, limit := normalizePage(c.page, c.limit)
		if page != c.wantPage || limit != c.wantLimit {
			t.Fatalf("normalizePage(%d, %d) = %d, %d; want %d, %d",
				c.page, c.limit, page, limit, c.wantPage, c.wantLimit)
		}
	}
}
