package keyrange

import "testing"

func TestFullContainsEverything(t *testing.T) {
	r := Full()
	for _, k := range []string{"", "a", "zzzz"} {
		if !r.Contains(k) {
			t.Fatalf("Full() must contain %q", k)
		}
	}
}

func TestIncludedBoundary(t *testing.T) {
	r := Range{Start: Included("b"), End: Included("d")}
	if r.Contains("a") {
		t.Fatal("must not contain key before start")
	}
	if !r.Contains("b") {
		t.Fatal("Included start must contain the boundary key")
	}
	if !r.Contains("d") {
		t.Fatal("Included end must contain the boundary key")
	}
	if r.Contains("e") {
		t.Fatal("must not contain key after end")
	}
}

func TestExcludedBoundary(t *testing.T) {
	r := Range{Start: Excluded("b"), End: Excluded("d")}
	if r.Contains("b") {
		t.Fatal("Excluded start must not contain the boundary key")
	}
	if !r.Contains("c") {
		t.Fatal("must contain key strictly between bounds")
	}
	if r.Contains("d") {
		t.Fatal("Excluded end must not contain the boundary key")
	}
}

func TestEmpty(t *testing.T) {
	cases := []struct {
		r    Range
		want bool
	}{
		{Range{Start: Included("b"), End: Included("a")}, true},
		{Range{Start: Included("a"), End: Excluded("a")}, true},
		{Range{Start: Excluded("a"), End: Included("a")}, true},
		{Range{Start: Included("a"), End: Included("a")}, false},
		{Range{Start: Included("a"), End: Included("b")}, false},
		{Full(), false},
	}
	for i, c := range cases {
		if got := c.r.Empty(); got != c.want {
			t.Fatalf("case %d: Empty() = %v, want %v", i, got, c.want)
		}
	}
}
