package record

import "testing"

func testParams() Params {
	return Params{
		Spatial: FilterParams{M: 64, K: 3, Psi: 16},
		Keyword: FilterParams{M: 64, K: 3, Psi: 16},
		Grid:    GridParams{CellSizeLat: 0.01, CellSizeLon: 0.01},
	}
}

func TestEncodeRoundTripsSpatialAndKeywordTokens(t *testing.T) {
	in := Input{ID: "r1", X: 40.71, Y: -74.0, Keywords: "Central Park, Cafe"}
	enc, err := Encode(in, testParams())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	r, c := CellIndex(in.X, in.Y, testParams().Grid)
	if !enc.Spatial.Query(CellToken(r, c)) {
		t.Errorf("spatial filter does not contain its own cell token")
	}
	if !enc.Spatial.Query("40.71,-74") {
		t.Errorf("spatial filter does not contain exact coordinate token")
	}
	for _, tok := range []string{"CENTRAL", "PARK", "CAFE"} {
		if !enc.Keyword.Query(tok) {
			t.Errorf("keyword filter missing token %q", tok)
		}
	}
	if enc.Keyword.Query("SUBWAY") {
		t.Errorf("keyword filter unexpectedly matched absent token")
	}
}

func TestCellIndexBucketsNearbyPoints(t *testing.T) {
	g := GridParams{CellSizeLat: 0.01, CellSizeLon: 0.01}
	r1, c1 := CellIndex(40.001, -74.001, g)
	r2, c2 := CellIndex(40.004, -74.004, g)
	if r1 != r2 || c1 != c2 {
		t.Errorf("expected nearby points in same cell, got (%d,%d) vs (%d,%d)", r1, c1, r2, c2)
	}
}

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"Central Park": "CENTRALPARK",
		"cafe-123":      "CAFE123",
		"  ":            "",
	}
	for in, want := range cases {
		if got := NormalizeToken(in); got != want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenizeNormalizedSplitsOnCommaAndSpace(t *testing.T) {
	got := TokenizeNormalized("Central Park, Cafe  Bar")
	want := []string{"CENTRAL", "PARK", "CAFE", "BAR"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
