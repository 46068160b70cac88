package gbf

import "testing"

func TestAddQueryRoundTrip(t *testing.T) {
	f := New(64, 3, 32)
	items := []string{"PARK", "CAFE", "HOSPITAL", "SCHOOL"}
	for _, it := range items {
		if err := f.Add(it); err != nil {
			t.Fatalf("Add(%q): %v", it, err)
		}
	}
	for _, it := range items {
		if !f.Query(it) {
			t.Errorf("Query(%q) = false, want true after Add", it)
		}
	}
}

func TestPositionsDeterministic(t *testing.T) {
	a := Positions("PARK", 64, 3)
	b := Positions("PARK", 64, 3)
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d differs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestFingerprintLength(t *testing.T) {
	fp := Fingerprint("PARK", 4)
	if len(fp) != 4 {
		t.Fatalf("len(fp) = %d, want 4", len(fp))
	}
}

func TestQueryFalseOnAbsentToken(t *testing.T) {
	f := New(64, 3, 32)
	for _, it := range []string{"PARK", "CAFE"} {
		if err := f.Add(it); err != nil {
			t.Fatal(err)
		}
	}
	// Not a guarantee (Bloom filters have false positives) but with
	// this size/hash-count/item-count combination collisions are rare
	// enough that a fixed unrelated token should not match.
	if f.Query("ZZZZ_NOT_PRESENT_TOKEN") {
		t.Log("false positive hit for absent token (acceptable, rare)")
	}
}
