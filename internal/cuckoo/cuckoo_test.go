package cuckoo

import "testing"

func TestBucketizeCoversAllIndices(t *testing.T) {
	indices := []int{1, 4, 7, 9, 12, 15, 20}
	p := Params{Kappa: 3, Load: 1.27, Seed: "cuckoo-seed"}
	buckets := Bucketize(indices, 64, p)

	seen := map[int]bool{}
	for _, cols := range buckets {
		for _, c := range cols {
			if seen[c] {
				t.Fatalf("index %d placed twice", c)
			}
			seen[c] = true
		}
	}
	for _, idx := range indices {
		if !seen[idx] {
			t.Errorf("index %d missing from any bucket", idx)
		}
	}
}

func TestBucketizeNoEmptyBuckets(t *testing.T) {
	p := Params{Kappa: 3, Load: 1.27, Seed: "cuckoo-seed"}
	buckets := Bucketize([]int{5, 10}, 64, p)
	for id, cols := range buckets {
		if len(cols) == 0 {
			t.Errorf("bucket %d is empty and should have been dropped", id)
		}
	}
}

func TestBucketizeEmptyInput(t *testing.T) {
	p := Params{Kappa: 3, Load: 1.27, Seed: "cuckoo-seed"}
	buckets := Bucketize(nil, 64, p)
	if len(buckets) != 0 {
		t.Fatalf("expected no buckets for empty index set, got %d", len(buckets))
	}
}

func TestBucketizeDeterministic(t *testing.T) {
	p := Params{Kappa: 3, Load: 1.27, Seed: "cuckoo-seed"}
	indices := []int{2, 3, 9, 11}
	a := Bucketize(indices, 64, p)
	b := Bucketize(indices, 64, p)
	if len(a) != len(b) {
		t.Fatalf("bucket count differs across runs: %d vs %d", len(a), len(b))
	}
}
