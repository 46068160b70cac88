// Package cuckoo partitions a token's selection-index set into
// load-balanced buckets using kappa-choice placement over a keyed
// permutation, so that the distributed point function (internal/dmpf)
// generated per bucket only needs to cover that bucket's local column
// count rather than the full matrix width.
package cuckoo

import (
	"math"
	"math/big"

	"github.com/auroradata-ai/spatiotex/internal/primitives"
)

// Params configures one bucketizer run: kappa candidate buckets per
// index, a load factor controlling bucket count, and a domain-specific
// seed so keyword and spatial placements never collide.
type Params struct {
	Kappa int
	Load  float64
	Seed  string
}

// Bucketize places every index in indices into one of ceil(Load *
// len(indices)) buckets (at least one), choosing among Kappa
// PRP-derived candidates the bucket with the fewest entries so far
// (ties broken by candidate order). m is the domain the indices were
// drawn from (used to decorrelate candidate derivation across indices
// sharing the same value range). Empty buckets are dropped from the
// result.
func Bucketize(indices []int, m int, p Params) map[int][]int {
	count := len(indices)
	if count == 0 {
		return map[int][]int{}
	}
	buckets := int(math.Max(1, math.Ceil(p.Load*float64(count))))

	sizes := make([]int, buckets)
	assign := make(map[int][]int, buckets)
	seed := []byte(p.Seed)

	for _, j := range indices {
		best := -1
		bestSize := -1
		for i := 0; i < p.Kappa; i++ {
			cand := candidateBucket(seed, j, m, i, buckets)
			if bestSize == -1 || sizes[cand] < bestSize {
				best = cand
				bestSize = sizes[cand]
			}
		}
		assign[best] = append(assign[best], j)
		sizes[best]++
	}

	for b, lst := range assign {
		if len(lst) == 0 {
			delete(assign, b)
		}
	}
	return assign
}

// candidateBucket computes PRP_seeded(seed, j + m*i) mod buckets.
func candidateBucket(seed []byte, j, m, i, buckets int) int {
	x := uint64(j + m*i)
	digest := primitives.PRPSeeded(seed, x)
	val := new(big.Int).SetBytes(digest)
	mod := big.NewInt(int64(buckets))
	val.Mod(val, mod)
	return int(val.Int64())
}
