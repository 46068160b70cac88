// Package dmpf implements the distributed (multi-party) point-function
// bit-selection shares used to hide, from each individual CSP, which
// columns of a matrix are actually being selected by a query.
//
// Gen produces U keys, one per party, such that for every domain index
// j: XOR over all parties of Eval(key, j) == 1 iff j is in the logical
// index set the keys were generated for. Any U-1 parties' keys reveal
// nothing about the set on their own; only all U XORed together
// reconstruct the indicator.
package dmpf

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Key is one party's share of a selection function over [0, domain).
type Key struct {
	Seed string
	Bits map[int]byte
}

// Eval returns the stored selection bit for j, or 0 if j is outside
// the key's domain.
func Eval(key Key, j int) byte {
	return key.Bits[j]
}

// Gen builds U keys for the logical index set indices over
// [0, domainSize). lambda is the security parameter in bytes, folded
// into the per-party derivation string so keys generated at different
// security levels never collide.
//
// The construction must be reproduced exactly: different callers
// (different CSPs, or the same planner run twice) must derive the same
// `base` string from the same logical index set for their evaluations
// to align when recombined.
func Gen(lambda int, indices []int, domainSize, parties int) ([]Key, error) {
	if parties < 2 {
		return nil, fmt.Errorf("dmpf: parties must be >= 2, got %d", parties)
	}
	if domainSize < 0 {
		return nil, fmt.Errorf("dmpf: negative domain size %d", domainSize)
	}

	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		set[i] = struct{}{}
	}
	base := canonicalBase(set)

	shares := make([]map[int]byte, parties)
	for l := range shares {
		shares[l] = make(map[int]byte, domainSize)
	}

	for j := 0; j < domainSize; j++ {
		var desired byte
		if _, ok := set[j]; ok {
			desired = 1
		}
		var xorPrev byte
		for l := 0; l < parties-1; l++ {
			bit := pseudoBit(base, l, lambda, j)
			shares[l][j] = bit
			xorPrev ^= bit
		}
		shares[parties-1][j] = desired ^ xorPrev
	}

	keys := make([]Key, parties)
	for l := 0; l < parties; l++ {
		keys[l] = Key{
			Seed: partySeed(base, l, lambda),
			Bits: shares[l],
		}
	}
	return keys, nil
}

// canonicalBase renders a logical index set as the comma-joined sorted
// decimal string the spec mandates as the cross-party coordination key.
func canonicalBase(set map[int]struct{}) string {
	sorted := make([]int, 0, len(set))
	for i := range set {
		sorted = append(sorted, i)
	}
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// pseudoBit derives party l's pseudorandom bit for domain index j from
// the low bit of SHA256("{base}|{l}|{lambda}|{j}").
func pseudoBit(base string, l, lambda, j int) byte {
	s := fmt.Sprintf("%s|%d|%d|%d", base, l, lambda, j)
	sum := sha256.Sum256([]byte(s))
	return sum[0] & 1
}

func partySeed(base string, l, lambda int) string {
	s := fmt.Sprintf("%s|%d|%d", base, l, lambda)
	sum := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", sum)
}
