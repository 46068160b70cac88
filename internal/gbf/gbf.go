// Package gbf implements the Garbled Bloom Filter: a fixed-size,
// multi-hash-position Bloom variant where each inserted item's
// fingerprint is secret-shared across its hash positions, so that
// XORing the array cells at those positions reconstructs the
// fingerprint iff the item was inserted (up to the usual Bloom
// false-positive rate).
//
// This is a different data structure from a plain bitset Bloom filter:
// every cell holds a fixed-width byte chunk, not a single bit, and Add
// XORs random shares into cells rather than setting bits.
package gbf

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha256"
	"math/big"
)

// Filter is a Garbled Bloom Filter of m cells, k hash positions per
// item, and psi/8-byte fingerprints.
type Filter struct {
	m       int
	k       int
	byteLen int
	array   [][]byte
}

// New returns an empty Filter. psi must be a positive multiple of 8.
func New(m, k, psi int) *Filter {
	byteLen := psi / 8
	arr := make([][]byte, m)
	for i := range arr {
		arr[i] = make([]byte, byteLen)
	}
	return &Filter{m: m, k: k, byteLen: byteLen, array: arr}
}

// Size returns the cell count m.
func (f *Filter) Size() int { return f.m }

// HashCount returns k.
func (f *Filter) HashCount() int { return f.k }

// ChunkLen returns the per-cell byte width (psi/8).
func (f *Filter) ChunkLen() int { return f.byteLen }

// Array returns the raw cell matrix. Callers must not retain mutable
// aliases past the Filter's lifetime expectations (Setup copies it).
func (f *Filter) Array() [][]byte { return f.array }

// Fingerprint returns the psi-bit (psi/8-byte) SHA-256 prefix of item.
func Fingerprint(item string, byteLen int) []byte {
	sum := sha256.Sum256([]byte(item))
	out := make([]byte, byteLen)
	copy(out, sum[:byteLen])
	return out
}

// Positions computes the k candidate cell indices for item via the
// double-hashing scheme h1 = SHA256(item), h2 = MD5(item),
// pos_i = (h1 + i*h2) mod m. Duplicates are possible and are not
// deduplicated here: callers that need the distribution semantics of
// the original random-choice(raw positions) behavior (gbf.Add) must
// keep the raw, possibly-repeating list.
func Positions(item string, m, k int) []int {
	h1 := new(big.Int).SetBytes(sha256Sum(item))
	h2 := new(big.Int).SetBytes(md5Sum(item))
	mod := big.NewInt(int64(m))
	positions := make([]int, k)
	tmp := new(big.Int)
	for i := 0; i < k; i++ {
		tmp.Mul(h2, big.NewInt(int64(i)))
		tmp.Add(tmp, h1)
		tmp.Mod(tmp, mod)
		positions[i] = int(tmp.Int64())
	}
	return positions
}

func sha256Sum(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}

func md5Sum(s string) []byte {
	sum := md5.Sum([]byte(s))
	return sum[:]
}

// Add inserts item into the filter. A special VALUE (not index) is
// chosen uniformly from the raw (possibly-duplicated) position list;
// every occurrence equal to that value is skipped while drawing random
// shares for the rest, so a duplicated position both draws a share per
// occurrence (accumulated into the special share) and, in the final
// XOR-into-array pass, gets XORed in once per occurrence: an even
// number of times for a non-special duplicate, cancelling out. This
// mirrors the reference implementation exactly, quirks included:
// picking the special value from the raw list (rather than the
// deduplicated position set) preserves its distribution, and
// duplicate-position collisions are tolerated, not special-cased.
func (f *Filter) Add(item string) error {
	positions := Positions(item, f.m, f.k)
	choiceIdx, err := randIndex(len(positions))
	if err != nil {
		return err
	}
	special := positions[choiceIdx]

	shares := make(map[int][]byte, len(positions))
	xorSum := make([]byte, f.byteLen)
	for _, pos := range positions {
		if pos == special {
			continue
		}
		r := make([]byte, f.byteLen)
		if _, err := rand.Read(r); err != nil {
			return err
		}
		shares[pos] = r
		xorBytesInto(xorSum, r)
	}
	fp := Fingerprint(item, f.byteLen)
	specialShare := make([]byte, f.byteLen)
	copy(specialShare, fp)
	xorBytesInto(specialShare, xorSum)
	shares[special] = specialShare

	for _, pos := range positions {
		xorBytesInto(f.array[pos], shares[pos])
	}
	return nil
}

// Query reports whether item is (probably) a member: XOR of the k
// cells at item's hash positions must equal item's fingerprint.
func (f *Filter) Query(item string) bool {
	positions := Positions(item, f.m, f.k)
	acc := make([]byte, f.byteLen)
	for _, pos := range positions {
		xorBytesInto(acc, f.array[pos])
	}
	fp := Fingerprint(item, f.byteLen)
	return bytesEqual(acc, fp)
}

func xorBytesInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// randIndex returns a cryptographically random index in [0, n).
func randIndex(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
