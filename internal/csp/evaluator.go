// Package csp implements the per-party evaluator a Compute Service
// Provider runs: stateless, key-free aggregation of matrix columns and
// sigma tags under a client-supplied selection, plus the HTTP server
// exposing it over the wire contract.
package csp

import (
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/aui"
)

// Bucket mirrors one cuckoo bucket's dispatch: the matrix columns it
// covers and this party's selection bit per column.
type Bucket struct {
	Columns []int
	Bits    []byte
}

// TokenRequest is one token's dispatch payload for a single party.
type TokenRequest struct {
	Type    string // "kw" or "spa"
	Buckets []Bucket
}

// TokenResult is the per-token share a party returns: a chunk_len-byte
// partial vector for every record, plus one lambda-byte partial proof.
type TokenResult struct {
	Vec   [][]byte
	Proof []byte
}

// Evaluate aggregates a.Keyword or a.Spatial columns under each
// token's selection bits. It never reads or derives any key, and is
// stateless across calls: the only input beyond a is the caller's
// selection.
func Evaluate(a *aui.AUI, tokens []TokenRequest) ([]TokenResult, error) {
	n := len(a.IDs)
	out := make([]TokenResult, len(tokens))

	for t, tok := range tokens {
		var cells [][][]byte
		var sigma [][]byte
		var cols int
		switch tok.Type {
		case "kw":
			cells, sigma, cols = a.Keyword.Cells, a.Keyword.Sigma, a.M2
		case "spa":
			cells, sigma, cols = a.Spatial.Cells, a.Spatial.Sigma, a.M1
		default:
			return nil, fmt.Errorf("%w: unknown token type %q", aui.ErrShape, tok.Type)
		}

		vec := make([][]byte, n)
		for i := range vec {
			vec[i] = make([]byte, a.ChunkLen)
		}
		proof := make([]byte, a.Lambda)

		for _, bucket := range tok.Buckets {
			if len(bucket.Bits) != len(bucket.Columns) {
				return nil, fmt.Errorf("%w: bucket has %d columns but %d bits", aui.ErrShape, len(bucket.Columns), len(bucket.Bits))
			}
			for i, col := range bucket.Columns {
				if col < 0 || col >= cols {
					return nil, fmt.Errorf("%w: column %d out of range [0,%d)", aui.ErrShape, col, cols)
				}
				if bucket.Bits[i] == 0 {
					continue
				}
				for row := 0; row < n; row++ {
					xorInto(vec[row], cells[row][col])
				}
				xorInto(proof, sigma[col])
			}
		}

		out[t] = TokenResult{Vec: vec, Proof: proof}
	}
	return out, nil
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
