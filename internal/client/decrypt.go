package client

import (
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/aui"
)

// Decrypt strips the one-time pad from every token's combined vector.
// For a spatial token, a bucket position j contributes pad bytes
// j*chunk_len..(j+1)*chunk_len; for a keyword token, position j
// contributes (m1+j)*chunk_len..(m1+j+1)*chunk_len, the same offset
// asymmetry Setup used when it built I_spa and I_tex out of one shared
// pad per record. A token's raw GBF position list can repeat a
// position (double-hashing collisions); q.Plan.Tokens[t].Positions is
// the deduplicated list the planner bucketized, so each position
// contributes its pad slice exactly once here, matching how Setup XORed
// the plaintext GBF cell in exactly once per position.
func (q *Query) Decrypt(a *aui.AUI, keys *aui.Keys) error {
	if q.State != Combined {
		return fmt.Errorf("%w: Decrypt called from state %s, want COMBINED", aui.ErrTransport, q.State)
	}

	n := len(a.IDs)
	plain := make([][][]byte, len(q.Plan.Tokens))
	for t, tok := range q.Plan.Tokens {
		vec := q.combined[t].Vec
		if len(vec) != n {
			return q.reject(fmt.Errorf("%w: token %q combined vector has %d rows, want %d", aui.ErrShape, tok.Raw, len(vec), n))
		}
		row := make([][]byte, n)
		for i := 0; i < n; i++ {
			pad := aui.DerivePad(keys, i, a.IDs[i], a.M1, a.M2, a.ChunkLen)
			acc := make([]byte, a.ChunkLen)
			for _, j := range tok.Positions {
				var off int
				if tok.Type == "kw" {
					off = (a.M1 + j) * a.ChunkLen
				} else {
					off = j * a.ChunkLen
				}
				xorInto(acc, pad[off:off+a.ChunkLen])
			}
			row[i] = xorBytes(vec[i], acc)
		}
		plain[t] = row
	}

	q.plain = plain
	q.State = Decrypted
	return nil
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}
