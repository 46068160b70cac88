package client

import (
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/csp"
)

// Combine XORs the U parties' per-token shares together. responses
// must have one entry per party, in the same party order as
// q.Plan.Parties, and each party's slice must have one TokenResult per
// token in q.Plan.Tokens. The result is the plaintext-under-pad vector
// and proof for every token: decrypt still has to strip the one-time
// pad before it is a usable GBF cell.
func (q *Query) Combine(responses [][]csp.TokenResult) error {
	if q.State != Dispatched {
		return fmt.Errorf("%w: Combine called from state %s, want DISPATCHED", aui.ErrTransport, q.State)
	}
	if len(responses) == 0 {
		return q.reject(fmt.Errorf("%w: no party responses", aui.ErrTransport))
	}
	numTokens := len(q.Plan.Tokens)
	for p, resp := range responses {
		if len(resp) != numTokens {
			return q.reject(fmt.Errorf("%w: party %d returned %d token results, want %d", aui.ErrTransport, p, len(resp), numTokens))
		}
	}

	combined := make([]csp.TokenResult, numTokens)
	for t := 0; t < numTokens; t++ {
		numRows := len(responses[0][t].Vec)
		vec := make([][]byte, numRows)
		for i := range vec {
			vec[i] = make([]byte, len(responses[0][t].Vec[i]))
		}
		proof := make([]byte, len(responses[0][t].Proof))

		for p, resp := range responses {
			tok := resp[t]
			if len(tok.Vec) != numRows {
				return q.reject(fmt.Errorf("%w: party %d token %d has %d rows, want %d", aui.ErrShape, p, t, len(tok.Vec), numRows))
			}
			for i, cell := range tok.Vec {
				xorInto(vec[i], cell)
			}
			xorInto(proof, tok.Proof)
		}
		combined[t] = csp.TokenResult{Vec: vec, Proof: proof}
	}

	q.combined = combined
	q.State = Combined
	return nil
}

func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
