package client

import (
	"bytes"
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/primitives"
)

// Verify recomputes every token's expected proof from the combined
// ciphertext vector (the pre-decrypt value Combine produced, not the
// pad-stripped one Decrypt produced) and the key tuple, and compares
// it against the value the parties' combined proof shares
// reconstructed. It runs over every token the planner emitted, dummy
// padding tokens included: the CSPs folded every dispatched token's
// sigma into their proof shares regardless of whether it was a real or
// a dummy token, so the combined proof can only reconstruct correctly
// if every token, dummy or not, verifies.
//
// sigma itself was built over the plaintext GBF cells (see Setup), so
// FX(Ki, combined_ciphertext_i) must be corrected by FX(Ki, pad_acc_i)
// before it lines up with sigma's FX(Ki, plaintext_i) term; that is
// what fx_pad_sum is for, skipping it would make every query fail
// verification, not just tampered ones.
//
// A mismatch on any single token means the corresponding AUI column(s)
// were tampered with, or a party returned a forged/incomplete share;
// either way the whole result is untrustworthy and Verify moves the
// query to REJECTED rather than returning a partial answer.
func (q *Query) Verify(a *aui.AUI, keys *aui.Keys) error {
	if q.State != Decrypted {
		return fmt.Errorf("%w: Verify called from state %s, want DECRYPTED", aui.ErrTransport, q.State)
	}

	n := len(a.IDs)
	recordKeys := make([][]byte, n)
	for i := range recordKeys {
		recordKeys[i] = aui.RecordKey(keys, i, a.Lambda)
	}

	for t, tok := range q.Plan.Tokens {
		fxSum := make([]byte, a.Lambda)
		fxPadSum := make([]byte, a.Lambda)
		for i := 0; i < n; i++ {
			fxSum = xorBytes(fxSum, primitives.FX(recordKeys[i], q.combined[t].Vec[i], a.Lambda))

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
			fxPadSum = xorBytes(fxPadSum, primitives.FX(recordKeys[i], acc, a.Lambda))
		}

		n2 := make([]byte, a.Lambda)
		for _, j := range tok.Positions {
			jGlobal := j + 1
			if tok.Type == "kw" {
				jGlobal = j + 1 + a.M1
			}
			label := aui.ColumnTagLabel(jGlobal, a.IDs)
			xorInto(n2, aui.ColumnHMAC(keys.Kh, label, a.Lambda))
		}

		expected := xorBytes(xorBytes(fxSum, fxPadSum), n2)
		if !bytes.Equal(expected, q.combined[t].Proof) {
			return q.reject(fmt.Errorf("%w: token %q (%s) proof mismatch", aui.ErrIntegrity, tok.Raw, tok.Type))
		}
	}

	q.State = Verified
	return nil
}
