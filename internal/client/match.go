package client

import (
	"bytes"
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/gbf"
)

// Hits returns the IDs of records matching the query: every non-dummy
// keyword token's decrypted cell must reconstruct that token's GBF
// fingerprint (AND: a record is only "about" a keyword if every real
// keyword searched for is present), and at least one spatial token's
// cell must reconstruct its fingerprint when any spatial tokens were
// dispatched (OR: a record falls in the queried region if it falls in
// any of the cells the range expanded to). A query with no keyword
// tokens at all, or no spatial tokens at all, leaves that half of the
// gate vacuously open so a spatial-only or keyword-only query behaves
// as a pure filter on the other dimension. Dummy padding tokens are
// excluded from both checks: they exist to make the dispatched token
// count look uniform to the CSPs, not to constrain the result.
func (q *Query) Hits(a *aui.AUI) ([]string, error) {
	if q.State != Verified {
		return nil, fmt.Errorf("%w: Hits called from state %s, want VERIFIED", aui.ErrTransport, q.State)
	}

	var kwIdx, spaIdx []int
	for t, tok := range q.Plan.Tokens {
		switch {
		case tok.Type == "kw" && !tok.Dummy:
			kwIdx = append(kwIdx, t)
		case tok.Type == "spa":
			spaIdx = append(spaIdx, t)
		}
	}

	var out []string
	for i, id := range a.IDs {
		kwPass := true
		for _, t := range kwIdx {
			fp := gbf.Fingerprint(q.Plan.Tokens[t].Raw, a.ChunkLen)
			if !bytes.Equal(q.plain[t][i], fp) {
				kwPass = false
				break
			}
		}
		spaPass := len(spaIdx) == 0
		for _, t := range spaIdx {
			fp := gbf.Fingerprint(q.Plan.Tokens[t].Raw, a.ChunkLen)
			if bytes.Equal(q.plain[t][i], fp) {
				spaPass = true
				break
			}
		}
		if kwPass && spaPass {
			out = append(out, id)
		}
	}
	return out, nil
}
