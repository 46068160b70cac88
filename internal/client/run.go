package client

import (
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/csp"
	"github.com/auroradata-ai/spatiotex/internal/query"
)

// Dispatch sends one party's payload to that party's evaluator and
// returns its per-token shares. Implementations talk to a CSP over
// whatever transport is wired in (HTTP in cmd/spatiotex); Run itself
// is transport-agnostic so it can also drive in-process Evaluate calls
// in tests.
type Dispatch func(partyID int, payload query.PartyPayload) ([]csp.TokenResult, error)

// Run drives a freshly built plan through the full
// dispatch/combine/decrypt/verify pipeline and returns the verified
// hit set. It stops and returns an error at the first failing step,
// leaving q in the REJECTED state with q.Err() explaining why.
func Run(plan *query.Plan, a *aui.AUI, keys *aui.Keys, dispatch Dispatch) (*Query, []string, error) {
	q := NewQuery(plan)

	responses := make([][]csp.TokenResult, len(plan.Parties))
	for _, party := range plan.Parties {
		res, err := dispatch(party.PartyID, party)
		if err != nil {
			q.reject(fmt.Errorf("%w: party %d: %v", aui.ErrTransport, party.PartyID, err))
			return q, nil, q.err
		}
		responses[party.PartyID] = res
	}
	if err := q.MarkDispatched(); err != nil {
		return q, nil, err
	}

	if err := q.Combine(responses); err != nil {
		return q, nil, err
	}
	if err := q.Decrypt(a, keys); err != nil {
		return q, nil, err
	}
	if err := q.Verify(a, keys); err != nil {
		return q, nil, err
	}
	hits, err := q.Hits(a)
	if err != nil {
		return q, nil, err
	}
	return q, hits, nil
}
