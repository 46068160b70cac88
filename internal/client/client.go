// Package client implements the data-owner/querier side of a search:
// combining the U parties' per-token shares, removing the one-time
// pad, matching non-dummy keyword tokens by AND and spatial tokens by
// OR, and verifying the combined result against the FX+HMAC column
// tags before trusting it.
package client

import (
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/csp"
	"github.com/auroradata-ai/spatiotex/internal/query"
)

// State is a query's position in its PLANNED -> DISPATCHED -> COMBINED
// -> DECRYPTED -> VERIFIED|REJECTED lifecycle. Each step's method
// checks the caller is calling it from the right predecessor state,
// so a transport bug (combining before dispatch, say) fails loudly
// instead of silently producing a plausible-looking wrong answer.
type State int

const (
	Planned State = iota
	Dispatched
	Combined
	Decrypted
	Verified
	Rejected
)

func (s State) String() string {
	switch s {
	case Planned:
		return "PLANNED"
	case Dispatched:
		return "DISPATCHED"
	case Combined:
		return "COMBINED"
	case Decrypted:
		return "DECRYPTED"
	case Verified:
		return "VERIFIED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Query tracks one query's progress through the pipeline, from a
// planned dispatch to a verified hit set. Combine, Decrypt and Verify
// must be called in that order; each records its own result on the
// struct so later steps and the final Hits call don't need to thread
// intermediate values through the caller.
type Query struct {
	Plan  *query.Plan
	State State

	combined []csp.TokenResult
	plain    [][][]byte // plain[t][i] is token t's decrypted cell for record i
	err      error
}

// NewQuery wraps a freshly built plan. The caller is expected to have
// already sent Plan.Parties[l] to party l's /eval endpoint before
// calling MarkDispatched.
func NewQuery(plan *query.Plan) *Query {
	return &Query{Plan: plan, State: Planned}
}

// MarkDispatched records that every party's payload was sent
// successfully. It does not perform the transport itself: the wire
// format (§6) is plain JSON over HTTP, and callers are free to use
// any client (net/http, a test double, ...) to do the sending.
func (q *Query) MarkDispatched() error {
	if q.State != Planned {
		return fmt.Errorf("%w: MarkDispatched called from state %s, want PLANNED", aui.ErrTransport, q.State)
	}
	q.State = Dispatched
	return nil
}

// Err returns the error that moved the query to REJECTED, if any.
func (q *Query) Err() error { return q.err }

func (q *Query) reject(err error) error {
	q.State = Rejected
	q.err = err
	return err
}
