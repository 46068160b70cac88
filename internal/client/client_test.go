package client

import (
	"sort"
	"testing"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/csp"
	"github.com/auroradata-ai/spatiotex/internal/query"
	"github.com/auroradata-ai/spatiotex/internal/record"
)

func testFixture(t *testing.T) (*aui.AUI, *aui.Keys, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.SpatialBloomFilter = config.BloomFilterParams{Size: 64, HashCount: 3, Psi: 32}
	cfg.KeywordBloomFilter = config.BloomFilterParams{Size: 64, HashCount: 4, Psi: 32}
	cfg.SpatialGrid = config.SpatialGridParams{CellSizeLat: 0.5, CellSizeLon: 0.5}
	cfg.Suppression = config.SuppressionParams{EnablePadding: true, MaxRBlocks: 4}
	cfg.U = 3

	rows := []record.Input{
		{ID: "A", X: 0.1, Y: 0.1, Keywords: "PARK, CAFE"},
		{ID: "B", X: 0.3, Y: 0.1, Keywords: "HOSPITAL"},
		{ID: "C", X: 0.6, Y: 0.6, Keywords: "PARK"},
	}
	a, keys, err := aui.Setup(rows, cfg)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return a, keys, cfg
}

// inProcessDispatch evaluates each party's payload directly against a,
// bypassing HTTP. It adapts query.Bucket into csp.TokenRequest, the
// same reshaping cmd/spatiotex's HTTP dispatcher does after a wire
// round-trip.
func inProcessDispatch(a *aui.AUI, plan *query.Plan) Dispatch {
	return func(partyID int, payload query.PartyPayload) ([]csp.TokenResult, error) {
		reqs := make([]csp.TokenRequest, len(plan.Tokens))
		for t, tok := range plan.Tokens {
			buckets := make([]csp.Bucket, len(payload.Buckets[t]))
			for b, bucket := range payload.Buckets[t] {
				buckets[b] = csp.Bucket{Columns: bucket.Columns, Bits: bucket.Bits}
			}
			reqs[t] = csp.TokenRequest{Type: tok.Type, Buckets: buckets}
		}
		return csp.Evaluate(a, reqs)
	}
}

func TestRunKeywordQueryMatchesExpectedRecords(t *testing.T) {
	a, keys, cfg := testFixture(t)
	plan, err := query.Build("PARK", a, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	q, hits, err := Run(plan, a, keys, inProcessDispatch(a, plan))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if q.State != Verified {
		t.Fatalf("state = %s, want VERIFIED", q.State)
	}
	sort.Strings(hits)
	want := []string{"A", "C"}
	if len(hits) != len(want) || hits[0] != want[0] || hits[1] != want[1] {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
}

func TestRunSpatialOnlyQueryOpensKeywordGate(t *testing.T) {
	a, keys, cfg := testFixture(t)
	plan, err := query.Build("; R: 0.0,0.0,0.4,0.4", a, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, hits, err := Run(plan, a, keys, inProcessDispatch(a, plan))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	sort.Strings(hits)
	want := []string{"A", "B"}
	if len(hits) != len(want) || hits[0] != want[0] || hits[1] != want[1] {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
}

func TestRunTamperedColumnFailsVerification(t *testing.T) {
	a, keys, cfg := testFixture(t)
	plan, err := query.Build("PARK", a, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Tamper a column PARK's own token actually selects; an unselected
	// column never reaches the combined proof, so Verify would pass.
	col := plan.Tokens[0].Positions[0]
	a.Keyword.Cells[0][col][0] ^= 0xFF

	_, _, err = Run(plan, a, keys, inProcessDispatch(a, plan))
	if err == nil {
		t.Fatal("expected verification failure after tampering, got nil error")
	}
}

func TestRunDummyTokensDoNotConstrainMatch(t *testing.T) {
	a, keys, cfg := testFixture(t)
	cfg.Suppression.MaxRBlocks = 4
	plan, err := query.Build("PARK", a, cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	dummyCount := 0
	for _, tok := range plan.Tokens {
		if tok.Dummy {
			dummyCount++
		}
	}
	if dummyCount == 0 {
		t.Fatal("expected padding to add dummy tokens for a single-keyword query")
	}

	q, hits, err := Run(plan, a, keys, inProcessDispatch(a, plan))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if q.State != Verified {
		t.Fatalf("state = %s, want VERIFIED", q.State)
	}
	sort.Strings(hits)
	want := []string{"A", "C"}
	if len(hits) != len(want) || hits[0] != want[0] || hits[1] != want[1] {
		t.Fatalf("hits = %v, want %v", hits, want)
	}
}
