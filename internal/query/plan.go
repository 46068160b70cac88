package query

import (
	"fmt"
	"sort"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/cuckoo"
	"github.com/auroradata-ai/spatiotex/internal/dmpf"
	"github.com/auroradata-ai/spatiotex/internal/gbf"
	"github.com/auroradata-ai/spatiotex/internal/record"
)

func recordGridParams(cfg *config.Config) record.GridParams {
	return record.GridParams{
		CellSizeLat: cfg.SpatialGrid.CellSizeLat,
		CellSizeLon: cfg.SpatialGrid.CellSizeLon,
	}
}

// Bucket is one cuckoo bucket's dispatch payload for a single party:
// the matrix columns it covers and that party's DMPF selection bit per
// column, in Columns' order.
type Bucket struct {
	Columns []int
	Bits    []byte
}

// Token is one planned query token, shared across all parties:
// its raw text, kind, whether it is suppression padding, and the full
// (deduplicated) GBF position set used for client-side decrypt and
// verification.
type Token struct {
	Raw       string
	Type      string // "kw" or "spa"
	Dummy     bool
	Positions []int
}

// PartyPayload is what one CSP receives: for every token (in the same
// order as Plan.Tokens), the buckets selected for that party.
type PartyPayload struct {
	PartyID int
	Buckets [][]Bucket // Buckets[t] is token t's bucket list for this party
}

// Plan is the full, deterministic output of planning a query: the
// shared token metadata and each party's per-token bucket dispatch.
type Plan struct {
	Tokens  []Token
	Parties []PartyPayload
}

// Build plans raw against a, producing the per-party dispatch payload.
// Planning never contacts a CSP; it is pure, deterministic compute
// over the AUI's public shape parameters.
func Build(raw string, a *aui.AUI, cfg *config.Config) (*Plan, error) {
	parsed, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	kwTokens := PadKeywordTokens(parsed.KeywordTokens, cfg.Suppression)

	var spaRaw []string
	if parsed.Spatial != nil {
		grid := recordGridParams(cfg)
		spaRaw = ExpandCells(*parsed.Spatial, grid)
	}

	tokens := make([]Token, 0, len(kwTokens)+len(spaRaw))
	for _, kt := range kwTokens {
		tokens = append(tokens, Token{Raw: kt.Raw, Type: "kw", Dummy: kt.Dummy})
	}
	for _, cell := range spaRaw {
		tokens = append(tokens, Token{Raw: cell, Type: "spa"})
	}

	parties := make([]PartyPayload, a.U)
	for l := range parties {
		parties[l] = PartyPayload{PartyID: l, Buckets: make([][]Bucket, len(tokens))}
	}

	for t := range tokens {
		tok := &tokens[t]
		var m, k int
		var cp cuckoo.Params
		if tok.Type == "kw" {
			m, k = a.M2, a.KTex
			cp = a.CuckooKw
		} else {
			m, k = a.M1, a.KSpa
			cp = a.CuckooSpa
		}
		if cp.Kappa > k {
			cp.Kappa = k
		}

		positions := uniqueSorted(gbf.Positions(tok.Raw, m, k))
		tok.Positions = positions

		buckets := cuckoo.Bucketize(positions, m, cp)
		bucketIDs := make([]int, 0, len(buckets))
		for id := range buckets {
			bucketIDs = append(bucketIDs, id)
		}
		sort.Ints(bucketIDs)

		for _, id := range bucketIDs {
			cols := append([]int(nil), buckets[id]...)
			sort.Ints(cols)

			keys, err := dmpf.Gen(cfg.Lambda, allIndices(len(cols)), len(cols), a.U)
			if err != nil {
				return nil, fmt.Errorf("query: dmpf.Gen for token %q bucket %d: %w", tok.Raw, id, err)
			}
			for l := 0; l < a.U; l++ {
				bits := make([]byte, len(cols))
				for idx := range cols {
					bits[idx] = dmpf.Eval(keys[l], idx)
				}
				parties[l].Buckets[t] = append(parties[l].Buckets[t], Bucket{Columns: cols, Bits: bits})
			}
		}
	}

	return &Plan{Tokens: tokens, Parties: parties}, nil
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func uniqueSorted(xs []int) []int {
	seen := make(map[int]struct{}, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	sort.Ints(out)
	return out
}
