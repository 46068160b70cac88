// Package record turns a raw geo-tagged, keyword-tagged input row into
// the two Garbled Bloom Filters (spatial and keyword) that Setup will
// later encrypt into the authenticated outsourced index.
package record

import (
	"fmt"
	"math"

	"github.com/auroradata-ai/spatiotex/internal/gbf"
)

// Input is one data-owner row: an identifier, coordinates, and a raw
// keyword string.
type Input struct {
	ID       string
	X        float64
	Y        float64
	Keywords string
}

// GridParams controls how coordinates are bucketed into grid cells for
// the spatial GBF.
type GridParams struct {
	CellSizeLat float64
	CellSizeLon float64
}

// FilterParams sizes one GBF (m cells, k hash positions, psi-bit
// fingerprints).
type FilterParams struct {
	M   int
	K   int
	Psi int
}

// Params bundles the spatial and keyword filter shapes plus the grid
// step used to derive spatial cell tokens.
type Params struct {
	Spatial FilterParams
	Keyword FilterParams
	Grid    GridParams
}

// Encoded holds the two per-record GBFs that Setup consumes.
type Encoded struct {
	ID      string
	Spatial *gbf.Filter
	Keyword *gbf.Filter
}

// CellToken renders the grid cell identifier "CELL:R{r}_C{c}".
func CellToken(r, c int) string {
	return fmt.Sprintf("CELL:R%d_C%d", r, c)
}

// CellIndex computes the row/column of the grid cell containing (x,
// y) given the configured cell steps.
func CellIndex(x, y float64, g GridParams) (int, int) {
	return int(math.Floor(x / g.CellSizeLat)), int(math.Floor(y / g.CellSizeLon))
}

// Encode builds the spatial and keyword GBFs for one input row.
//
// The spatial filter is seeded with the exact "x,y" coordinate pair
// and the coarser grid cell token, so a query can match either an
// exact-point token or any cell whose range it falls into. The keyword
// filter is seeded with every normalized token extracted from the raw
// keyword string.
func Encode(in Input, p Params) (*Encoded, error) {
	spatial := gbf.New(p.Spatial.M, p.Spatial.K, p.Spatial.Psi)
	r, c := CellIndex(in.X, in.Y, p.Grid)
	spatialItems := []string{
		fmt.Sprintf("%s,%s", trimFloat(in.X), trimFloat(in.Y)),
		CellToken(r, c),
	}
	for _, it := range spatialItems {
		if err := spatial.Add(it); err != nil {
			return nil, fmt.Errorf("record: spatial add %q: %w", it, err)
		}
	}

	keyword := gbf.New(p.Keyword.M, p.Keyword.K, p.Keyword.Psi)
	for _, tok := range TokenizeNormalized(in.Keywords) {
		if err := keyword.Add(tok); err != nil {
			return nil, fmt.Errorf("record: keyword add %q: %w", tok, err)
		}
	}

	return &Encoded{ID: in.ID, Spatial: spatial, Keyword: keyword}, nil
}

// trimFloat renders a float in its shortest %g form. For values with a
// fractional part this matches Python's str() (40.71 -> "40.71"); a
// whole number has no trailing ".0" (-74.0 -> "-74", where Python
// gives "-74.0").
func trimFloat(f float64) string {
	s := fmt.Sprintf("%g", f)
	return s
}
