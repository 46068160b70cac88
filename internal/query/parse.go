// Package query turns a raw query string into per-party DMPF
// dispatch payloads: parsing the keyword/spatial grammar, expanding a
// spatial range into grid cell tokens, padding the keyword list against
// count leakage, and bucketizing each token's selection indices.
package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/auroradata-ai/spatiotex/internal/record"
)

// Range is an inclusive spatial bounding box in the query grammar's
// lat_min,lon_min,lat_max,lon_max order.
type Range struct {
	LatMin, LonMin, LatMax, LonMax float64
}

// Parsed holds the two independent parts of a query: the normalized
// keyword token list and an optional spatial range.
type Parsed struct {
	KeywordTokens []string
	Spatial       *Range
}

// Parse splits raw on the "R:" delimiter, normalizes the keyword
// segment, and parses an optional spatial range from the remainder.
func Parse(raw string) (Parsed, error) {
	keywordPart := raw
	var rangePart string
	hasRange := false
	if idx := strings.Index(raw, "R:"); idx >= 0 {
		keywordPart = raw[:idx]
		rangePart = strings.TrimSpace(raw[idx+len("R:"):])
		hasRange = true
	}

	keywordPart = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(keywordPart), ";"))
	keywordPart = strings.TrimSpace(keywordPart)

	tokens := record.TokenizeNormalized(keywordPart)
	if len(tokens) == 0 {
		if hasRange {
			tokens = nil // spatial-only query: kw AND gate stays open
		} else {
			tokens = []string{record.NormalizeToken(raw)}
		}
	}

	parsed := Parsed{KeywordTokens: tokens}
	if hasRange {
		r, err := parseRange(rangePart)
		if err != nil {
			return Parsed{}, err
		}
		parsed.Spatial = &r
	}
	return parsed, nil
}

func parseRange(s string) (Range, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Range{}, &ParseError{Input: s, Reason: "spatial range must have exactly 4 comma-separated values"}
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Range{}, &ParseError{Input: s, Reason: "non-numeric range value: " + p}
		}
		vals[i] = v
	}
	latMin, lonMin, latMax, lonMax := vals[0], vals[1], vals[2], vals[3]
	if latMin > latMax {
		latMin, latMax = latMax, latMin
	}
	if lonMin > lonMax {
		lonMin, lonMax = lonMax, lonMin
	}
	return Range{LatMin: latMin, LonMin: lonMin, LatMax: latMax, LonMax: lonMax}, nil
}

// ParseError reports a malformed query string.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return "query: " + e.Reason + ": " + e.Input
}

// ExpandCells enumerates every grid cell token in r at the given grid
// step, inclusive of both bounds.
func ExpandCells(r Range, grid record.GridParams) []string {
	rMin := int(math.Floor(r.LatMin / grid.CellSizeLat))
	rMax := int(math.Floor(r.LatMax / grid.CellSizeLat))
	cMin := int(math.Floor(r.LonMin / grid.CellSizeLon))
	cMax := int(math.Floor(r.LonMax / grid.CellSizeLon))

	var cells []string
	for row := rMin; row <= rMax; row++ {
		for col := cMin; col <= cMax; col++ {
			cells = append(cells, record.CellToken(row, col))
		}
	}
	return cells
}
