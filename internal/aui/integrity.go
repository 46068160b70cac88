package aui

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// IntegrityTags holds the optional at-rest tamper-detection tags for
// both matrices, one per column. These are distinct from the sigma
// authentication tags carried inside the AUI itself: sigma tags
// authenticate query answers cryptographically via FX-homomorphism,
// while these tags let a CSP (or the owner) cheaply notice that its
// local copy of the AUI has been altered since it was loaded, without
// running a query.
type IntegrityTags struct {
	Spatial [][]byte // one lambda-byte tag per spatial column
	Keyword [][]byte // one lambda-byte tag per keyword column
}

// TagIntegrity computes HMAC(Kh, "spa|j|" || concat_col_j) for every
// spatial column and HMAC(Kh, "tex|j|" || concat_col_j) for every
// keyword column, where concat_col_j is the row-major concatenation
// of column j's cells across all records.
func TagIntegrity(a *AUI, kh []byte) IntegrityTags {
	return IntegrityTags{
		Spatial: tagMatrix(a.Spatial, "spa", kh, a.Lambda),
		Keyword: tagMatrix(a.Keyword, "tex", kh, a.Lambda),
	}
}

func tagMatrix(m Matrix, prefix string, kh []byte, lambda int) [][]byte {
	cols := m.Columns()
	tags := make([][]byte, cols)
	for j := 0; j < cols; j++ {
		h := hmac.New(sha256.New, kh)
		fmt.Fprintf(h, "%s|%d|", prefix, j)
		for _, row := range m.Cells {
			h.Write(row[j])
		}
		tags[j] = h.Sum(nil)[:lambda]
	}
	return tags
}

// VerifyIntegrity recomputes tags over the current AUI and compares
// them in constant time against want. A mismatch does not itself
// reject a query; it is reported to the caller as advisory evidence
// of tampering at rest; see §7's IntegrityFailure taxonomy for the
// distinct query-time rejection path (internal/client's FX+HMAC
// verifier).
func VerifyIntegrity(a *AUI, kh []byte, want IntegrityTags) error {
	got := TagIntegrity(a, kh)
	if len(got.Spatial) != len(want.Spatial) || len(got.Keyword) != len(want.Keyword) {
		return fmt.Errorf("%w: tag count mismatch", ErrIntegrity)
	}
	for j := range got.Spatial {
		if !hmac.Equal(got.Spatial[j], want.Spatial[j]) {
			return fmt.Errorf("%w: spatial column %d", ErrIntegrity, j)
		}
	}
	for j := range got.Keyword {
		if !hmac.Equal(got.Keyword[j], want.Keyword[j]) {
			return fmt.Errorf("%w: keyword column %d", ErrIntegrity, j)
		}
	}
	return nil
}
