// Package aui builds, authenticates, and persists the Authenticated
// Outsourced Index: the columnar, one-time-pad-encrypted matrices and
// per-column authentication tags that get replicated to every Compute
// Service Provider, plus the key tuple retained only by the data
// owner / client.
package aui

import (
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/cuckoo"
)

// Matrix is one of the two columnar index matrices (spatial or
// keyword): n rows (one per record, in AUI.IDs order), each row
// holding the matrix's column count of chunk_len-byte cells, plus one
// lambda-byte authentication tag per column.
type Matrix struct {
	Cells [][][]byte // Cells[i][j] is record i's encrypted cell at column j.
	Sigma [][]byte   // Sigma[j] is the lambda-byte tag for column j.
}

// Columns returns the column count of the matrix.
func (m Matrix) Columns() int {
	if len(m.Sigma) > 0 {
		return len(m.Sigma)
	}
	if len(m.Cells) > 0 {
		return len(m.Cells[0])
	}
	return 0
}

// AUI is the full authenticated outsourced index: both matrices plus
// the shape parameters a CSP or client needs to interpret them. It
// carries no keys; it is the part of the system replicated to every
// party.
type AUI struct {
	Spatial Matrix
	Keyword Matrix

	M1, M2   int // column counts of Spatial, Keyword
	Lambda   int // tag width in bytes
	ChunkLen int // cell width in bytes (psi/8)
	U        int // party count

	IDs []string // record identifiers, row order shared by both matrices

	KSpa, KTex int // hash-position counts for spatial / keyword GBFs

	CuckooKw  cuckoo.Params
	CuckooSpa cuckoo.Params
}

// Keys is the key tuple retained only by the client/data owner; never
// serialized alongside the AUI itself.
type Keys struct {
	Ke []byte // pad derivation master key
	Kv []byte // per-record key derivation base (constrained from Kmain)
	Kh []byte // column HMAC key
}

// Validate checks the shape invariants every AUI must satisfy:
// uniform cell and tag widths, matching row counts, and a party count
// of at least two. A shape violation here is a fatal bug, not a user
// error; AUIs are built in one place (Setup) and never mutated.
func (a *AUI) Validate() error {
	n := len(a.IDs)
	if a.U < 2 {
		return fmt.Errorf("%w: U=%d, want >= 2", ErrShape, a.U)
	}
	if len(a.Spatial.Cells) != n || len(a.Keyword.Cells) != n {
		return fmt.Errorf("%w: row count mismatch: ids=%d spatial=%d keyword=%d",
			ErrShape, n, len(a.Spatial.Cells), len(a.Keyword.Cells))
	}
	if a.Spatial.Columns() != a.M1 || a.Keyword.Columns() != a.M2 {
		return fmt.Errorf("%w: column count mismatch: spatial=%d (want %d) keyword=%d (want %d)",
			ErrShape, a.Spatial.Columns(), a.M1, a.Keyword.Columns(), a.M2)
	}
	for i, row := range a.Spatial.Cells {
		if len(row) != a.M1 {
			return fmt.Errorf("%w: spatial row %d has %d columns, want %d", ErrShape, i, len(row), a.M1)
		}
		for j, cell := range row {
			if len(cell) != a.ChunkLen {
				return fmt.Errorf("%w: spatial[%d][%d] has %d bytes, want %d", ErrShape, i, j, len(cell), a.ChunkLen)
			}
		}
	}
	for i, row := range a.Keyword.Cells {
		if len(row) != a.M2 {
			return fmt.Errorf("%w: keyword row %d has %d columns, want %d", ErrShape, i, len(row), a.M2)
		}
		for j, cell := range row {
			if len(cell) != a.ChunkLen {
				return fmt.Errorf("%w: keyword[%d][%d] has %d bytes, want %d", ErrShape, i, j, len(cell), a.ChunkLen)
			}
		}
	}
	for j, tag := range a.Spatial.Sigma {
		if len(tag) != a.Lambda {
			return fmt.Errorf("%w: spatial sigma[%d] has %d bytes, want %d", ErrShape, j, len(tag), a.Lambda)
		}
	}
	for j, tag := range a.Keyword.Sigma {
		if len(tag) != a.Lambda {
			return fmt.Errorf("%w: keyword sigma[%d] has %d bytes, want %d", ErrShape, j, len(tag), a.Lambda)
		}
	}
	return nil
}
