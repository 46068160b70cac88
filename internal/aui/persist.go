package aui

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/auroradata-ai/spatiotex/internal/cuckoo"
)

// wireAUI is the JSON-over-base64 framing for AUI: binary fields
// base64-encoded inside a JSON envelope. Any deterministic framing
// round-trips correctly; this one is chosen for readability and easy
// inspection of a persisted index on disk.
type wireAUI struct {
	Spatial   wireMatrix `json:"spatial"`
	Keyword   wireMatrix `json:"keyword"`
	M1        int        `json:"m1"`
	M2        int        `json:"m2"`
	Lambda    int        `json:"lambda"`
	ChunkLen  int        `json:"chunk_len"`
	U         int        `json:"u"`
	IDs       []string   `json:"ids"`
	KSpa      int        `json:"k_spa"`
	KTex      int        `json:"k_tex"`
	CuckooKw  wireCuckoo `json:"cuckoo_kw"`
	CuckooSpa wireCuckoo `json:"cuckoo_spa"`
}

type wireMatrix struct {
	Cells [][]string `json:"cells"` // base64 per cell
	Sigma []string   `json:"sigma"` // base64 per column tag
}

type wireCuckoo struct {
	Kappa int     `json:"kappa"`
	Load  float64 `json:"load"`
	Seed  string  `json:"seed"`
}

type wireKeys struct {
	Ke string `json:"ke"`
	Kv string `json:"kv"`
	Kh string `json:"kh"`
}

// MarshalAUI serializes a into a deterministic JSON blob.
func MarshalAUI(a *AUI) ([]byte, error) {
	w := wireAUI{
		Spatial:   marshalMatrix(a.Spatial),
		Keyword:   marshalMatrix(a.Keyword),
		M1:        a.M1,
		M2:        a.M2,
		Lambda:    a.Lambda,
		ChunkLen:  a.ChunkLen,
		U:         a.U,
		IDs:       a.IDs,
		KSpa:      a.KSpa,
		KTex:      a.KTex,
		CuckooKw:  marshalCuckoo(a.CuckooKw),
		CuckooSpa: marshalCuckoo(a.CuckooSpa),
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("aui: marshal: %w", err)
	}
	return data, nil
}

// UnmarshalAUI parses a blob produced by MarshalAUI and validates its
// shape invariants before returning it.
func UnmarshalAUI(data []byte) (*AUI, error) {
	var w wireAUI
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("aui: unmarshal: %w", err)
	}
	spatial, err := unmarshalMatrix(w.Spatial)
	if err != nil {
		return nil, fmt.Errorf("aui: unmarshal spatial matrix: %w", err)
	}
	keyword, err := unmarshalMatrix(w.Keyword)
	if err != nil {
		return nil, fmt.Errorf("aui: unmarshal keyword matrix: %w", err)
	}

	out := &AUI{
		Spatial:   spatial,
		Keyword:   keyword,
		M1:        w.M1,
		M2:        w.M2,
		Lambda:    w.Lambda,
		ChunkLen:  w.ChunkLen,
		U:         w.U,
		IDs:       w.IDs,
		KSpa:      w.KSpa,
		KTex:      w.KTex,
		CuckooKw:  unmarshalCuckoo(w.CuckooKw),
		CuckooSpa: unmarshalCuckoo(w.CuckooSpa),
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveAUIFile writes the serialized AUI to path.
func SaveAUIFile(path string, a *AUI) error {
	data, err := MarshalAUI(a)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("aui: write %s: %w", path, err)
	}
	return nil
}

// LoadAUIFile reads and parses an AUI previously written by
// SaveAUIFile.
func LoadAUIFile(path string) (*AUI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aui: read %s: %w", path, err)
	}
	return UnmarshalAUI(data)
}

// MarshalKeys serializes the key tuple. Callers are responsible for
// keeping the resulting blob off of any CSP-reachable storage.
func MarshalKeys(k *Keys) ([]byte, error) {
	w := wireKeys{
		Ke: base64.StdEncoding.EncodeToString(k.Ke),
		Kv: base64.StdEncoding.EncodeToString(k.Kv),
		Kh: base64.StdEncoding.EncodeToString(k.Kh),
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("aui: marshal keys: %w", err)
	}
	return data, nil
}

// UnmarshalKeys parses a blob produced by MarshalKeys.
func UnmarshalKeys(data []byte) (*Keys, error) {
	var w wireKeys
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("aui: unmarshal keys: %w", err)
	}
	ke, err := base64.StdEncoding.DecodeString(w.Ke)
	if err != nil {
		return nil, fmt.Errorf("aui: decode Ke: %w", err)
	}
	kv, err := base64.StdEncoding.DecodeString(w.Kv)
	if err != nil {
		return nil, fmt.Errorf("aui: decode Kv: %w", err)
	}
	kh, err := base64.StdEncoding.DecodeString(w.Kh)
	if err != nil {
		return nil, fmt.Errorf("aui: decode Kh: %w", err)
	}
	return &Keys{Ke: ke, Kv: kv, Kh: kh}, nil
}

// SaveKeysFile writes the serialized key tuple to path with owner-only
// permissions.
func SaveKeysFile(path string, k *Keys) error {
	data, err := MarshalKeys(k)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("aui: write %s: %w", path, err)
	}
	return nil
}

// LoadKeysFile reads and parses a key tuple previously written by
// SaveKeysFile.
func LoadKeysFile(path string) (*Keys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("aui: read %s: %w", path, err)
	}
	return UnmarshalKeys(data)
}

func marshalMatrix(m Matrix) wireMatrix {
	cells := make([][]string, len(m.Cells))
	for i, row := range m.Cells {
		cells[i] = make([]string, len(row))
		for j, cell := range row {
			cells[i][j] = base64.StdEncoding.EncodeToString(cell)
		}
	}
	sigma := make([]string, len(m.Sigma))
	for j, tag := range m.Sigma {
		sigma[j] = base64.StdEncoding.EncodeToString(tag)
	}
	return wireMatrix{Cells: cells, Sigma: sigma}
}

func unmarshalMatrix(w wireMatrix) (Matrix, error) {
	cells := make([][][]byte, len(w.Cells))
	for i, row := range w.Cells {
		cells[i] = make([][]byte, len(row))
		for j, enc := range row {
			b, err := base64.StdEncoding.DecodeString(enc)
			if err != nil {
				return Matrix{}, fmt.Errorf("cell[%d][%d]: %w", i, j, err)
			}
			cells[i][j] = b
		}
	}
	sigma := make([][]byte, len(w.Sigma))
	for j, enc := range w.Sigma {
		b, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return Matrix{}, fmt.Errorf("sigma[%d]: %w", j, err)
		}
		sigma[j] = b
	}
	return Matrix{Cells: cells, Sigma: sigma}, nil
}

func marshalCuckoo(p cuckoo.Params) wireCuckoo {
	return wireCuckoo{Kappa: p.Kappa, Load: p.Load, Seed: p.Seed}
}

func unmarshalCuckoo(w wireCuckoo) cuckoo.Params {
	return cuckoo.Params{Kappa: w.Kappa, Load: w.Load, Seed: w.Seed}
}
