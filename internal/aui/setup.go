package aui

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/cuckoo"
	"github.com/auroradata-ai/spatiotex/internal/primitives"
	"github.com/auroradata-ai/spatiotex/internal/record"
)

// Setup builds the authenticated outsourced index and its key tuple
// from a record list and configuration. It is the only place in the
// system that consumes a cryptographic random source; everything else
// downstream is PRF-derived and deterministic.
func Setup(rows []record.Input, cfg *config.Config) (*AUI, *Keys, error) {
	if cfg.U < 2 {
		return nil, nil, fmt.Errorf("%w: U must be >= 2, got %d", ErrConfig, cfg.U)
	}
	n := len(rows)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: empty record set", ErrConfig)
	}

	recParams := record.Params{
		Spatial: toFilterParams(cfg.SpatialBloomFilter),
		Keyword: toFilterParams(cfg.KeywordBloomFilter),
		Grid:    record.GridParams{CellSizeLat: cfg.SpatialGrid.CellSizeLat, CellSizeLon: cfg.SpatialGrid.CellSizeLon},
	}
	lambda := cfg.Lambda
	m1 := cfg.SpatialBloomFilter.Size
	m2 := cfg.KeywordBloomFilter.Size
	chunkLen := cfg.SpatialBloomFilter.Psi / 8
	if chunkLen != cfg.KeywordBloomFilter.Psi/8 {
		return nil, nil, fmt.Errorf("%w: spatial and keyword psi must match (chunk_len), got %d and %d bits",
			ErrConfig, cfg.SpatialBloomFilter.Psi, cfg.KeywordBloomFilter.Psi)
	}

	encoded := make([]*record.Encoded, n)
	ids := make([]string, n)
	for i, in := range rows {
		enc, err := record.Encode(in, recParams)
		if err != nil {
			return nil, nil, fmt.Errorf("aui: encode record %q: %w", in.ID, err)
		}
		encoded[i] = enc
		ids[i] = in.ID
	}

	keys, err := deriveKeys(lambda, cfg.S, n)
	if err != nil {
		return nil, nil, fmt.Errorf("aui: derive keys: %w", err)
	}

	spatialCells := make([][][]byte, n)
	keywordCells := make([][][]byte, n)
	recordKeys := make([][]byte, n)

	for idx := 0; idx < n; idx++ {
		num := idx + 1
		pad := primitives.F(keys.Ke, []byte(strconv.Itoa(num)+ids[idx]), (m1+m2)*chunkLen)

		spRow := make([][]byte, m1)
		bp := encoded[idx].Spatial.Array()
		for j := 0; j < m1; j++ {
			padSlice := pad[j*chunkLen : (j+1)*chunkLen]
			spRow[j] = primitives.XOR(bp[j], padSlice)
		}
		spatialCells[idx] = spRow

		kwRow := make([][]byte, m2)
		bw := encoded[idx].Keyword.Array()
		for j := 0; j < m2; j++ {
			padSlice := pad[(m1+j)*chunkLen : (m1+j+1)*chunkLen]
			kwRow[j] = primitives.XOR(bw[j], padSlice)
		}
		keywordCells[idx] = kwRow

		recordKeys[idx] = primitives.FCEval(keys.Kv, []byte(strconv.Itoa(num)), lambda)
	}

	catIDs := strings.Join(ids, "")

	spatialSigma := make([][]byte, m1)
	for j := 0; j < m1; j++ {
		fxSum := make([]byte, lambda)
		for idx := 0; idx < n; idx++ {
			raw := encoded[idx].Spatial.Array()[j]
			fxSum = primitives.XOR(fxSum, primitives.FX(recordKeys[idx], raw, lambda))
		}
		label := strconv.Itoa(j+1) + catIDs
		spatialSigma[j] = primitives.XOR(fxSum, columnHMAC(keys.Kh, label, lambda))
	}

	keywordSigma := make([][]byte, m2)
	for j := 0; j < m2; j++ {
		fxSum := make([]byte, lambda)
		for idx := 0; idx < n; idx++ {
			raw := encoded[idx].Keyword.Array()[j]
			fxSum = primitives.XOR(fxSum, primitives.FX(recordKeys[idx], raw, lambda))
		}
		label := strconv.Itoa(j+1+m1) + catIDs
		keywordSigma[j] = primitives.XOR(fxSum, columnHMAC(keys.Kh, label, lambda))
	}

	out := &AUI{
		Spatial:   Matrix{Cells: spatialCells, Sigma: spatialSigma},
		Keyword:   Matrix{Cells: keywordCells, Sigma: keywordSigma},
		M1:        m1,
		M2:        m2,
		Lambda:    lambda,
		ChunkLen:  chunkLen,
		U:         cfg.U,
		IDs:       ids,
		KSpa:      cfg.SpatialBloomFilter.HashCount,
		KTex:      cfg.KeywordBloomFilter.HashCount,
		CuckooKw:  cuckooParams(cfg, false),
		CuckooSpa: cuckooParams(cfg, true),
	}
	if err := out.Validate(); err != nil {
		return nil, nil, err
	}
	return out, keys, nil
}

// RecordKey re-derives record idx's per-record key Ki from the key
// tuple. Exposed so the client verifier can recompute FX sums without
// Setup persisting Ki values directly.
func RecordKey(keys *Keys, idx int, lambda int) []byte {
	return primitives.FCEval(keys.Kv, []byte(strconv.Itoa(idx+1)), lambda)
}

// DerivePad re-derives record idx's one-time pad, the same
// F(Ke, str(i)||id_i, (m1+m2)*chunk_len) computed in Setup. The client
// decrypter calls this once per record per query to recover plaintext
// GBF cells from the CSP-combined ciphertext.
func DerivePad(keys *Keys, idx int, id string, m1, m2, chunkLen int) []byte {
	return primitives.F(keys.Ke, []byte(strconv.Itoa(idx+1)+id), (m1+m2)*chunkLen)
}

// ColumnTagLabel renders the HMAC label for a global column index,
// matching the Setup sigma construction exactly.
func ColumnTagLabel(jGlobal int, ids []string) string {
	return strconv.Itoa(jGlobal) + strings.Join(ids, "")
}

// ColumnHMAC exposes the column tag's HMAC half so the client verifier
// can recompute N_{S,ID} without duplicating the construction.
func ColumnHMAC(key []byte, label string, lambda int) []byte {
	return columnHMAC(key, label, lambda)
}

func columnHMAC(key []byte, label string, lambda int) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(label))
	return h.Sum(nil)[:lambda]
}

func cuckooParams(cfg *config.Config, spatial bool) cuckoo.Params {
	if spatial {
		return cuckoo.Params{Kappa: cfg.Cuckoo.KappaSpa, Load: cfg.Cuckoo.LoadSpa, Seed: cfg.Cuckoo.SeedSpa}
	}
	return cuckoo.Params{Kappa: cfg.Cuckoo.KappaKw, Load: cfg.Cuckoo.LoadKw, Seed: cfg.Cuckoo.SeedKw}
}

func toFilterParams(p config.BloomFilterParams) record.FilterParams {
	return record.FilterParams{M: p.Size, K: p.HashCount, Psi: p.Psi}
}

// deriveKeys samples the three master/derived keys per §4.5 step 2-3:
// Ke, Kh, and Kmain are random lambda bytes; Kv is Kmain constrained by
// a random bit-prefix v of length max(0, s - ceil(log2(max(1,n))))
// bits, rounded up to bytes.
func deriveKeys(lambda, s, n int) (*Keys, error) {
	ke, err := randomBytes(lambda)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	kh, err := randomBytes(lambda)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}
	kmain, err := randomBytes(lambda)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	base := n
	if base < 1 {
		base = 1
	}
	prefixBits := s - ceilLog2(base)
	if prefixBits < 0 {
		prefixBits = 0
	}
	prefixBytes := (prefixBits + 7) / 8
	v, err := randomBytes(prefixBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	kv := primitives.FCCons(kmain, v, lambda)
	return &Keys{Ke: ke, Kv: kv, Kh: kh}, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if n == 0 {
		return b, nil
	}
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ceilLog2 returns ceil(log2(n)) for n >= 1.
func ceilLog2(n int) int {
	return bits.Len(uint(n - 1))
}
