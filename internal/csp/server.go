package csp

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/telemetry"
)

// Server exposes one CSP's evaluator over HTTP: POST /eval to
// evaluate a dispatch, POST /load_index to (re)load the AUI this
// party holds, and GET /healthz for an advisory integrity self-check.
type Server struct {
	router *chi.Mux

	mu   sync.RWMutex
	aui  *aui.AUI
	tags *aui.IntegrityTags
	kh   []byte // only held once SetIntegrityBaseline supplied an integrity check key
}

// NewServer builds a Server with no AUI loaded yet; call POST
// /load_index before /eval will succeed.
func NewServer() *Server {
	s := &Server{router: chi.NewRouter()}
	s.router.Use(middleware.Recoverer)
	s.router.Post("/eval", s.handleEval)
	s.router.Post("/load_index", s.handleLoadIndex)
	s.router.Get("/healthz", s.handleHealthz)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type evalRequest struct {
	PartyID       int         `json:"party_id"`
	Tokens        []tokenWire `json:"tokens"`
	SecurityParam int         `json:"security_param"`
}

type tokenWire struct {
	Type    string       `json:"type"`
	Buckets []bucketWire `json:"buckets"`
}

type bucketWire struct {
	Columns []int `json:"columns"`
	Bits    []int `json:"bits"`
}

type evalResponse struct {
	ResultShares [][]string `json:"result_shares"`
	ProofShares  []string   `json:"proof_shares"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.RLock()
	index := s.aui
	s.mu.RUnlock()
	if index == nil {
		writeError(w, http.StatusServiceUnavailable, aui.ErrConfig)
		return
	}

	tokens := make([]TokenRequest, len(req.Tokens))
	for i, tw := range req.Tokens {
		buckets := make([]Bucket, len(tw.Buckets))
		for j, bw := range tw.Buckets {
			bits := make([]byte, len(bw.Bits))
			for k, b := range bw.Bits {
				bits[k] = byte(b)
			}
			buckets[j] = Bucket{Columns: bw.Columns, Bits: bits}
		}
		tokens[i] = TokenRequest{Type: tw.Type, Buckets: buckets}
	}

	results, err := Evaluate(index, tokens)
	if err != nil {
		telemetry.Error("csp: eval failed for party %d: %v", req.PartyID, err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp := evalResponse{
		ResultShares: make([][]string, len(results)),
		ProofShares:  make([]string, len(results)),
	}
	for t, res := range results {
		row := make([]string, len(res.Vec))
		for i, chunk := range res.Vec {
			row[i] = base64.StdEncoding.EncodeToString(chunk)
		}
		resp.ResultShares[t] = row
		resp.ProofShares[t] = base64.StdEncoding.EncodeToString(res.Proof)
	}

	writeJSON(w, http.StatusOK, resp)
}

type loadIndexRequest struct {
	AUIBase64 string `json:"aui_b64"`
	AUIPath   string `json:"aui_path"`
}

func (s *Server) handleLoadIndex(w http.ResponseWriter, r *http.Request) {
	var req loadIndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var data []byte
	var err error
	switch {
	case req.AUIPath != "":
		loaded, loadErr := aui.LoadAUIFile(req.AUIPath)
		if loadErr != nil {
			writeError(w, http.StatusBadRequest, loadErr)
			return
		}
		s.setIndex(loaded)
		telemetry.Info("csp: loaded index from %s (%d records)", req.AUIPath, len(loaded.IDs))
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	case req.AUIBase64 != "":
		data, err = base64.StdEncoding.DecodeString(req.AUIBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	default:
		writeError(w, http.StatusBadRequest, aui.ErrConfig)
		return
	}

	loaded, err := aui.UnmarshalAUI(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.setIndex(loaded)
	telemetry.Info("csp: loaded index from inline payload (%d records)", len(loaded.IDs))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoadIndexFile reads an AUI from disk and installs it, the same
// index every /eval call after this point will be evaluated against.
// Lets a process load its index at startup without a loopback HTTP
// call to itself.
func (s *Server) LoadIndexFile(path string) error {
	loaded, err := aui.LoadAUIFile(path)
	if err != nil {
		return err
	}
	s.setIndex(loaded)
	return nil
}

func (s *Server) setIndex(a *aui.AUI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aui = a
	s.tags = nil
}

// SetIntegrityBaseline records the integrity tags and HMAC key this
// party should use for its /healthz self-check. Optional: without it,
// /healthz only reports whether an index is loaded.
func (s *Server) SetIntegrityBaseline(tags aui.IntegrityTags, kh []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = &tags
	s.kh = kh
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	index, tags, kh := s.aui, s.tags, s.kh
	s.mu.RUnlock()

	if index == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "no_index"})
		return
	}
	if tags == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "integrity": "unchecked"})
		return
	}
	if err := aui.VerifyIntegrity(index, kh, *tags); err != nil {
		telemetry.Audit("integrity_check_failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "integrity": "failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "integrity": "passed"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
