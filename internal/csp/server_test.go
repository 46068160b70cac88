package csp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auroradata-ai/spatiotex/internal/aui"
)

func TestServerLoadIndexThenEval(t *testing.T) {
	a := testSetup(t)
	data, err := aui.MarshalAUI(a)
	if err != nil {
		t.Fatalf("MarshalAUI: %v", err)
	}

	s := NewServer()
	loadBody, _ := json.Marshal(map[string]string{"aui_b64": base64.StdEncoding.EncodeToString(data)})
	req := httptest.NewRequest(http.MethodPost, "/load_index", bytes.NewReader(loadBody))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("load_index status = %d, body = %s", rr.Code, rr.Body.String())
	}

	evalBody, _ := json.Marshal(map[string]interface{}{
		"party_id": 0,
		"tokens": []map[string]interface{}{
			{"type": "kw", "buckets": []map[string]interface{}{
				{"columns": []int{0, 1}, "bits": []int{1, 0}},
			}},
		},
	})
	req = httptest.NewRequest(http.MethodPost, "/eval", bytes.NewReader(evalBody))
	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("eval status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp evalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.ResultShares) != 1 || len(resp.ProofShares) != 1 {
		t.Fatalf("unexpected response shape: %+v", resp)
	}
}

func TestServerEvalWithoutIndexLoadedFails(t *testing.T) {
	s := NewServer()
	body, _ := json.Marshal(map[string]interface{}{"party_id": 0, "tokens": []interface{}{}})
	req := httptest.NewRequest(http.MethodPost, "/eval", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestServerHealthzWithoutIndex(t *testing.T) {
	s := NewServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
