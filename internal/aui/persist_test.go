package aui

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestAUIMarshalRoundTrip(t *testing.T) {
	a, _, err := Setup(testRows(), testConfig())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	data, err := MarshalAUI(a)
	if err != nil {
		t.Fatalf("MarshalAUI: %v", err)
	}
	got, err := UnmarshalAUI(data)
	if err != nil {
		t.Fatalf("UnmarshalAUI: %v", err)
	}
	if got.M1 != a.M1 || got.M2 != a.M2 || got.Lambda != a.Lambda || got.U != a.U {
		t.Fatalf("shape mismatch after round trip: got %+v", got)
	}
	for i := range a.Spatial.Cells {
		for j := range a.Spatial.Cells[i] {
			if !bytes.Equal(a.Spatial.Cells[i][j], got.Spatial.Cells[i][j]) {
				t.Fatalf("spatial cell [%d][%d] mismatch after round trip", i, j)
			}
		}
	}
	for j := range a.Keyword.Sigma {
		if !bytes.Equal(a.Keyword.Sigma[j], got.Keyword.Sigma[j]) {
			t.Fatalf("keyword sigma[%d] mismatch after round trip", j)
		}
	}
}

func TestAUIFileRoundTrip(t *testing.T) {
	a, keys, err := Setup(testRows(), testConfig())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	dir := t.TempDir()
	auiPath := filepath.Join(dir, "index.json")
	keysPath := filepath.Join(dir, "keys.json")

	if err := SaveAUIFile(auiPath, a); err != nil {
		t.Fatalf("SaveAUIFile: %v", err)
	}
	if err := SaveKeysFile(keysPath, keys); err != nil {
		t.Fatalf("SaveKeysFile: %v", err)
	}

	gotAUI, err := LoadAUIFile(auiPath)
	if err != nil {
		t.Fatalf("LoadAUIFile: %v", err)
	}
	if len(gotAUI.IDs) != len(a.IDs) {
		t.Fatalf("ids length mismatch: got %d, want %d", len(gotAUI.IDs), len(a.IDs))
	}

	gotKeys, err := LoadKeysFile(keysPath)
	if err != nil {
		t.Fatalf("LoadKeysFile: %v", err)
	}
	if !bytes.Equal(gotKeys.Ke, keys.Ke) || !bytes.Equal(gotKeys.Kv, keys.Kv) || !bytes.Equal(gotKeys.Kh, keys.Kh) {
		t.Fatalf("key tuple mismatch after round trip")
	}
}
