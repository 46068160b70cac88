package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("lambda: 24\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lambda != 24 {
		t.Errorf("Lambda = %d, want 24 (explicit override preserved)", cfg.Lambda)
	}
	if cfg.S != 64 {
		t.Errorf("S default = %d, want 64", cfg.S)
	}
	if cfg.U != 3 {
		t.Errorf("U default = %d, want 3", cfg.U)
	}
	if cfg.SpatialBloomFilter != (BloomFilterParams{Size: 200, HashCount: 3, Psi: 32}) {
		t.Errorf("spatial_bloom_filter defaults wrong: %+v", cfg.SpatialBloomFilter)
	}
	if cfg.KeywordBloomFilter != (BloomFilterParams{Size: 200, HashCount: 4, Psi: 32}) {
		t.Errorf("keyword_bloom_filter defaults wrong: %+v", cfg.KeywordBloomFilter)
	}
	if cfg.SpatialGrid != (SpatialGridParams{CellSizeLat: 0.5, CellSizeLon: 0.5}) {
		t.Errorf("spatial_grid defaults wrong: %+v", cfg.SpatialGrid)
	}
	if !cfg.Suppression.EnablePadding || cfg.Suppression.MaxRBlocks != 4 {
		t.Errorf("suppression defaults wrong: %+v", cfg.Suppression)
	}
	if cfg.Cuckoo.SeedKw != "cuckoo-seed" || cfg.Cuckoo.SeedSpa != "cuckoo-seed-spa" {
		t.Errorf("cuckoo seed defaults wrong: %+v", cfg.Cuckoo)
	}
	if cfg.Cuckoo.LoadKw != 1.27 || cfg.Cuckoo.LoadSpa != 1.27 {
		t.Errorf("cuckoo load defaults wrong: %+v", cfg.Cuckoo)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging level default = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadExplicitSuppressionDisable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("suppression:\n  enable_padding: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Suppression.EnablePadding {
		t.Errorf("explicit enable_padding: false was overridden by the default")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
