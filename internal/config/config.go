// Package config loads the YAML configuration shared by the setup,
// CSP, and query CLIs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BloomFilterParams sizes one Garbled Bloom Filter.
type BloomFilterParams struct {
	Size      int `yaml:"size"`
	HashCount int `yaml:"hash_count"`
	Psi       int `yaml:"psi"`
}

// SpatialGridParams controls how coordinates collapse into grid cell
// tokens for the spatial filter.
type SpatialGridParams struct {
	CellSizeLat float64 `yaml:"cell_size_lat"`
	CellSizeLon float64 `yaml:"cell_size_lon"`
}

// SuppressionParams controls dummy-token query padding.
type SuppressionParams struct {
	EnablePadding bool `yaml:"enable_padding"`
	MaxRBlocks    int  `yaml:"max_r_blocks"`
}

// CuckooParams controls bucketization for both the keyword and spatial
// matrices.
type CuckooParams struct {
	KappaKw  int     `yaml:"kappa_kw"`
	LoadKw   float64 `yaml:"load_kw"`
	SeedKw   string  `yaml:"seed_kw"`
	KappaSpa int     `yaml:"kappa_spa"`
	LoadSpa  float64 `yaml:"load_spa"`
	SeedSpa  string  `yaml:"seed_spa"`
}

// DatabaseConfig describes where data-owner rows come from: either a
// CSV file or a Postgres table.
type DatabaseConfig struct {
	Type     string `yaml:"type"` // "csv" or "postgres"
	Filename string `yaml:"filename"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Table    string `yaml:"table"`
}

// CSPConfig lists the base URLs of the U cloud service providers the
// query command dispatches DMPF shares to, and the listen address a
// serve-csp process uses.
type CSPConfig struct {
	PartyURLs []string `yaml:"party_urls"`
	ListenAddr string  `yaml:"listen_addr"`
}

// LoggingConfig configures internal/telemetry.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	EnableAudit bool   `yaml:"enable_audit"`
	AuditFile   string `yaml:"audit_file"`
}

// Config is the root configuration object, loaded once at process
// start by every command in cmd/spatiotex.
type Config struct {
	Lambda             int               `yaml:"lambda"`
	S                  int               `yaml:"s"`
	U                  int               `yaml:"U"`
	SpatialBloomFilter BloomFilterParams `yaml:"spatial_bloom_filter"`
	KeywordBloomFilter BloomFilterParams `yaml:"keyword_bloom_filter"`
	SpatialGrid        SpatialGridParams `yaml:"spatial_grid"`
	Suppression        SuppressionParams `yaml:"suppression"`
	Cuckoo             CuckooParams      `yaml:"cuckoo"`
	Database           DatabaseConfig    `yaml:"database"`
	CSP                CSPConfig         `yaml:"csp"`
	Logging            LoggingConfig     `yaml:"logging"`
}

// SetDefaults fills in every field left zero-valued after unmarshal
// with the defaults from the parameter table.
func (c *Config) SetDefaults() {
	if c.Lambda == 0 {
		c.Lambda = 16
	}
	if c.S == 0 {
		c.S = 64
	}
	if c.U == 0 {
		c.U = 3
	}

	if c.SpatialBloomFilter.Size == 0 {
		c.SpatialBloomFilter.Size = 200
	}
	if c.SpatialBloomFilter.HashCount == 0 {
		c.SpatialBloomFilter.HashCount = 3
	}
	if c.SpatialBloomFilter.Psi == 0 {
		c.SpatialBloomFilter.Psi = 32
	}

	if c.KeywordBloomFilter.Size == 0 {
		c.KeywordBloomFilter.Size = 200
	}
	if c.KeywordBloomFilter.HashCount == 0 {
		c.KeywordBloomFilter.HashCount = 4
	}
	if c.KeywordBloomFilter.Psi == 0 {
		c.KeywordBloomFilter.Psi = 32
	}

	if c.SpatialGrid.CellSizeLat == 0 {
		c.SpatialGrid.CellSizeLat = 0.5
	}
	if c.SpatialGrid.CellSizeLon == 0 {
		c.SpatialGrid.CellSizeLon = 0.5
	}

	if c.Suppression.MaxRBlocks == 0 {
		c.Suppression.MaxRBlocks = 4
	}
	// EnablePadding defaults true; only an explicit "false" in the YAML
	// (which yaml.v3 will have already applied before SetDefaults runs)
	// turns it off, so there's nothing to default here beyond leaving
	// the zero value (false) alone when the key was present. Since we
	// cannot distinguish "absent" from "false" on a bare bool after
	// unmarshal, the loader applies this default before unmarshalling
	// by pre-seeding the struct; see Load.

	if c.Cuckoo.KappaKw == 0 {
		c.Cuckoo.KappaKw = 3
	}
	if c.Cuckoo.LoadKw == 0 {
		c.Cuckoo.LoadKw = 1.27
	}
	if c.Cuckoo.SeedKw == "" {
		c.Cuckoo.SeedKw = "cuckoo-seed"
	}
	if c.Cuckoo.KappaSpa == 0 {
		c.Cuckoo.KappaSpa = 3
	}
	if c.Cuckoo.LoadSpa == 0 {
		c.Cuckoo.LoadSpa = 1.27
	}
	if c.Cuckoo.SeedSpa == "" {
		c.Cuckoo.SeedSpa = "cuckoo-seed-spa"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Load reads path, unmarshals it into a Config, and applies defaults
// for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{Suppression: SuppressionParams{EnablePadding: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}
