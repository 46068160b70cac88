package dataset

import (
	"fmt"

	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/record"
)

// Load dispatches to LoadCSV or a Postgres query depending on
// cfg.Type, returning the full set of data-owner rows to index.
func Load(cfg config.DatabaseConfig) ([]record.Input, error) {
	switch cfg.Type {
	case "csv", "":
		return LoadCSV(cfg.Filename)
	case "postgres":
		src, err := OpenPostgres(cfg)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.LoadAll()
	default:
		return nil, fmt.Errorf("dataset: unknown database type %q", cfg.Type)
	}
}
