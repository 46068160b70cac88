package dataset

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/record"
)

// PostgresSource reads data-owner rows out of a Postgres table with
// id, x, y, and keywords columns.
type PostgresSource struct {
	db    *sql.DB
	table string
}

// OpenPostgres connects to the database described by cfg and verifies
// the connection with a ping.
func OpenPostgres(cfg config.DatabaseConfig) (*PostgresSource, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=require",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("dataset: open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("dataset: ping postgres: %w", err)
	}

	return &PostgresSource{db: db, table: cfg.Table}, nil
}

// LoadAll reads every row from the configured table.
func (s *PostgresSource) LoadAll() ([]record.Input, error) {
	query := fmt.Sprintf("SELECT id, x, y, keywords FROM %s ORDER BY id", s.table)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("dataset: query %s: %w", s.table, err)
	}
	defer rows.Close()

	var out []record.Input
	for rows.Next() {
		var in record.Input
		if err := rows.Scan(&in.ID, &in.X, &in.Y, &in.Keywords); err != nil {
			return nil, fmt.Errorf("dataset: scan row: %w", err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset: iterate rows: %w", err)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
