package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/auroradata-ai/spatiotex/internal/record"
)

// LoadCSV reads a data-owner CSV file into record inputs. The file
// must have a header row naming the columns id, x, y, and keywords (in
// any order); keywords is a free-text, comma-or-space separated field.
func LoadCSV(path string) ([]record.Input, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("dataset: read header of %s: %w", path, err)
	}
	col, err := columnIndex(header)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}

	var rows []record.Input
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read row of %s: %w", path, err)
		}

		x, err := strconv.ParseFloat(rec[col.x], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %q: bad x: %w", rec[col.id], err)
		}
		y, err := strconv.ParseFloat(rec[col.y], 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: row %q: bad y: %w", rec[col.id], err)
		}

		rows = append(rows, record.Input{
			ID:       rec[col.id],
			X:        x,
			Y:        y,
			Keywords: rec[col.keywords],
		})
	}
	return rows, nil
}

type columns struct {
	id, x, y, keywords int
}

func columnIndex(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	c := columns{}
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{"id", &c.id}, {"x", &c.x}, {"y", &c.y}, {"keywords", &c.keywords},
	} {
		i, ok := idx[want.name]
		if !ok {
			return columns{}, fmt.Errorf("missing required column %q", want.name)
		}
		*want.dst = i
	}
	return c, nil
}
