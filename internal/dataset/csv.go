package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"car-price-api/internal/domain"
)

// CSV implementa Accessor contra el archivo plano de avisos. Cada consulta
// relee el archivo; el caching con TTL vive en la capa de metadatos.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// table es el CSV ya parseado, indexado por nombre de columna.
type table struct {
	columns map[string]int
	rows    [][]string
}

func (c *CSV) load() (*table, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, c.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrMalformed, c.path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrMalformed, c.path)
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required columns: %s", ErrMalformed, strings.Join(missing, ", "))
	}

	return &table{columns: columns, rows: records[1:]}, nil
}

func (t *table) cell(row []string, field string) string {
	idx := t.columns[field]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (c *CSV) DistinctValues(ctx context.Context, field string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tbl, err := c.load()
	if err != nil {
		return nil, err
	}
	if _, ok := tbl.columns[field]; !ok {
		return nil, fmt.Errorf("%w: unknown column %q", ErrMalformed, field)
	}

	seen := make(map[string]struct{})
	values := []string{}
	for _, row := range tbl.rows {
		v := tbl.cell(row, field)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

func (c *CSV) Range(ctx context.Context, field string) (domain.NumericRange, error) {
	if err := ctx.Err(); err != nil {
		return domain.NumericRange{}, err
	}
	tbl, err := c.load()
	if err != nil {
		return domain.NumericRange{}, err
	}
	if _, ok := tbl.columns[field]; !ok {
		return domain.NumericRange{}, fmt.Errorf("%w: unknown column %q", ErrMalformed, field)
	}

	var rng domain.NumericRange
	for _, row := range tbl.rows {
		cell := tbl.cell(row, field)
		if cell == "" {
			continue
		}
		n, err := strconv.Atoi(cell)
		if err != nil {
			return domain.NumericRange{}, fmt.Errorf("%w: column %q has non-integer value %q", ErrMalformed, field, cell)
		}
		if rng.Min == nil || n < *rng.Min {
			v := n
			rng.Min = &v
		}
		if rng.Max == nil || n > *rng.Max {
			v := n
			rng.Max = &v
		}
	}
	return rng, nil
}

func (c *CSV) DistinctPairs(ctx context.Context, fieldA, fieldB string) ([][2]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tbl, err := c.load()
	if err != nil {
		return nil, err
	}
	for _, field := range []string{fieldA, fieldB} {
		if _, ok := tbl.columns[field]; !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrMalformed, field)
		}
	}

	seen := make(map[[2]string]struct{})
	pairs := [][2]string{}
	for _, row := range tbl.rows {
		pair := [2]string{tbl.cell(row, fieldA), tbl.cell(row, fieldB)}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}
