// Command validate performs integrity checks on a collision CSV and, when
// given, a matrix JSON produced by the heatmap command (MATRIX_OUTPUT_PATH).
// It verifies the header schema, reports rows the loader would silently drop,
// and re-derives the city-by-hour matrix to check its invariants.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/collisions_2024_transformed_data.csv \
//	  -matrix-json out/matrix.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/collision-heatmap/internal/domain"
)

// expectedColumns are all columns the loader reads.
var expectedColumns = []string{
	domain.ColumnCity,
	domain.ColumnTime,
	domain.ColumnSeverity,
	domain.ColumnCasualties,
	domain.ColumnVehicles,
	domain.ColumnLongitude,
	domain.ColumnLatitude,
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "path to the collision CSV")
	matrixJSON := flag.String("matrix-json", "", "optional path to a matrix JSON written by the heatmap command")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(os.Stdout, *csvPath, *matrixJSON, domain.DefaultFilterSet()); code != 0 {
		os.Exit(code)
	}
}

func run(out io.Writer, csvPath, matrixPath string, filter domain.FilterSet) int {
	fmt.Fprintln(out, "=== Collision Data Integrity Validation ===")
	fmt.Fprintln(out)

	header, rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load CSV: %v\n", err)
		return 1
	}

	records := make([]domain.CollisionRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, domain.ParseRecord(r.fields))
	}

	phases := []*phase{
		validateSchema(header),
		validateRows(rows),
		validateMatrix(records, filter),
	}
	if matrixPath != "" {
		phases = append(phases, validateMatrixFile(matrixPath, records))
	}

	fmt.Fprintln(out)
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Records: %d CSV rows\n", len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(path string) ([]string, []csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("no header row in %s", path)
	}

	header := all[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[strings.TrimSpace(h)] = row[j]
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return header, rows, nil
}

// ── Phase 1: Schema ──

func validateSchema(header []string) *phase {
	p := &phase{name: "Phase 1: Schema (CSV header)"}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		h = strings.TrimSpace(h)
		if present[h] {
			p.errorf("duplicate column %q", h)
		}
		present[h] = true
	}
	for _, col := range expectedColumns {
		if !present[col] {
			p.errorf("missing column %q", col)
		}
	}
	return p
}

// ── Phase 2: Row values ──
// Reports rows the loader accepts but silently degrades: unparsable or
// out-of-range hours and non-numeric counts or coordinates.

func validateRows(rows []csvRow) *phase {
	p := &phase{name: "Phase 2: Row Values"}

	for _, r := range rows {
		hour := domain.ParseHour(r.fields[domain.ColumnTime])
		switch {
		case hour == domain.InvalidHour:
			p.errorf("line %d: unparsable time %q (row is dropped)", r.lineNum, r.fields[domain.ColumnTime])
		case hour < 0 || hour > 23:
			p.errorf("line %d: hour %d outside 0-23", r.lineNum, hour)
		}
		for _, col := range []string{domain.ColumnCasualties, domain.ColumnVehicles} {
			if v, ok := r.fields[col]; ok && strings.TrimSpace(v) != "" {
				if _, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
					p.errorf("line %d: %s %q is not an integer", r.lineNum, col, v)
				}
			}
		}
		for _, col := range []string{domain.ColumnLongitude, domain.ColumnLatitude} {
			if v, ok := r.fields[col]; ok && strings.TrimSpace(v) != "" {
				if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
					p.errorf("line %d: %s %q is not a number", r.lineNum, col, v)
				}
			}
		}
	}
	return p
}

// ── Phase 3: Matrix invariants ──

func validateMatrix(records []domain.CollisionRecord, filter domain.FilterSet) *phase {
	p := &phase{name: "Phase 3: Matrix Invariants"}

	m, stats := domain.AggregateWithStats(records, filter)

	if want := len(filter.Cities) * len(filter.Hours); len(m.Cells) != want {
		p.errorf("matrix has %d cells, expected %d", len(m.Cells), want)
	}

	i := 0
	for _, city := range filter.Cities {
		for _, hour := range filter.Hours {
			if i >= len(m.Cells) {
				break
			}
			if c := m.Cells[i]; c.City != city || c.Hour != hour {
				p.errorf("cell %d is (%s, %d), expected (%s, %d)", i, c.City, c.Hour, city, hour)
			}
			i++
		}
	}

	// Recount independently of Aggregate.
	expected := map[string]int{}
	for _, r := range records {
		if slices.Contains(filter.Cities, r.City) && slices.Contains(filter.Hours, r.Hour) {
			expected[fmt.Sprintf("%s|%d", r.City, r.Hour)]++
		}
	}
	maxCount := 0
	for _, c := range m.Cells {
		if c.Collisions < 0 {
			p.errorf("(%s, %d) has negative count %d", c.City, c.Hour, c.Collisions)
		}
		if want := expected[fmt.Sprintf("%s|%d", c.City, c.Hour)]; c.Collisions != want {
			p.errorf("(%s, %d): matrix=%d, recount=%d", c.City, c.Hour, c.Collisions, want)
		}
		maxCount = max(maxCount, c.Collisions)
	}
	if m.MaxCollisions != maxCount {
		p.errorf("max collisions %d, expected %d", m.MaxCollisions, maxCount)
	}
	if m.Total() != stats.RowsRetained {
		p.errorf("matrix total %d != retained rows %d", m.Total(), stats.RowsRetained)
	}
	return p
}

// ── Phase 4: Matrix file ──
// Compares a previously written matrix JSON against a fresh aggregation over
// the cities and hours recorded in that file.

func validateMatrixFile(path string, records []domain.CollisionRecord) *phase {
	p := &phase{name: "Phase 4: Matrix File (JSON vs CSV)"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		p.errorf("decode %s: %v", path, err)
		return p
	}

	filter := domain.FilterSet{Cities: snap.Matrix.Cities, Hours: snap.Matrix.Hours}
	if err := filter.Validate(); err != nil {
		p.errorf("filter in %s: %v", path, err)
		return p
	}

	fresh := domain.Aggregate(records, filter)
	if len(snap.Matrix.Cells) != len(fresh.Cells) {
		p.errorf("file has %d cells, CSV aggregates to %d", len(snap.Matrix.Cells), len(fresh.Cells))
		return p
	}
	for i := range fresh.Cells {
		if snap.Matrix.Cells[i] != fresh.Cells[i] {
			p.errorf("cell %d: file=%+v, csv=%+v", i, snap.Matrix.Cells[i], fresh.Cells[i])
		}
	}
	if snap.Matrix.MaxCollisions != fresh.MaxCollisions {
		p.errorf("max collisions: file=%d, csv=%d", snap.Matrix.MaxCollisions, fresh.MaxCollisions)
	}
	return p
}
