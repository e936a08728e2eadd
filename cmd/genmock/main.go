// Command genmock writes a synthetic collision CSV and the matching matrix
// snapshot. It uses the real domain package to aggregate, so the snapshot is
// exactly what the heatmap command would produce for the same CSV.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -rows 500 -seed 2024 \
//	  -csv-out data/mock/collisions_sample.csv \
//	  -matrix-out data/mock/collisions_sample_matrix.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/collision-heatmap/internal/domain"
)

// generatedAt is the fixed snapshot timestamp for reproducible fixtures.
var generatedAt = time.Date(2024, time.December, 31, 6, 0, 0, 0, time.UTC)

// Authorities outside the default filter, so fixtures exercise filtering.
var otherCities = []string{"Camden", "Leeds", "Bristol, City of"}

var severities = []string{"Slight", "Slight", "Slight", "Serious", "Fatal"}

// genOptions controls row generation.
type genOptions struct {
	rows int
	seed uint64
	// invalidEvery makes every nth row carry an unparsable time; 0 disables.
	invalidEvery int
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("genmock", flag.ContinueOnError)
	rows := fs.Int("rows", 500, "number of CSV data rows")
	seed := fs.Uint64("seed", 2024, "random seed")
	invalidEvery := fs.Int("invalid-every", 50, "emit an unparsable time every n rows (0 disables)")
	csvOut := fs.String("csv-out", "", "output path for the collision CSV")
	matrixOut := fs.String("matrix-out", "", "output path for the matrix snapshot JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *csvOut == "" || *matrixOut == "" {
		fs.Usage()
		return fmt.Errorf("missing required flags: -csv-out, -matrix-out")
	}
	if *rows < 0 {
		return fmt.Errorf("rows must be non-negative, got %d", *rows)
	}

	records := generate(genOptions{rows: *rows, seed: *seed, invalidEvery: *invalidEvery})

	if err := writeCSV(*csvOut, records); err != nil {
		return fmt.Errorf("writing CSV fixture: %w", err)
	}
	log.Printf("wrote CSV fixture: %s (%d rows)", *csvOut, len(records))

	// Fixed clock for a reproducible generated_at.
	domain.SetClock(clockwork.NewFakeClockAt(generatedAt))
	defer domain.SetClock(nil)

	parsed := make([]domain.CollisionRecord, 0, len(records))
	for _, r := range records {
		parsed = append(parsed, domain.ParseRecord(r))
	}
	snap := domain.NewSnapshot(domain.AggregateWithStats(parsed, domain.DefaultFilterSet()))
	snap.RunID = fmt.Sprintf("genmock-%d", *seed)

	if err := writeJSON(*matrixOut, snap); err != nil {
		return fmt.Errorf("writing matrix fixture: %w", err)
	}
	log.Printf("wrote matrix fixture: %s", *matrixOut)

	printStats(out, snap)
	return nil
}

// generate returns rows keyed by CSV column. The same options always yield
// the same rows.
func generate(opts genOptions) []map[string]string {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))
	cities := append(domain.DefaultFilterSet().Cities, otherCities...)

	rows := make([]map[string]string, 0, opts.rows)
	for i := range opts.rows {
		hour := rng.IntN(24)
		// Skew toward commuting hours like real traffic.
		if rng.IntN(3) == 0 {
			hour = []int{7, 8, 9, 17, 18, 19}[rng.IntN(6)]
		}
		t := fmt.Sprintf("%02d:%02d", hour, rng.IntN(60))
		if opts.invalidEvery > 0 && (i+1)%opts.invalidEvery == 0 {
			t = ""
		}

		rows = append(rows, map[string]string{
			domain.ColumnCity:       cities[rng.IntN(len(cities))],
			domain.ColumnTime:       t,
			domain.ColumnSeverity:   severities[rng.IntN(len(severities))],
			domain.ColumnCasualties: strconv.Itoa(1 + rng.IntN(3)),
			domain.ColumnVehicles:   strconv.Itoa(1 + rng.IntN(4)),
			domain.ColumnLongitude:  strconv.FormatFloat(-2.5+rng.Float64()*2.4, 'f', 6, 64),
			domain.ColumnLatitude:   strconv.FormatFloat(51.2+rng.Float64()*3.5, 'f', 6, 64),
		})
	}
	return rows
}

var csvHeader = []string{
	domain.ColumnCity,
	domain.ColumnTime,
	domain.ColumnSeverity,
	domain.ColumnCasualties,
	domain.ColumnVehicles,
	domain.ColumnLongitude,
	domain.ColumnLatitude,
}

func writeCSV(path string, rows []map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := make([]string, len(csvHeader))
		for i, col := range csvHeader {
			rec[i] = r[col]
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(out io.Writer, snap domain.Snapshot) {
	m := snap.Matrix
	fmt.Fprintln(out, "\n=== Stats for updating test assertions ===")
	fmt.Fprintf(out, "Rows read: %d\n", snap.Stats.RowsRead)
	fmt.Fprintf(out, "Rows retained: %d\n", snap.Stats.RowsRetained)
	fmt.Fprintf(out, "Rows with invalid hour: %d\n", snap.Stats.RowsInvalidHour)
	fmt.Fprintf(out, "Max collisions: %d\n", m.MaxCollisions)

	fmt.Fprintf(out, "\n%-22s", "")
	for _, h := range m.Hours {
		fmt.Fprintf(out, "%4d", h)
	}
	fmt.Fprintln(out)
	for _, city := range m.Cities {
		fmt.Fprintf(out, "%-22s", city)
		for _, h := range m.Hours {
			n, _ := m.At(city, h)
			fmt.Fprintf(out, "%4d", n)
		}
		fmt.Fprintln(out)
	}
}
