package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/collision-heatmap/internal/domain"
)

// Loader reads collision records from a CSV file path or an http(s) URL.
// It implements pipeline.Loader.
type Loader struct {
	location   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLoader creates a Loader for the given locator. The timeout bounds HTTP
// fetches only.
func NewLoader(location string, timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{
		location: location,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Location returns the configured resource locator.
func (l *Loader) Location() string {
	return l.location
}

// Load fetches and parses the whole CSV. Every failure is returned as a
// *domain.ResourceLoadError.
func (l *Loader) Load(ctx context.Context) ([]domain.CollisionRecord, error) {
	rc, err := l.open(ctx)
	if err != nil {
		return nil, &domain.ResourceLoadError{Source: l.location, Err: err}
	}
	defer rc.Close()

	records, err := ParseCSV(rc)
	if err != nil {
		return nil, &domain.ResourceLoadError{Source: l.location, Err: err}
	}

	l.logger.Info("collision data loaded", "source", l.location, "rows", len(records))
	return records, nil
}

func (l *Loader) open(ctx context.Context) (io.ReadCloser, error) {
	if !isURL(l.location) {
		f, err := os.Open(l.location)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp.Body, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// ParseCSV reads a header row followed by collision rows. Columns are matched
// by name. Structural CSV errors abort the parse.
func ParseCSV(r io.Reader) ([]domain.CollisionRecord, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty CSV: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.TrimSpace(col)] = i
	}
	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := colMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var records []domain.CollisionRecord
	row := make(map[string]string, len(colMap))
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		for col, i := range colMap {
			row[col] = fields[i]
		}
		records = append(records, domain.ParseRecord(row))
	}
	return records, nil
}
