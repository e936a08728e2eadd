package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/collision-heatmap/internal/pipeline"
)

// Writer stores the rendered SVG, and optionally the matrix as JSON, on disk.
// It implements pipeline.Publisher.
type Writer struct {
	svgPath    string
	matrixPath string
	logger     *slog.Logger
}

// NewWriter creates a Writer. An empty matrixPath skips the JSON output.
func NewWriter(svgPath, matrixPath string, logger *slog.Logger) *Writer {
	return &Writer{svgPath: svgPath, matrixPath: matrixPath, logger: logger}
}

func (w *Writer) Name() string { return "file" }

// Publish writes each output via a temp file and rename so readers never see
// a partially written file.
func (w *Writer) Publish(_ context.Context, result pipeline.Result) error {
	if err := writeAtomic(w.svgPath, result.SVG); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	w.logger.Info("heatmap written", "path", w.svgPath, "bytes", len(result.SVG))

	if w.matrixPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(result.Snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize matrix: %w", err)
	}
	if err := writeAtomic(w.matrixPath, data); err != nil {
		return fmt.Errorf("write matrix: %w", err)
	}
	w.logger.Info("matrix written", "path", w.matrixPath)
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
