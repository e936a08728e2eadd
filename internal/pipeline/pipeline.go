package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/collision-heatmap/internal/domain"
	"github.com/couchcryptid/collision-heatmap/internal/observability"
	"github.com/couchcryptid/collision-heatmap/internal/render"
)

// Loader reads the raw collision records.
type Loader interface {
	Load(ctx context.Context) ([]domain.CollisionRecord, error)
}

// Publisher delivers a finished heatmap somewhere (file, broker, ...).
type Publisher interface {
	Name() string
	Publish(ctx context.Context, result Result) error
}

// Result is the output of one successful run.
type Result struct {
	Snapshot domain.Snapshot
	SVG      []byte
}

// Pipeline runs load -> aggregate -> render -> publish exactly once per Run.
type Pipeline struct {
	loader     Loader
	filter     domain.FilterSet
	opts       render.Options
	publishers []Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	latest     atomic.Pointer[Result]
}

// New creates a Pipeline with the given stages and observability.
func New(l Loader, filter domain.FilterSet, opts render.Options, publishers []Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		loader:     l,
		filter:     filter,
		opts:       opts,
		publishers: publishers,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once a heatmap has been rendered.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.latest.Load() == nil {
		return errors.New("heatmap has not been rendered yet")
	}
	return nil
}

// Latest returns the most recent successful result, or nil.
func (p *Pipeline) Latest() *Result {
	return p.latest.Load()
}

// Run executes a single pass. A load failure is logged and returned; nothing
// is rendered or published in that case. There are no retries.
func (p *Pipeline) Run(ctx context.Context) error {
	loadStart := time.Now()
	records, err := p.loader.Load(ctx)
	if err != nil {
		p.metrics.LoadErrors.Inc()
		p.metrics.Runs.WithLabelValues("load_error").Inc()
		p.logger.Error("failed to load collision data", "error", err)
		return err
	}
	p.metrics.LoadDuration.Observe(time.Since(loadStart).Seconds())
	p.logger.Debug("collision records parsed", "rows", len(records))

	renderStart := time.Now()
	matrix, stats := domain.AggregateWithStats(records, p.filter)
	p.metrics.RowsRead.Add(float64(stats.RowsRead))
	p.metrics.RowsRetained.Add(float64(stats.RowsRetained))
	p.metrics.RowsInvalidHour.Add(float64(stats.RowsInvalidHour))
	p.metrics.MaxCollisions.Set(float64(matrix.MaxCollisions))
	p.logger.Debug("matrix built",
		"rows_retained", stats.RowsRetained,
		"rows_invalid_hour", stats.RowsInvalidHour,
		"cells", len(matrix.Cells),
		"max_collisions", matrix.MaxCollisions,
	)

	drawing, err := render.Render(matrix, p.opts)
	if err != nil {
		p.metrics.Runs.WithLabelValues("render_error").Inc()
		p.logger.Error("render heatmap failed", "error", err)
		return fmt.Errorf("render heatmap: %w", err)
	}
	svg, err := render.SVG(drawing)
	if err != nil {
		p.metrics.Runs.WithLabelValues("render_error").Inc()
		p.logger.Error("encode heatmap failed", "error", err)
		return fmt.Errorf("encode heatmap: %w", err)
	}
	p.metrics.RenderDuration.Observe(time.Since(renderStart).Seconds())

	result := Result{Snapshot: domain.NewSnapshot(matrix, stats), SVG: svg}

	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, result); err != nil {
			p.metrics.Runs.WithLabelValues("publish_error").Inc()
			p.logger.Error("publish heatmap failed", "sink", pub.Name(), "error", err)
			return fmt.Errorf("publish to %s: %w", pub.Name(), err)
		}
		p.metrics.CellsPublished.WithLabelValues(pub.Name()).Add(float64(len(matrix.Cells)))
	}

	p.latest.Store(&result)
	p.metrics.LastSuccess.Set(float64(result.Snapshot.GeneratedAt.Unix()))
	p.metrics.Runs.WithLabelValues("success").Inc()
	p.logger.Info("heatmap rendered",
		"run_id", result.Snapshot.RunID,
		"rows_read", stats.RowsRead,
		"rows_retained", stats.RowsRetained,
		"max_collisions", matrix.MaxCollisions,
		"svg_bytes", len(svg),
	)
	return nil
}
