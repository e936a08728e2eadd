package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/collision-heatmap/internal/config"
	"github.com/couchcryptid/collision-heatmap/internal/domain"
	"github.com/couchcryptid/collision-heatmap/internal/pipeline"
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes one message per matrix cell to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// CellMessage is the JSON value of each published message.
type CellMessage struct {
	RunID         string    `json:"run_id"`
	City          string    `json:"city"`
	Hour          int       `json:"hour"`
	Collisions    int       `json:"collisions"`
	MaxCollisions int       `json:"max_collisions"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Publish writes every cell of the snapshot in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, result pipeline.Result) error {
	msgs, err := serializeSnapshot(result.Snapshot)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write cells: %w", err)
	}
	w.logger.Info("matrix cells published", "messages", len(msgs), "run_id", result.Snapshot.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// cellKey keys messages by city and hour so a compacted topic keeps the
// latest count per cell.
func cellKey(c domain.Cell) []byte {
	return []byte(c.City + "|" + strconv.Itoa(c.Hour))
}

func serializeSnapshot(s domain.Snapshot) ([]kafkago.Message, error) {
	generatedAt := []byte(s.GeneratedAt.Format(time.RFC3339))
	msgs := make([]kafkago.Message, 0, len(s.Matrix.Cells))
	for _, c := range s.Matrix.Cells {
		data, err := json.Marshal(CellMessage{
			RunID:         s.RunID,
			City:          c.City,
			Hour:          c.Hour,
			Collisions:    c.Collisions,
			MaxCollisions: s.Matrix.MaxCollisions,
			GeneratedAt:   s.GeneratedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("serialize cell: %w", err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   cellKey(c),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "run_id", Value: []byte(s.RunID)},
				{Key: "generated_at", Value: generatedAt},
			},
		})
	}
	return msgs, nil
}
