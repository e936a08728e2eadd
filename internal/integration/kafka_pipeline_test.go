//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/collision-heatmap/internal/adapter/file"
	"github.com/couchcryptid/collision-heatmap/internal/adapter/kafka"
	"github.com/couchcryptid/collision-heatmap/internal/adapter/source"
	"github.com/couchcryptid/collision-heatmap/internal/config"
	"github.com/couchcryptid/collision-heatmap/internal/domain"
	"github.com/couchcryptid/collision-heatmap/internal/observability"
	"github.com/couchcryptid/collision-heatmap/internal/pipeline"
	"github.com/couchcryptid/collision-heatmap/internal/render"
)

const testSinkTopic = "test-collision-cells"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("collision-heatmap"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func mockCSVPath(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "data", "mock", "collisions_sample.csv")
}

// publishedCell holds a deserialized message read from the sink topic.
type publishedCell struct {
	Cell    kafka.CellMessage
	Key     string
	Headers map[string]string
}

func readCell(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedCell {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var cell kafka.CellMessage
	require.NoError(t, json.Unmarshal(msg.Value, &cell), "unmarshal sink message")

	return publishedCell{Cell: cell, Key: string(msg.Key), Headers: headers}
}

// TestPipelineEndToEnd runs the mock CSV through the pipeline with the file and
// Kafka publishers and checks every matrix cell arrives on the sink topic.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	dir := t.TempDir()
	loader := source.NewLoader(mockCSVPath(t), 5*time.Second, discardLogger())
	fileWriter := file.NewWriter(filepath.Join(dir, "heatmap.svg"), "", discardLogger())
	kafkaWriter := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = kafkaWriter.Close() })

	p := pipeline.New(loader, domain.DefaultFilterSet(), render.DefaultOptions(),
		[]pipeline.Publisher{fileWriter, kafkaWriter}, discardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, p.Run(ctx))

	latest := p.Latest()
	require.NotNil(t, latest)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	cells := len(latest.Snapshot.Matrix.Cells)
	require.Equal(t, 48, cells)

	received := make(map[string]publishedCell, cells)
	for len(received) < cells {
		pc := readCell(ctx, t, consumer)
		received[pc.Key] = pc
	}

	for _, c := range latest.Snapshot.Matrix.Cells {
		key := fmt.Sprintf("%s|%d", c.City, c.Hour)
		pc, ok := received[key]
		require.True(t, ok, "missing cell %s", key)
		assert.Equal(t, c.Collisions, pc.Cell.Collisions, key)
		assert.Equal(t, 4, pc.Cell.MaxCollisions, key)
		assert.Equal(t, latest.Snapshot.RunID, pc.Headers["run_id"])
		_, err := time.Parse(time.RFC3339, pc.Headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")
	}

	assert.Equal(t, 4, received["Lambeth|18"].Cell.Collisions)
	assert.Equal(t, 0, received["Enfield|7"].Cell.Collisions)
}
