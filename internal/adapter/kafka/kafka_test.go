package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-grid-etl/internal/config"
	"github.com/couchcryptid/climate-grid-etl/internal/domain"
)

type mockWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

func testEvent() domain.ProductEvent {
	return domain.ProductEvent{
		Product:     "Total-Rainfall_mean_1991-2020_Annual_Otago",
		Region:      "Otago",
		RegionTitle: "Otago",
		Period:      "Annual",
		ArchiveKey:  "climatology-grids/Total-Rainfall_mean_1991-2020_Annual_Otago.zip",
		MetadataKey: "climatology-grids/Total-Rainfall_mean_1991-2020_Annual_Otago.json",
		Uploaded:    true,
		CreatedAt:   time.Date(2024, 6, 24, 9, 30, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent()

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte(event.Product), msg.Key)
	assert.Contains(t, string(msg.Value), `"archive_key":"climatology-grids/Total-Rainfall_mean_1991-2020_Annual_Otago.zip"`)
	assert.Contains(t, string(msg.Value), `"uploaded":true`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "region", msg.Headers[0].Key)
	assert.Equal(t, []byte("Otago"), msg.Headers[0].Value)
	assert.Equal(t, "created_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-06-24T09:30:00Z"), msg.Headers[1].Value)
}

func TestPublisher_Publish(t *testing.T) {
	w := &mockWriter{}
	p := &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.Publish(context.Background(), testEvent()))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "Total-Rainfall_mean_1991-2020_Annual_Otago", string(w.msgs[0].Key))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	w := &mockWriter{err: errors.New("leader not available")}
	p := &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.Publish(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish product Total-Rainfall_mean_1991-2020_Annual_Otago")
}

func TestNewPublisher(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "climate-grid-products"}
	p := NewPublisher(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w, ok := p.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "climate-grid-products", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
}
