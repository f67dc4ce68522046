package requestlog

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	batches chan []byte
	fail    bool
}

func newCaptureSink() *captureSink {
	return &captureSink{batches: make(chan []byte, 10)}
}

func (s *captureSink) Write(content []byte) error {
	if s.fail {
		return errors.New("sink unavailable")
	}
	s.batches <- content
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestBufferFlushesOnceAtThreshold(t *testing.T) {
	sink := newCaptureSink()
	buf := NewBuffer(testLogger(), sink, 40)

	buf.Append("line-one-is-short\n")
	assert.Equal(t, 0, len(sink.batches), "no flush below threshold")

	buf.Append("line-two-crosses-the-threshold\n")
	assert.Equal(t, 0, buf.Len(), "buffer clears immediately on flush")

	select {
	case batch := <-sink.batches:
		assert.Equal(t, "line-one-is-short\nline-two-crosses-the-threshold\n", string(batch))
	case <-time.After(time.Second):
		t.Fatal("expected a flush")
	}

	select {
	case <-sink.batches:
		t.Fatal("expected exactly one flush")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBufferRecordFormat(t *testing.T) {
	sink := newCaptureSink()
	buf := NewBuffer(testLogger(), sink, 1)

	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	buf.Record(ts, "10.0.0.1", "GET", "/posts/7")

	select {
	case batch := <-sink.batches:
		assert.Equal(t, "[2025-03-01T12:00:00Z] 10.0.0.1 GET /posts/7\n", string(batch))
	case <-time.After(time.Second):
		t.Fatal("expected a flush")
	}
}

func TestBufferClearsEvenWhenSinkFails(t *testing.T) {
	sink := newCaptureSink()
	sink.fail = true
	buf := NewBuffer(testLogger(), sink, 1)

	buf.Append("dropped line\n")
	assert.Equal(t, 0, buf.Len())

	// Recovery: the next batch goes through once the sink is back.
	sink.fail = false
	buf.Append("kept line\n")
	select {
	case batch := <-sink.batches:
		assert.Equal(t, "kept line\n", string(batch))
	case <-time.After(time.Second):
		t.Fatal("expected a flush after sink recovery")
	}
}

func TestBufferFlushDrains(t *testing.T) {
	sink := newCaptureSink()
	buf := NewBuffer(testLogger(), sink, 1024)

	buf.Append("pending\n")
	buf.Flush()

	require.Equal(t, 1, len(sink.batches))
	assert.Equal(t, "pending\n", string(<-sink.batches))
	assert.Equal(t, 0, buf.Len())

	buf.Flush()
	assert.Equal(t, 0, len(sink.batches), "empty buffer does not flush")
}

func TestParseLine(t *testing.T) {
	entry, ok := parseLine("[2025-03-01T12:00:00Z] 10.0.0.1 GET /posts/7")
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", entry.ClientIP)
	assert.Equal(t, "GET", entry.Method)
	assert.Equal(t, "/posts/7", entry.Path)

	for _, bad := range []string{"", "no brackets", "[not-a-time] a b c", "[2025-03-01T12:00:00Z] too few"} {
		_, ok := parseLine(bad)
		assert.False(t, ok, "line %q should not parse", bad)
	}
}
