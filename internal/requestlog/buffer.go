// Package requestlog batches request audit lines in memory and hands them
// to a sink once a byte threshold is crossed, keeping per-request overhead
// to an in-memory append.
package requestlog

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Buffer accumulates formatted request lines. When the accumulated length
// reaches the threshold the whole content is passed to the sink on a
// separate goroutine and the buffer clears immediately, before the write is
// confirmed. A failed flush therefore loses that batch; the failure is
// logged and never retried, and the request path never blocks on it.
type Buffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	threshold int
	sink      Sink
	log       *logrus.Entry
}

func NewBuffer(logger *logrus.Logger, sink Sink, threshold int) *Buffer {
	return &Buffer{
		threshold: threshold,
		sink:      sink,
		log:       logger.WithField("component", "request_log"),
	}
}

// Record appends one audit line for the given request attributes.
func (b *Buffer) Record(ts time.Time, clientIP, method, path string) {
	line := fmt.Sprintf("[%s] %s %s %s\n", ts.UTC().Format(time.RFC3339), clientIP, method, path)
	b.Append(line)
}

// Append adds a line to the buffer and triggers an asynchronous flush when
// the threshold is reached.
func (b *Buffer) Append(line string) {
	b.mu.Lock()
	b.buf.WriteString(line)
	if b.buf.Len() < b.threshold {
		b.mu.Unlock()
		return
	}

	content := make([]byte, b.buf.Len())
	copy(content, b.buf.Bytes())
	b.buf.Reset()
	b.mu.Unlock()

	go b.write(content)
}

// Flush drains whatever is buffered, synchronously. Used at shutdown.
func (b *Buffer) Flush() {
	b.mu.Lock()
	if b.buf.Len() == 0 {
		b.mu.Unlock()
		return
	}
	content := make([]byte, b.buf.Len())
	copy(content, b.buf.Bytes())
	b.buf.Reset()
	b.mu.Unlock()

	b.write(content)
}

// Len reports the current buffered byte count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *Buffer) write(content []byte) {
	if err := b.sink.Write(content); err != nil {
		b.log.WithError(err).Warn("Request log flush failed, batch lost")
	}
}
