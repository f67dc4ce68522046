package requestlog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tastebook/tastebook/internal/models"
)

// Sink receives one flushed batch of request log lines.
type Sink interface {
	Write(content []byte) error
}

// FileSink appends each batch to a log file.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Write(content []byte) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("append log file: %w", err)
	}
	return nil
}

// DatabaseSink parses each batch back into rows and batch-inserts them into
// the access_logs table.
type DatabaseSink struct {
	db *gorm.DB
}

func NewDatabaseSink(db *gorm.DB) *DatabaseSink {
	return &DatabaseSink{db: db}
}

func (s *DatabaseSink) Write(content []byte) error {
	var entries []models.AccessLog
	for _, line := range strings.Split(strings.TrimRight(string(content), "\n"), "\n") {
		entry, ok := parseLine(line)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return nil
	}

	if err := s.db.CreateInBatches(entries, 100).Error; err != nil {
		return fmt.Errorf("insert access logs: %w", err)
	}
	return nil
}

func parseLine(line string) (models.AccessLog, bool) {
	// [RFC3339] ip method path
	if !strings.HasPrefix(line, "[") {
		return models.AccessLog{}, false
	}
	end := strings.Index(line, "]")
	if end < 0 {
		return models.AccessLog{}, false
	}
	ts, err := time.Parse(time.RFC3339, line[1:end])
	if err != nil {
		return models.AccessLog{}, false
	}
	fields := strings.Fields(line[end+1:])
	if len(fields) != 3 {
		return models.AccessLog{}, false
	}
	return models.AccessLog{
		Timestamp: ts,
		ClientIP:  fields[0],
		Method:    fields[1],
		Path:      fields[2],
	}, true
}
