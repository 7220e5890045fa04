package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Entry is one recorded item in a report.
type Entry struct {
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Reporter buffers run summaries by category and appends them to a log as
// one JSON document per flush.
type Reporter struct {
	mu      sync.Mutex
	out     io.Writer
	closer  io.Closer
	entries map[string][]Entry
	now     func() time.Time
}

func NewReporter(logPath string) (*Reporter, error) {
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening report %s: %w", logPath, err)
	}

	r := NewWriterReporter(file)
	r.closer = file
	return r, nil
}

// NewWriterReporter reports to w; Close leaves w open.
func NewWriterReporter(w io.Writer) *Reporter {
	return &Reporter{
		out:     w,
		entries: make(map[string][]Entry),
		now:     time.Now,
	}
}

func (r *Reporter) Record(category string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[category] = append(r.entries[category], Entry{Timestamp: r.now(), Data: data})
}

func (r *Reporter) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == 0 {
		return nil
	}

	data, err := json.MarshalIndent(r.entries, "", "  ")
	if err != nil {
		return err
	}

	if _, err := r.out.Write(append(data, '\n')); err != nil {
		return err
	}

	r.entries = make(map[string][]Entry)
	return nil
}

func (r *Reporter) Close() error {
	if err := r.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
