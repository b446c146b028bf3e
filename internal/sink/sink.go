// Package sink delivers aggregation records to downstream consumers.
package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"quantbot-go/internal/signal"
)

// Emitter logs each record as one structured line.
type Emitter struct{ log zerolog.Logger }

// NewEmitter wraps a zerolog logger for record output.
func NewEmitter(log zerolog.Logger) *Emitter { return &Emitter{log: log} }

// Emit writes the record with detector verdicts in sorted order so log lines
// are comparable across events.
func (e *Emitter) Emit(rec signal.Record) {
	names := make([]string, 0, len(rec.Signals))
	for name := range rec.Signals {
		names = append(names, name)
	}
	sort.Strings(names)

	dict := zerolog.Dict()
	for _, name := range names {
		dict.Str(name, string(rec.Signals[name]))
	}
	e.log.Info().Str("sym", rec.Symbol).Time("ts", rec.Ts).Dict("signals", dict).Msg("signals")
}

// JSONLRecorder appends records as JSON lines for later analysis.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single record to the underlying JSONL file.
func (r *JSONLRecorder) Record(rec signal.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_ = r.enc.Encode(rec)
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
