// internal/executor/recorder.go
package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/semact-dev/semact-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StepRecorder builds the append-only execution log for one run. Steps
// are recorded in causal order and never reordered or removed; Snapshot
// hands out copies so the returned log stays immutable.
type StepRecorder struct {
	log schemas.ExecutionLog
}

// NewStepRecorder starts a log for one execution of the named action.
func NewStepRecorder(action string, mode schemas.ExecutionMode) *StepRecorder {
	return &StepRecorder{
		log: schemas.ExecutionLog{
			SessionID: uuid.NewString(),
			Action:    action,
			Mode:      mode,
			Timestamp: time.Now().UTC(),
		},
	}
}

// Record appends one step.
func (r *StepRecorder) Record(t schemas.StepType, payload map[string]any) {
	r.log.Steps = append(r.log.Steps, schemas.LogStep{
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
}

// SessionID returns the log's session identifier.
func (r *StepRecorder) SessionID() string { return r.log.SessionID }

// Snapshot returns a copy of the log safe to hand to callers. Step
// payloads are copied too, down through nested objects and arrays, so
// mutating a returned payload never alters the recorded log.
func (r *StepRecorder) Snapshot() *schemas.ExecutionLog {
	out := r.log
	out.Steps = make([]schemas.LogStep, len(r.log.Steps))
	for i, step := range r.log.Steps {
		step.Payload = copyPayload(step.Payload)
		out.Steps[i] = step
	}
	return &out
}

func copyPayload(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyPayload(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}

// defaultKeepTraces bounds how many persisted trace files survive pruning.
const defaultKeepTraces = 50

// TraceWriter persists finished execution logs as one JSON file per
// session so runs can be replayed for auditing. Old traces are pruned
// beyond a bounded count.
type TraceWriter struct {
	mu   sync.Mutex
	dir  string
	keep int
}

// NewTraceWriter creates the trace directory if needed.
func NewTraceWriter(dir string, keep int) (*TraceWriter, error) {
	if dir == "" {
		dir = filepath.Join("data", "traces")
	}
	if keep < 1 {
		keep = defaultKeepTraces
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &TraceWriter{dir: dir, keep: keep}, nil
}

// Write persists one log and prunes old traces.
func (w *TraceWriter) Write(log *schemas.ExecutionLog) error {
	if log == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal execution log: %w", err)
	}

	name := fmt.Sprintf("trace_%d_%s.json", log.Timestamp.UnixMilli(), log.SessionID)
	if err := os.WriteFile(filepath.Join(w.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write trace: %w", err)
	}
	return w.prune()
}

// prune removes the oldest trace files beyond the retention bound. Names
// embed a millisecond timestamp, so lexical order is chronological.
func (w *TraceWriter) prune() error {
	entries, err := filepath.Glob(filepath.Join(w.dir, "trace_*.json"))
	if err != nil {
		return err
	}
	if len(entries) <= w.keep {
		return nil
	}
	sort.Strings(entries)
	for _, old := range entries[:len(entries)-w.keep] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("prune trace %s: %w", old, err)
		}
	}
	return nil
}
