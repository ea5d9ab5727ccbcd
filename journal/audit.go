package journal

import (
	"sync"

	"github.com/arrowlane/hft-engine/types"
)

// AuditJournal persists AuditEvent records (risk rejections, circuit
// breaker trips, illegal transitions, persistence failures) under
// root/audit/. Append-only and flat, like trades: every record is a fact,
// never superseded.
type AuditJournal struct {
	stream *Stream
	mu     sync.RWMutex
	all    []types.AuditEvent
}

// OpenAuditJournal opens (or creates) the audit/ stream.
func OpenAuditJournal(root string, mode Mode) (*AuditJournal, error) {
	s, err := Open(StreamConfig{Root: root, Name: "audit", Mode: mode, RollByDay: true})
	if err != nil {
		return nil, err
	}
	return &AuditJournal{stream: s}, nil
}

// Append records an audit event.
func (j *AuditJournal) Append(e types.AuditEvent) error {
	if _, err := j.stream.Append(&e); err != nil {
		return err
	}
	j.mu.Lock()
	j.all = append(j.all, e)
	j.mu.Unlock()
	return nil
}

// Rebuild replays every persisted audit record.
func (j *AuditJournal) Rebuild() error {
	return j.stream.ReplayAll(
		func() interface{} { return &types.AuditEvent{} },
		func(_ uint64, v interface{}) error {
			j.mu.Lock()
			j.all = append(j.all, *v.(*types.AuditEvent))
			j.mu.Unlock()
			return nil
		},
	)
}

// Since returns audit events at or above the given severity, most recent
// last.
func (j *AuditJournal) Since(minSeverity types.AuditSeverity) []types.AuditEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.AuditEvent, 0)
	for _, e := range j.all {
		if e.Severity >= minSeverity {
			out = append(out, e)
		}
	}
	return out
}

func (j *AuditJournal) Close() error { return j.stream.Close() }
