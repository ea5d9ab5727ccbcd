package journal

import (
	"sync"

	"github.com/arrowlane/hft-engine/types"
)

// PositionJournal persists position snapshots under root/positions/,
// keeping the latest snapshot per symbol for cold-start restorePosition
// calls into the position manager.
type PositionJournal struct {
	stream *Stream
	mu     sync.RWMutex
	index  map[string]types.Position
}

// OpenPositionJournal opens (or creates) the positions/ stream.
func OpenPositionJournal(root string, mode Mode) (*PositionJournal, error) {
	s, err := Open(StreamConfig{Root: root, Name: "positions", Mode: mode, RollByDay: true})
	if err != nil {
		return nil, err
	}
	return &PositionJournal{stream: s, index: make(map[string]types.Position)}, nil
}

// Append records a position snapshot (called after every fill that changes
// exposure, not on every quote tick).
func (j *PositionJournal) Append(p types.Position) error {
	if _, err := j.stream.Append(&p); err != nil {
		return err
	}
	j.mu.Lock()
	j.index[p.Symbol] = p
	j.mu.Unlock()
	return nil
}

// Rebuild replays every persisted snapshot, leaving the index with the
// latest per symbol.
func (j *PositionJournal) Rebuild() error {
	return j.stream.ReplayAll(
		func() interface{} { return &types.Position{} },
		func(_ uint64, v interface{}) error {
			p := v.(*types.Position)
			j.mu.Lock()
			j.index[p.Symbol] = *p
			j.mu.Unlock()
			return nil
		},
	)
}

// All returns the last known snapshot for every symbol, used to restore
// the live position manager on cold start (spec's restorePosition path).
func (j *PositionJournal) All() []types.Position {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.Position, 0, len(j.index))
	for _, p := range j.index {
		out = append(out, p)
	}
	return out
}

func (j *PositionJournal) Close() error { return j.stream.Close() }
