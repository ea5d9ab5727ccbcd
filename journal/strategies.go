package journal

import (
	"sync"

	"github.com/arrowlane/hft-engine/types"
)

// StrategyJournal persists algorithm lifecycle records under
// root/strategies/strategies.log. Unlike the other streams this one does
// NOT roll by calendar day: a long-lived algorithm instance (e.g. a TWAP
// spanning a trading session that crosses midnight) must stay addressable
// under a single file for its whole lifetime, per spec §4.5.
type StrategyJournal struct {
	stream *Stream
	mu     sync.RWMutex
	index  map[string]types.StrategyDefinition
}

// OpenStrategyJournal opens (or creates) the strategies/ stream.
func OpenStrategyJournal(root string, mode Mode) (*StrategyJournal, error) {
	s, err := Open(StreamConfig{Root: root, Name: "strategies", Mode: mode, RollByDay: false})
	if err != nil {
		return nil, err
	}
	return &StrategyJournal{stream: s, index: make(map[string]types.StrategyDefinition)}, nil
}

// Append records a strategy definition snapshot.
func (j *StrategyJournal) Append(d types.StrategyDefinition) error {
	if _, err := j.stream.Append(&d); err != nil {
		return err
	}
	j.mu.Lock()
	j.index[d.StrategyID] = d
	j.mu.Unlock()
	return nil
}

// Rebuild replays every persisted definition into the index.
func (j *StrategyJournal) Rebuild() error {
	return j.stream.ReplayAll(
		func() interface{} { return &types.StrategyDefinition{} },
		func(_ uint64, v interface{}) error {
			d := v.(*types.StrategyDefinition)
			j.mu.Lock()
			j.index[d.StrategyID] = *d
			j.mu.Unlock()
			return nil
		},
	)
}

// Get returns the last known definition for a strategy id.
func (j *StrategyJournal) Get(id string) (types.StrategyDefinition, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	d, ok := j.index[id]
	return d, ok
}

// Active returns strategies whose last known state is not terminal.
func (j *StrategyJournal) Active() []types.StrategyDefinition {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.StrategyDefinition, 0)
	for _, d := range j.index {
		switch d.State {
		case types.StrategyCancelled, types.StrategyCompleted, types.StrategyFailed:
		default:
			out = append(out, d)
		}
	}
	return out
}

func (j *StrategyJournal) Close() error { return j.stream.Close() }
