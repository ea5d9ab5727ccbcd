package algo

import (
	"time"

	"github.com/arrowlane/hft-engine/types"
)

// TWAP slices a total target quantity evenly across a fixed number of
// time buckets and, on each OnTimer tick, releases whatever the elapsed
// buckets say is owed. If a tick is missed (the engine was busy, or OnTimer
// fires late), the algorithm catches up by releasing the accumulated
// owed quantity on the next tick rather than silently dropping it — but
// the catch-up slice is capped at maxSliceQty per tick so a long outage
// cannot dump the whole remaining order into a single publish (see
// DESIGN.md Open Question (c): unbounded TWAP catch-up).
type TWAP struct {
	base
	side         types.OrderSide
	totalQty     int64
	buckets      int
	interval     time.Duration
	maxSliceQty  int64
	startedAt    time.Time
	lastBucket   int
	released     int64
	risk         RiskApprover
	submit       OrderSubmitter
	lastMid      types.Price
}

// NewTWAP creates a TWAP execution algorithm that releases totalQty over
// `buckets` intervals of `interval` duration. maxSliceQty bounds any single
// release, including catch-up releases after a missed tick.
func NewTWAP(id, symbol string, side types.OrderSide, totalQty int64, buckets int, interval time.Duration, maxSliceQty int64, risk RiskApprover, submit OrderSubmitter) *TWAP {
	return &TWAP{
		base:        newBase(id, "twap", symbol),
		side:        side,
		totalQty:    totalQty,
		buckets:     buckets,
		interval:    interval,
		maxSliceQty: maxSliceQty,
		risk:        risk,
		submit:      submit,
	}
}

func (t *TWAP) Initialize() error { return t.transition(types.StrategyInitialized) }
func (t *TWAP) Start() error {
	if err := t.transition(types.StrategyRunning); err != nil {
		return err
	}
	t.startedAt = time.Now()
	return nil
}
func (t *TWAP) Pause() error  { return t.transition(types.StrategyPaused) }
func (t *TWAP) Resume() error { return t.transition(types.StrategyRunning) }
func (t *TWAP) Cancel() error { return t.transition(types.StrategyCancelled) }

func (t *TWAP) OnQuote(q types.Quote) {
	t.lastMid = (q.BidPrice + q.AskPrice) / 2
}

func (t *TWAP) OnFill(tr types.Trade) {}

// OnTimer computes how many buckets have elapsed since start and releases
// the owed quantity (bucket target minus already-released), capped at
// maxSliceQty, completing the algorithm once the full quantity is out.
func (t *TWAP) OnTimer(now time.Time) {
	if t.State() != types.StrategyRunning {
		return
	}
	elapsedBuckets := int(now.Sub(t.startedAt) / t.interval)
	if elapsedBuckets > t.buckets {
		elapsedBuckets = t.buckets
	}
	t.lastBucket = elapsedBuckets

	target := t.totalQty * int64(elapsedBuckets) / int64(t.buckets)
	owed := target - t.released
	if owed <= 0 {
		if t.released >= t.totalQty {
			t.transition(types.StrategyCompleted)
		}
		return
	}
	if t.maxSliceQty > 0 && owed > t.maxSliceQty {
		owed = t.maxSliceQty
	}

	signal := Signal{Symbol: t.Symbol(), Side: t.side, Quantity: owed, LimitPrice: t.lastMid, Reason: "twap_slice"}
	if t.risk != nil {
		if ok, _ := t.risk.Approve(signal); !ok {
			return
		}
	}
	if t.submit != nil {
		t.submit.Submit(signal)
	}
	t.released += owed
	t.setProgress(t.released, t.totalQty, &signal)

	if t.released >= t.totalQty {
		t.transition(types.StrategyCompleted)
	}
}
