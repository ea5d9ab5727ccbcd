package algo

import (
	"time"

	"github.com/arrowlane/hft-engine/types"
)

// VWAP distributes a total target quantity proportionally to observed
// market volume rather than evenly across time: each quote update
// contributes its displayed size to a running total, and the algorithm
// releases enough of its own quantity to keep its participation rate at
// the configured fraction of observed volume.
type VWAP struct {
	base
	side             types.OrderSide
	totalQty         int64
	participationBps int64 // target participation, basis points of observed volume
	observedVolume   int64
	released         int64
	risk             RiskApprover
	submit           OrderSubmitter
}

// NewVWAP creates a VWAP execution algorithm targeting totalQty at
// participationBps basis points of observed volume (e.g. 1000 = 10%).
func NewVWAP(id, symbol string, side types.OrderSide, totalQty, participationBps int64, risk RiskApprover, submit OrderSubmitter) *VWAP {
	return &VWAP{
		base:             newBase(id, "vwap", symbol),
		side:             side,
		totalQty:         totalQty,
		participationBps: participationBps,
		risk:             risk,
		submit:           submit,
	}
}

func (v *VWAP) Initialize() error { return v.transition(types.StrategyInitialized) }
func (v *VWAP) Start() error      { return v.transition(types.StrategyRunning) }
func (v *VWAP) Pause() error      { return v.transition(types.StrategyPaused) }
func (v *VWAP) Resume() error     { return v.transition(types.StrategyRunning) }
func (v *VWAP) Cancel() error     { return v.transition(types.StrategyCancelled) }

// OnQuote folds the quote's visible size into observed volume and releases
// a slice if the target participation now allows one.
func (v *VWAP) OnQuote(q types.Quote) {
	if v.State() != types.StrategyRunning {
		return
	}
	sideSize := q.AskSize
	if v.side == types.Sell {
		sideSize = q.BidSize
	}
	v.observedVolume += sideSize

	allowance := v.observedVolume * v.participationBps / 10000
	owed := allowance - v.released
	if owed <= 0 {
		return
	}
	remaining := v.totalQty - v.released
	if owed > remaining {
		owed = remaining
	}
	if owed <= 0 {
		return
	}

	mid := (q.BidPrice + q.AskPrice) / 2
	signal := Signal{Symbol: v.Symbol(), Side: v.side, Quantity: owed, LimitPrice: mid, Reason: "vwap_slice"}
	if v.risk != nil {
		if ok, _ := v.risk.Approve(signal); !ok {
			return
		}
	}
	if v.submit != nil {
		v.submit.Submit(signal)
	}
	v.released += owed
	v.setProgress(v.released, v.totalQty, &signal)

	if v.released >= v.totalQty {
		v.transition(types.StrategyCompleted)
	}
}

func (v *VWAP) OnFill(t types.Trade)     {}
func (v *VWAP) OnTimer(now time.Time)    {}
