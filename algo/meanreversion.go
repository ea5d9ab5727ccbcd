package algo

import (
	"time"

	"github.com/arrowlane/hft-engine/types"
)

// MeanReversion trades against extreme z-score deviations from a rolling
// mean: z = (price - mean) / stddev. A z-score beyond +entryZ sells
// (expecting reversion down), beyond -entryZ buys (expecting reversion
// up); a return within exitZ of the mean flattens. Grounded on the
// teacher's rolling-window statistics idiom in internal/indicators.go.
type MeanReversion struct {
	base
	window           int
	entryZ, exitZ    float64
	quantity         int64
	prices           []int64
	position         int64 // signed: +long, -short, 0 flat
	risk             RiskApprover
	submit           OrderSubmitter
}

// NewMeanReversion creates a z-score mean-reversion algorithm over a
// rolling window of `window` prices.
func NewMeanReversion(id, symbol string, window int, entryZ, exitZ float64, quantity int64, risk RiskApprover, submit OrderSubmitter) *MeanReversion {
	return &MeanReversion{
		base:     newBase(id, "mean_reversion", symbol),
		window:   window,
		entryZ:   entryZ,
		exitZ:    exitZ,
		quantity: quantity,
		risk:     risk,
		submit:   submit,
	}
}

func (mr *MeanReversion) Initialize() error { return mr.transition(types.StrategyInitialized) }
func (mr *MeanReversion) Start() error      { return mr.transition(types.StrategyRunning) }
func (mr *MeanReversion) Pause() error      { return mr.transition(types.StrategyPaused) }
func (mr *MeanReversion) Resume() error     { return mr.transition(types.StrategyRunning) }
func (mr *MeanReversion) Cancel() error     { return mr.transition(types.StrategyCancelled) }

func (mr *MeanReversion) OnQuote(q types.Quote) {
	if mr.State() != types.StrategyRunning {
		return
	}
	mid := (q.BidPrice + q.AskPrice) / 2
	mr.prices = append(mr.prices, mid)
	if len(mr.prices) > mr.window*4 {
		mr.prices = mr.prices[len(mr.prices)-mr.window*4:]
	}
	if len(mr.prices) < mr.window {
		return
	}

	mean := SMA(mr.prices, mr.window)
	std := StdDev(mr.prices, mr.window)
	if std == 0 {
		return
	}
	z := float64(mid-mean) / std

	var signal *Signal
	switch {
	case mr.position == 0 && z >= mr.entryZ:
		s := Signal{Symbol: mr.Symbol(), Side: types.Sell, Quantity: mr.quantity, LimitPrice: mid, Reason: "zscore_entry_short"}
		signal = &s
	case mr.position == 0 && z <= -mr.entryZ:
		s := Signal{Symbol: mr.Symbol(), Side: types.Buy, Quantity: mr.quantity, LimitPrice: mid, Reason: "zscore_entry_long"}
		signal = &s
	case mr.position > 0 && z >= -mr.exitZ:
		s := Signal{Symbol: mr.Symbol(), Side: types.Sell, Quantity: mr.quantity, LimitPrice: mid, Reason: "zscore_exit_long"}
		signal = &s
	case mr.position < 0 && z <= mr.exitZ:
		s := Signal{Symbol: mr.Symbol(), Side: types.Buy, Quantity: mr.quantity, LimitPrice: mid, Reason: "zscore_exit_short"}
		signal = &s
	}
	if signal == nil {
		return
	}
	if mr.risk != nil {
		if ok, _ := mr.risk.Approve(*signal); !ok {
			return
		}
	}
	if mr.submit != nil {
		mr.submit.Submit(*signal)
	}
	if signal.Side == types.Buy {
		mr.position += signal.Quantity
	} else {
		mr.position -= signal.Quantity
	}
	mr.setProgress(mr.quantity, mr.quantity, signal)
}

func (mr *MeanReversion) OnFill(t types.Trade)  {}
func (mr *MeanReversion) OnTimer(now time.Time) {}
