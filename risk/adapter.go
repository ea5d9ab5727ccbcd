package risk

import (
	"github.com/arrowlane/hft-engine/algo"
	"github.com/arrowlane/hft-engine/types"
)

// GateAdapter wraps a *Gate to satisfy algo.RiskApprover, keeping the algo
// package decoupled from risk's concrete types (the same import-cycle-
// avoidance shape as the teacher's RiskGateAdapter wrapping RiskGate for
// strategy.TradeApprover).
type GateAdapter struct {
	Gate        *Gate
	NetPosition func(symbol string) int64
}

// Approve adapts an algo.Signal into a risk Intent and evaluates it.
func (a *GateAdapter) Approve(signal algo.Signal) (bool, string) {
	var current int64
	if a.NetPosition != nil {
		current = a.NetPosition(signal.Symbol)
	}
	decision := a.Gate.Evaluate(Intent{
		Symbol:        signal.Symbol,
		Side:          signal.Side,
		Quantity:      signal.Quantity,
		Price:         signal.LimitPrice,
		Scale:         types.DefaultScale,
		CurrentNetPos: current,
	})
	return decision.Approved, decision.Reason
}
