package risk

// Sizer computes order quantity from a fixed fraction of equity at risk,
// adapted from the teacher's decimal-based percent-risk sizer into the
// domain's int64 fixed-point arithmetic. It is a standalone helper, kept
// separate from the Gate's post-hoc limit checks; the algorithms in
// package algo size their own orders and do not call it.
//
// Formula: size = (equity * riskBps / 10000) / |entry - stop|
type Sizer struct {
	riskBps     int64 // basis points of equity risked per trade
	minSize     int64
	maxEquityBps int64 // basis points cap of equity in a single trade
}

// NewSizer creates a sizer risking riskBps basis points of equity per
// trade (e.g. 100 = 1%), never committing more than 25% of equity.
func NewSizer(riskBps int64) *Sizer {
	return &Sizer{
		riskBps:      riskBps,
		minSize:      1,
		maxEquityBps: 2500,
	}
}

// Calculate returns an order quantity sized off the distance between entry
// and stop, clamped to the sizer's min/max constraints.
func (s *Sizer) Calculate(entry, stop, equityCents int64) int64 {
	riskPerUnit := abs64(entry - stop)
	if riskPerUnit == 0 {
		return s.minSize
	}
	riskAmount := equityCents * s.riskBps / 10000
	size := riskAmount / riskPerUnit
	return s.applyConstraints(size, entry, equityCents)
}

func (s *Sizer) applyConstraints(size, entryPrice, equityCents int64) int64 {
	if size < s.minSize {
		return s.minSize
	}
	if entryPrice <= 0 {
		return size
	}
	maxNotional := equityCents * s.maxEquityBps / 10000
	maxUnits := maxNotional / entryPrice
	if size > maxUnits {
		return maxUnits
	}
	return size
}

// CalculateWithKelly applies a half-Kelly fraction (capped at riskBps) in
// place of the fixed percentage, falling back to Calculate when there is no
// usable win/loss statistic yet.
func (s *Sizer) CalculateWithKelly(entry, stop, equityCents int64, winRateBps, avgWinLossBps int64) int64 {
	if avgWinLossBps == 0 {
		return s.Calculate(entry, stop, equityCents)
	}
	kellyBps := winRateBps - (10000-winRateBps)*10000/avgWinLossBps
	halfKellyBps := kellyBps / 2
	if halfKellyBps > s.riskBps {
		halfKellyBps = s.riskBps
	}
	if halfKellyBps < 0 {
		return s.minSize
	}

	riskPerUnit := abs64(entry - stop)
	if riskPerUnit == 0 {
		return s.minSize
	}
	riskAmount := equityCents * halfKellyBps / 10000
	size := riskAmount / riskPerUnit
	return s.applyConstraints(size, entry, equityCents)
}

// RiskAmount returns the notional at risk for a given size and stop distance.
func (s *Sizer) RiskAmount(size, entry, stop int64) int64 {
	return size * abs64(entry-stop)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
