package journal

import "fmt"

// Root owns the five persistence streams and coordinates cold-start
// rebuild in the order spec §4.5 requires: positions, then orders, then
// strategies, with trades and audit replayed for completeness but not
// feeding the live risk/position state directly (positions is the
// authoritative exposure source, orders/trades corroborate it).
type Root struct {
	Orders     *OrderJournal
	Trades     *TradeJournal
	Positions  *PositionJournal
	Strategies *StrategyJournal
	Audit      *AuditJournal
}

// Open creates all five streams under root in the given mode.
func Open(root string, mode Mode) (*Root, error) {
	orders, err := OpenOrderJournal(root, mode)
	if err != nil {
		return nil, fmt.Errorf("journal: orders: %w", err)
	}
	trades, err := OpenTradeJournal(root, mode)
	if err != nil {
		return nil, fmt.Errorf("journal: trades: %w", err)
	}
	positions, err := OpenPositionJournal(root, mode)
	if err != nil {
		return nil, fmt.Errorf("journal: positions: %w", err)
	}
	strategies, err := OpenStrategyJournal(root, mode)
	if err != nil {
		return nil, fmt.Errorf("journal: strategies: %w", err)
	}
	audit, err := OpenAuditJournal(root, mode)
	if err != nil {
		return nil, fmt.Errorf("journal: audit: %w", err)
	}
	return &Root{Orders: orders, Trades: trades, Positions: positions, Strategies: strategies, Audit: audit}, nil
}

// Rebuild replays all five streams in the cold-start order: positions,
// orders, strategies, trades, audit.
func (r *Root) Rebuild() error {
	if err := r.Positions.Rebuild(); err != nil {
		return fmt.Errorf("journal: rebuild positions: %w", err)
	}
	if err := r.Orders.Rebuild(); err != nil {
		return fmt.Errorf("journal: rebuild orders: %w", err)
	}
	if err := r.Strategies.Rebuild(); err != nil {
		return fmt.Errorf("journal: rebuild strategies: %w", err)
	}
	if err := r.Trades.Rebuild(); err != nil {
		return fmt.Errorf("journal: rebuild trades: %w", err)
	}
	if err := r.Audit.Rebuild(); err != nil {
		return fmt.Errorf("journal: rebuild audit: %w", err)
	}
	return nil
}

// Close closes all five streams.
func (r *Root) Close() error {
	for _, err := range []error{
		r.Orders.Close(), r.Trades.Close(), r.Positions.Close(),
		r.Strategies.Close(), r.Audit.Close(),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
