// Package port declares the external-facing interfaces the trading core
// consumes: a market data source publishing quotes, and an order port
// submitting/cancelling orders against a venue. Wire adapters for real
// exchanges are explicitly out of scope; this package also ships a
// signing stub implementation of OrderPort that exercises the same
// EIP-712 order-authentication shape a real adapter would need, without
// ever calling out over the network.
package port

import (
	"context"

	"github.com/arrowlane/hft-engine/types"
)

// MarketDataSource publishes top-of-book quotes for subscribed symbols.
type MarketDataSource interface {
	Subscribe(symbol string) (<-chan types.Quote, error)
	Start(ctx context.Context) error
	Stop() error
}

// OrderAck is the venue's acknowledgement of a submitted order.
type OrderAck struct {
	ClientOrderID string
	ExchangeID    string
	Accepted      bool
	Reason        string
}

// OrderPort submits and cancels orders against a venue and reports fills
// asynchronously via the FillListener registered with SetFillListener.
type OrderPort interface {
	Submit(ctx context.Context, order types.Order) (OrderAck, error)
	Cancel(ctx context.Context, clientOrderID string) error
	SetFillListener(l FillListener)
}

// FillListener receives fills as they occur on the venue side.
type FillListener interface {
	OnFill(trade types.Trade)
}

// FillListenerFunc adapts a plain function to FillListener.
type FillListenerFunc func(types.Trade)

func (f FillListenerFunc) OnFill(t types.Trade) { f(t) }
