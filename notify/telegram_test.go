package notify

import (
	"testing"

	"github.com/arrowlane/hft-engine/types"
)

func TestNewTelegramNotifierIsNoOpWithoutCredentials(t *testing.T) {
	t.Parallel()
	n, err := NewTelegramNotifier("", 0)
	if err != nil {
		t.Fatalf("NewTelegramNotifier: %v", err)
	}
	// None of these should panic even though the bot API was never set up.
	n.OnOrderUpdate(types.Order{Symbol: "BTC-USD", Status: types.StatusFilled})
	n.OnPositionUpdate(types.Position{Symbol: "BTC-USD", NetQuantity: 0})
	n.NotifyCircuitTrip("test")
}

func TestCentsToDecimalFormatting(t *testing.T) {
	t.Parallel()
	cases := map[int64]string{
		0:      "0.00",
		150:    "1.50",
		-250:   "-2.50",
		100000: "1000.00",
	}
	for cents, want := range cases {
		if got := centsToDecimal(cents); got != want {
			t.Errorf("centsToDecimal(%d) = %s, want %s", cents, got, want)
		}
	}
}
