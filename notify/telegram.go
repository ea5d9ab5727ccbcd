// Package notify implements engine.OrderListener and
// engine.PositionListener as a Telegram notifier, posting fills,
// rejections and status changes to a configured chat. Grounded on the
// teacher's bot.TelegramBot (token/chat id from config, message
// formatting), trimmed to the notification path only — the teacher's
// bot control commands (/pause, /resume, /stats) are part of the HTTP/bot
// control surface explicitly out of scope here.
package notify

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/arrowlane/hft-engine/types"
)

// centsToDecimal renders a fixed-point cents figure as a human-readable
// decimal string for chat messages. decimal.Decimal is used only at this
// display boundary; the trading core stays on int64 fixed-point throughout.
func centsToDecimal(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// TelegramNotifier posts order and position updates to a Telegram chat.
type TelegramNotifier struct {
	mu     sync.Mutex
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a notifier bound to token/chatID. A zero
// chatID or empty token disables sending (every notification method
// returns without sending) so the
// engine can wire this unconditionally without branching on config.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		return &TelegramNotifier{}, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: telegram init: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (t *TelegramNotifier) send(text string) {
	if t.api == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		log.Warn().Err(err).Msg("notify: telegram send failed")
	}
}

// OnOrderUpdate notifies on fills and terminal rejections/cancellations.
func (t *TelegramNotifier) OnOrderUpdate(o types.Order) {
	switch o.Status {
	case types.StatusFilled:
		t.send(fmt.Sprintf("✅ FILLED %s %s qty=%d avg=%d", o.Symbol, o.Side, o.FilledQty, o.AvgFillPrice))
	case types.StatusRejected:
		t.send(fmt.Sprintf("❌ REJECTED %s %s", o.Symbol, o.ClientOrderID))
	case types.StatusCancelled:
		t.send(fmt.Sprintf("⚠️ CANCELLED %s %s", o.Symbol, o.ClientOrderID))
	}
}

// OnPositionUpdate notifies when a position flips to flat (a round trip
// completed) so realized PnL is visible without polling.
func (t *TelegramNotifier) OnPositionUpdate(p types.Position) {
	if p.NetQuantity == 0 {
		scale := p.Scale
		if scale == 0 {
			scale = types.DefaultScale
		}
		cents := types.Normalize(p.RealizedPnL, scale, types.DefaultScale)
		t.send(fmt.Sprintf("📉 FLAT %s realized_pnl=$%s", p.Symbol, centsToDecimal(cents)))
	}
}

// NotifyCircuitTrip notifies when the risk engine's circuit breaker opens.
func (t *TelegramNotifier) NotifyCircuitTrip(reason string) {
	t.send(fmt.Sprintf("🚨 CIRCUIT BREAKER OPEN: %s", reason))
}
