// Package mirror provides an optional read-model mirror of trades and
// positions into a SQL database (sqlite by default, postgres via DSN) for
// external dashboards/BI tooling. It is never the source of truth — the
// journal package is — this only subscribes to engine listeners and
// writes a denormalized copy. Grounded on the teacher's internal/database
// (gorm models with decimal-typed columns), adapted from the teacher's
// Market/Trade models to the new domain's Order/Trade/Position types.
package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arrowlane/hft-engine/types"
)

// TradeRow is the gorm model mirroring a fill.
type TradeRow struct {
	ID         uint `gorm:"primaryKey"`
	Symbol     string
	Side       string
	Price      int64
	Scale      int64
	Quantity   int64
	StrategyID string
	Timestamp  time.Time
}

// PositionRow is the gorm model mirroring the latest snapshot per symbol.
type PositionRow struct {
	Symbol        string `gorm:"primaryKey"`
	Scale         int64
	NetQuantity   int64
	AvgEntryPrice int64
	RealizedPnL   int64
	UpdatedAt     time.Time
}

// AuditRow mirrors an audit event.
type AuditRow struct {
	ID        uint `gorm:"primaryKey"`
	Severity  string
	Source    string
	Message   string
	Symbol    string
	Timestamp time.Time
}

// SQLMirror wraps a gorm.DB and implements engine.OrderListener /
// engine.PositionListener.
type SQLMirror struct {
	db *gorm.DB
}

// Open opens dsn as a sqlite file path, or as a postgres DSN when it
// starts with "postgres://".
func Open(dsn string) (*SQLMirror, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("mirror: open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&TradeRow{}, &PositionRow{}, &AuditRow{}); err != nil {
		return nil, fmt.Errorf("mirror: migrate: %w", err)
	}
	return &SQLMirror{db: db}, nil
}

// OnOrderUpdate mirrors fills as trade rows (the order journal already
// carries order status, the mirror only cares about executed quantity).
func (m *SQLMirror) OnOrderUpdate(o types.Order) {
	if o.Status != types.StatusFilled && o.Status != types.StatusPartiallyFilled {
		return
	}
	row := TradeRow{
		Symbol: o.Symbol, Side: o.Side.String(), Price: o.AvgFillPrice,
		Scale: o.Scale, Quantity: o.FilledQty, StrategyID: o.StrategyID, Timestamp: o.UpdatedAt,
	}
	if err := m.db.Create(&row).Error; err != nil {
		log.Warn().Err(err).Msg("mirror: insert trade row failed")
	}
}

// OnPositionUpdate upserts the latest position snapshot for a symbol.
func (m *SQLMirror) OnPositionUpdate(p types.Position) {
	row := PositionRow{
		Symbol: p.Symbol, Scale: p.Scale, NetQuantity: p.NetQuantity,
		AvgEntryPrice: p.AvgEntryPrice, RealizedPnL: p.RealizedPnL, UpdatedAt: p.UpdatedAt,
	}
	if err := m.db.Save(&row).Error; err != nil {
		log.Warn().Err(err).Msg("mirror: upsert position row failed")
	}
}

// RecordAudit mirrors an audit event.
func (m *SQLMirror) RecordAudit(e types.AuditEvent) {
	row := AuditRow{Severity: e.Severity.String(), Source: e.Source, Message: e.Message, Symbol: e.Symbol, Timestamp: e.Timestamp}
	if err := m.db.Create(&row).Error; err != nil {
		log.Warn().Err(err).Msg("mirror: insert audit row failed")
	}
}

// Close releases the underlying SQL connection.
func (m *SQLMirror) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
