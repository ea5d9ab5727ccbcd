// Command hftengine wires the ring, order manager, position manager, risk
// gate, journals, algorithms and the optional notification/mirror/feed
// reference adapters into a running process. Architecture and startup
// sequence (env load, config load, signal-driven graceful shutdown) are
// grounded on the teacher's cmd/polybot/main.go.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/algo"
	"github.com/arrowlane/hft-engine/config"
	"github.com/arrowlane/hft-engine/engine"
	"github.com/arrowlane/hft-engine/feed"
	"github.com/arrowlane/hft-engine/journal"
	"github.com/arrowlane/hft-engine/metrics"
	"github.com/arrowlane/hft-engine/mirror"
	"github.com/arrowlane/hft-engine/notify"
	"github.com/arrowlane/hft-engine/port"
	"github.com/arrowlane/hft-engine/risk"
	"github.com/arrowlane/hft-engine/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the engine config file")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, continuing with process environment")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}

	journalMode := journal.ModeFileBased
	switch cfg.Persistence.Mode {
	case "in-memory":
		journalMode = journal.ModeInMemory
	case "durable-log":
		journalMode = journal.ModeDurable
	}
	journals, err := journal.Open(cfg.Persistence.Root, journalMode)
	if err != nil {
		log.Fatal().Err(err).Msg("open journals")
	}

	orderPort, err := port.NewSigningStub("hft-engine", "0x0000000000000000000000000000000000000000", 1, "", 50*time.Millisecond)
	if err != nil {
		log.Fatal().Err(err).Msg("init order port")
	}

	metricsRegistry := metrics.New(cfg.Metrics.Namespace)

	eng, err := engine.New(engine.Config{
		RingCapacity: cfg.Ring.Capacity,
		Symbols:      []types.Symbol{{Name: "DEMO", Scale: types.DefaultScale}},
		Journals:     journals,
		RiskLimits: risk.Limits{
			MaxOrderSize:                   cfg.Risk.Limits.MaxOrderSize,
			MaxOrderNotional:               cfg.Risk.Limits.MaxOrderNotional,
			MaxPositionSize:                cfg.Risk.Limits.MaxPositionSize,
			MaxNetExposure:                 cfg.Risk.Limits.MaxNetExposure,
			MaxGrossExposure:               cfg.Risk.Limits.MaxGrossExposure,
			MaxDailyOrders:                 cfg.Risk.Limits.MaxDailyOrders,
			MaxDailyNotional:               cfg.Risk.Limits.MaxDailyNotional,
			MaxDailyLoss:                   cfg.Risk.Limits.MaxDailyLoss,
			CircuitBreakerFailureThreshold: cfg.Risk.Limits.CircuitBreakerFailureThreshold,
			CircuitBreakerCooldown:         cfg.CircuitBreakerCooldown(),
		},
		OrderPort: orderPort,
		Metrics:   metricsRegistry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("construct engine")
	}

	if err := eng.RestoreFromJournals(); err != nil {
		log.Fatal().Err(err).Msg("restore from journals")
	}

	if cfg.Notify.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			log.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			eng.AddOrderListener(tg)
			eng.AddPositionListener(tg)
		}
	}

	if cfg.Mirror.Enabled {
		sqlMirror, err := mirror.Open(cfg.Mirror.DSN)
		if err != nil {
			log.Warn().Err(err).Msg("sql mirror disabled")
		} else {
			eng.AddOrderListener(sqlMirror)
			eng.AddPositionListener(sqlMirror)
			defer sqlMirror.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quoteFeed := feed.New(cfg.Feed.WSURL)
	if err := quoteFeed.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start feed")
	}

	quotes, _ := quoteFeed.Subscribe("DEMO")
	momentum := algo.NewMomentum("strat-momentum-1", "DEMO", 5, 20, 10, eng.RiskApprover(), eng.OrderSubmitter())
	momentum.Initialize()
	momentum.Start()
	eng.Router().Subscribe(momentum)

	go func() {
		for q := range quotes {
			eng.Router().Route(q)
		}
	}()

	if err := eng.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start engine")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	quoteFeed.Stop()
	eng.Stop()
	journals.Close()
}
