// Package trader orchestrates one trading run: universe selection,
// correlation gating, sizing, regime classification and the trailing
// exit loop, one symbol at a time.
package trader

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/mirrortrade/config"
	"github.com/raykavin/mirrortrade/core"
	"github.com/raykavin/mirrortrade/logger"
	"github.com/raykavin/mirrortrade/metric"
	"github.com/raykavin/mirrortrade/mirror"
	"github.com/raykavin/mirrortrade/regime"
	"github.com/raykavin/mirrortrade/sizing"
	"github.com/raykavin/mirrortrade/trailing"
	"github.com/raykavin/mirrortrade/universe"
)

// Outcome tells what happened to one candidate symbol during a run
type Outcome string

const (
	OutcomeTraded  Outcome = "traded"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Skip reasons reported per symbol and on the skip metric
const (
	ReasonCandleFetch = "candle_fetch"
	ReasonCorrelation = "correlation"
	ReasonAssetInfo   = "asset_info"
	ReasonQuote       = "quote"
	ReasonQuantity    = "quantity"
)

// SymbolResult is the per-symbol entry of a run report
type SymbolResult struct {
	Symbol  string           `json:"symbol"`
	Outcome Outcome          `json:"outcome"`
	Reason  string           `json:"reason,omitempty"`
	Error   string           `json:"error,omitempty"`
	Trade   *trailing.Result `json:"trade,omitempty"`
}

// RunReport summarizes a full run. Message is set when the run ended
// without opening any position.
type RunReport struct {
	Message string         `json:"message,omitempty"`
	Results []SymbolResult `json:"results"`
}

// Trades returns only the completed trade results of the run; failed and
// aborted positions are reported through their SymbolResult instead
func (r *RunReport) Trades() []trailing.Result {
	trades := make([]trailing.Result, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Outcome == OutcomeTraded && res.Trade != nil {
			trades = append(trades, *res.Trade)
		}
	}
	return trades
}

// Trader wires the decision pipeline to an exchange and runs it
type Trader struct {
	exchange   core.Exchange
	log        logger.Logger
	cfg        config.TradingConfig
	filter     universe.Filter
	gate       mirror.Gate
	classifier regime.Classifier
	engine     *trailing.Engine
}

// New creates a trader from the trading configuration
func New(
	exchange core.Exchange,
	storage core.OrderStorage,
	notifier core.Notifier,
	log logger.Logger,
	cfg config.TradingConfig,
) *Trader {
	return &Trader{
		exchange:   exchange,
		log:        log,
		cfg:        cfg,
		filter:     universe.New(cfg.QuoteAsset, cfg.LeaderPair),
		gate:       mirror.NewGate(cfg.CorrelationWindow, cfg.CorrelationThreshold),
		classifier: regime.New(cfg.ADXPeriod, cfg.ADXThreshold, cfg.MomentumLookback, cfg.MomentumThreshold),
		engine:     trailing.NewEngine(exchange, storage, notifier, log, cfg.PollInterval),
	}
}

// Run executes one complete trading run: every admitted symbol is traded
// through its full lifecycle before the next candidate is considered.
// Per-symbol failures are contained in the report and never end the run.
func (t *Trader) Run(ctx context.Context) (*RunReport, error) {
	started := time.Now()
	metric.RunStarted()
	defer func() { metric.RunDuration(time.Since(started).Seconds()) }()

	report := &RunReport{Results: []SymbolResult{}}

	symbols, err := t.selectUniverse(ctx)
	if err != nil {
		t.log.WithError(err).Error("failed to load the instrument catalog")
		report.Message = "no tradeable symbol found"
		return report, nil
	}
	t.log.Infof("screening %d %s pairs against %s", len(symbols), t.cfg.QuoteAsset, t.cfg.LeaderPair)

	leaderCloses, err := t.closes(ctx, t.cfg.LeaderPair)
	if err != nil {
		t.log.WithError(err).Errorf("failed to fetch %s candles", t.cfg.LeaderPair)
		report.Message = "no tradeable symbol found"
		return report, nil
	}

	for _, symbol := range symbols {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		report.Results = append(report.Results, t.processSymbol(ctx, symbol, leaderCloses))
	}

	if len(report.Trades()) == 0 {
		report.Message = "no tradeable symbol found"
	}
	return report, nil
}

// selectUniverse loads the exchange catalog and filters it down to the
// tradeable candidates
func (t *Trader) selectUniverse(ctx context.Context) ([]string, error) {
	catalog, err := t.exchange.InstrumentCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return t.filter.Select(catalog), nil
}

// closes fetches the last correlation-window completed closes of a pair
func (t *Trader) closes(ctx context.Context, pair string) ([]float64, error) {
	candles, err := t.exchange.CandlesByLimit(ctx, pair, t.cfg.CandleInterval, t.cfg.CorrelationWindow)
	if err != nil {
		return nil, err
	}
	return core.Closes(candles).Values(), nil
}

// processSymbol runs the full decision pipeline for one candidate. The
// candles fetched for the correlation gate are reused for regime
// classification so both decisions see the same market snapshot.
func (t *Trader) processSymbol(ctx context.Context, symbol string, leaderCloses []float64) SymbolResult {
	candles, err := t.exchange.CandlesByLimit(ctx, symbol, t.cfg.CandleInterval, t.cfg.CorrelationWindow)
	if err != nil {
		t.log.WithError(err).Warnf("skipping %s: candle fetch failed", symbol)
		return t.skip(symbol, ReasonCandleFetch, err)
	}

	closes := core.Closes(candles).Values()
	correlation := t.gate.Correlation(closes, leaderCloses)
	if !t.gate.Admit(closes, leaderCloses) {
		t.log.Debugf("skipping %s: correlation %.4f below %.2f", symbol, correlation, t.cfg.CorrelationThreshold)
		return t.skip(symbol, ReasonCorrelation, nil)
	}
	t.log.Infof("%s admitted with correlation %.4f", symbol, correlation)

	info, err := t.exchange.AssetInfo(symbol)
	if err != nil {
		t.log.WithError(err).Warnf("skipping %s: no asset info", symbol)
		return t.skip(symbol, ReasonAssetInfo, err)
	}

	price, err := t.exchange.LastQuote(ctx, symbol)
	if err != nil {
		t.log.WithError(err).Warnf("skipping %s: quote failed", symbol)
		return t.skip(symbol, ReasonQuote, err)
	}

	quantity := sizing.ForAsset(info, t.cfg.Notional(), price)
	if quantity <= 0 {
		t.log.Warnf("skipping %s: notional %.2f below minimum lot at price %.8f",
			symbol, t.cfg.Notional(), price)
		return t.skip(symbol, ReasonQuantity, nil)
	}

	profile := t.classifier.Classify(candles)
	t.log.Infof("%s regime %s (adx %.2f, momentum %.4f)",
		symbol, profile.Label, t.classifier.LatestADX(candles), t.classifier.Momentum(candles))

	result, err := t.engine.Run(ctx, symbol, quantity, profile)
	if result.EntryPrice > 0 {
		metric.TradeOpened()
	}
	if err != nil {
		metric.TradeAborted()
		return SymbolResult{
			Symbol:  symbol,
			Outcome: OutcomeFailed,
			Error:   err.Error(),
			Trade:   &result,
		}
	}

	switch result.State {
	case trailing.StateClosedTarget:
		metric.TradeClosed("target")
	case trailing.StateClosedStop:
		metric.TradeClosed("stop")
	}
	return SymbolResult{Symbol: symbol, Outcome: OutcomeTraded, Trade: &result}
}

func (t *Trader) skip(symbol, reason string, err error) SymbolResult {
	metric.SymbolSkipped(reason)
	result := SymbolResult{Symbol: symbol, Outcome: OutcomeSkipped, Reason: reason}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// String gives a short human summary for logs and notifications
func (r *RunReport) String() string {
	if r.Message != "" && len(r.Trades()) == 0 {
		return r.Message
	}
	return fmt.Sprintf("run finished: %d symbols screened, %d traded", len(r.Results), len(r.Trades()))
}
