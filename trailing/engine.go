// Package trailing owns the full lifecycle of one position: entry, the
// trailing stop-loss / take-profit tracking loop, and exit.
package trailing

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/mirrortrade/core"
	"github.com/raykavin/mirrortrade/logger"
)

// State identifies where the engine is in the position lifecycle
type State string

const (
	StateOpening      State = "OPENING"
	StateTracking     State = "TRACKING"
	StateClosedTarget State = "CLOSED_TARGET"
	StateClosedStop   State = "CLOSED_STOP"
	StateAborted      State = "ABORTED"
)

// Result is the terminal outcome of managing one position. When State is
// StateAborted and Closed is false the position may still be open on the
// exchange and needs manual intervention.
type Result struct {
	Pair        string  `json:"symbol"`
	State       State   `json:"state"`
	RiskReward  string  `json:"risk_reward"`
	EntryPrice  float64 `json:"entry"`
	Quantity    float64 `json:"quantity"`
	ExitPrice   float64 `json:"exit"`
	PeakPrice   float64 `json:"peak"`
	StopPrice   float64 `json:"stop"`
	TargetPrice float64 `json:"target"`
	Closed      bool    `json:"closed"`
}

// Engine runs the OPENING -> TRACKING -> {CLOSED_TARGET, CLOSED_STOP,
// ABORTED} state machine for a single position at a time. TrailState is
// never shared across positions.
type Engine struct {
	exchange     core.Exchange
	storage      core.OrderStorage
	notifier     core.Notifier
	log          logger.Logger
	pollInterval time.Duration
}

// NewEngine creates a trailing exit engine
func NewEngine(
	exchange core.Exchange,
	storage core.OrderStorage,
	notifier core.Notifier,
	log logger.Logger,
	pollInterval time.Duration,
) *Engine {
	return &Engine{
		exchange:     exchange,
		storage:      storage,
		notifier:     notifier,
		log:          log,
		pollInterval: pollInterval,
	}
}

// Run opens a position of the given quantity and manages it until it
// closes or the loop aborts. The returned Result always carries the last
// known state; a non-nil error means the position was not cleanly closed.
func (e *Engine) Run(ctx context.Context, pair string, quantity float64, profile core.RiskProfile) (Result, error) {
	result := Result{
		Pair:       pair,
		State:      StateOpening,
		RiskReward: profile.Label,
		Quantity:   quantity,
	}

	entryPrice, err := e.open(ctx, pair, quantity)
	if err != nil {
		e.notifier.Notify(fmt.Sprintf("❌ Trade failed: %s", err))
		result.State = StateAborted
		return result, err
	}

	e.notifier.Notify(fmt.Sprintf(
		"🟢 *TRADE OPENED*\n"+
			"Symbol: `%s`\n"+
			"Side: `BUY`\n"+
			"Entry: `$%.4f`\n"+
			"Quantity: `%v`\n"+
			"Risk:Reward: `%s`\n"+
			"Trailing SL: `%.2f%%`\n"+
			"Trailing TP: `%.2f%%`",
		pair, entryPrice, quantity, profile.Label,
		profile.StopPercent*100, profile.TargetPercent*100,
	))

	state := NewTrailState(entryPrice, profile)
	result.State = StateTracking
	result.EntryPrice = entryPrice

	for {
		price, err := e.exchange.LastQuote(ctx, pair)
		if err != nil {
			return e.abort(result, state, err)
		}

		switch state.Tick(price, profile) {
		case OutcomeTargetHit:
			if err := e.close(ctx, pair, quantity); err != nil {
				return e.abort(result, state, err)
			}

			e.notifier.Notify(fmt.Sprintf(
				"🟢 *TRADE CLOSED (TP)*\n"+
					"Symbol: `%s`\n"+
					"Exit: `$%.4f`\n"+
					"Peak: `$%.4f`\n"+
					"TP: `$%.4f`\n"+
					"Trailing TP Hit.",
				pair, state.LastPrice, state.HighestPrice, state.TargetPrice,
			))

			result.State = StateClosedTarget
			return e.finish(result, state), nil

		case OutcomeStopHit:
			if err := e.close(ctx, pair, quantity); err != nil {
				return e.abort(result, state, err)
			}

			e.notifier.Notify(fmt.Sprintf(
				"🔴 *TRADE CLOSED (SL)*\n"+
					"Symbol: `%s`\n"+
					"Exit: `$%.4f`\n"+
					"Peak: `$%.4f`\n"+
					"Stop: `$%.4f`\n"+
					"Trailing SL Hit.",
				pair, state.LastPrice, state.HighestPrice, state.StopPrice,
			))

			result.State = StateClosedStop
			return e.finish(result, state), nil

		case OutcomeTargetRebased:
			e.log.WithFields(map[string]any{
				"pair":   pair,
				"target": state.TargetPrice,
			}).Info("running take-profit re-based")
		}

		select {
		case <-ctx.Done():
			return e.abort(result, state, ctx.Err())
		case <-time.After(e.pollInterval):
		}
	}
}

// open places the entry order and determines the filled entry price,
// preferring the fill reported by the order acknowledgment and otherwise
// polling the order status once
func (e *Engine) open(ctx context.Context, pair string, quantity float64) (float64, error) {
	order, err := e.exchange.CreateOrderMarket(ctx, core.SideTypeBuy, pair, quantity)
	if err != nil {
		return 0, fmt.Errorf("entry order for %s: %w", pair, err)
	}

	e.recordOrder(&order)
	e.notifier.OnOrder(order)

	if order.Price > 0 {
		return order.Price, nil
	}

	filled, err := e.exchange.Order(ctx, pair, order.ExchangeID)
	if err != nil {
		return 0, fmt.Errorf("entry fill price for %s: %w", pair, err)
	}

	if filled.Price <= 0 {
		return 0, fmt.Errorf("no fill price reported for %s order %d", pair, order.ExchangeID)
	}

	return filled.Price, nil
}

// close exits the position with a reduce-only market sell
func (e *Engine) close(ctx context.Context, pair string, quantity float64) error {
	order, err := e.exchange.CreateExitOrderMarket(ctx, pair, quantity)
	if err != nil {
		return fmt.Errorf("exit order for %s: %w", pair, err)
	}

	e.recordOrder(&order)
	e.notifier.OnOrder(order)
	return nil
}

// abort terminates the loop immediately on an unexpected failure. The
// position may still be open on the exchange: the notification is distinct
// from any normal close so the operator can intervene.
func (e *Engine) abort(result Result, state *TrailState, err error) (Result, error) {
	e.notifier.Notify(fmt.Sprintf(
		"❌ Polling failed for %s: %s\nPosition may still be OPEN, manual check required.",
		result.Pair, err,
	))
	e.log.WithError(err).Errorf("trailing loop aborted for %s", result.Pair)

	result.State = StateAborted
	result = e.finish(result, state)
	// No exchange-confirmed close happened on this path
	result.Closed = false
	return result, err
}

// finish copies the terminal trail levels into the result
func (e *Engine) finish(result Result, state *TrailState) Result {
	result.ExitPrice = state.LastPrice
	result.PeakPrice = state.HighestPrice
	result.StopPrice = state.StopPrice
	result.TargetPrice = state.TargetPrice
	result.Closed = state.Closed
	return result
}

// recordOrder stores the order in the run's order log; the log is
// best-effort and never blocks the trade
func (e *Engine) recordOrder(order *core.Order) {
	if e.storage == nil {
		return
	}
	if err := e.storage.CreateOrder(order); err != nil {
		e.log.WithError(err).Warn("failed to record order")
	}
}
