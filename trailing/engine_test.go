package trailing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raykavin/mirrortrade/core"
	"github.com/raykavin/mirrortrade/logger"
)

type nopLogger struct{}

func (l nopLogger) WithField(string, any) logger.Logger     { return l }
func (l nopLogger) WithFields(map[string]any) logger.Logger { return l }
func (l nopLogger) WithError(error) logger.Logger           { return l }
func (nopLogger) Debug(...any)                              {}
func (nopLogger) Info(...any)                               {}
func (nopLogger) Warn(...any)                               {}
func (nopLogger) Error(...any)                              {}
func (nopLogger) Fatal(...any)                              {}
func (nopLogger) Debugf(string, ...any)                     {}
func (nopLogger) Infof(string, ...any)                      {}
func (nopLogger) Warnf(string, ...any)                      {}
func (nopLogger) Errorf(string, ...any)                     {}
func (nopLogger) Fatalf(string, ...any)                     {}
func (nopLogger) SetLevel(logger.Level)                     {}
func (nopLogger) GetLevel() logger.Level                    { return logger.Disabled }

var _ logger.Logger = nopLogger{}

// scriptedExchange serves a fixed quote sequence and records every order
// placed against it. An exhausted quote script fails like a transport
// error, which also keeps a buggy loop from spinning forever.
type scriptedExchange struct {
	quotes []float64

	entryOrder core.Order
	entryErr   error
	exitErr    error
	filled     core.Order
	fillErr    error

	placed     []core.Order
	orderCalls int
}

func (s *scriptedExchange) InstrumentCatalog(context.Context) ([]core.AssetInfo, error) {
	return nil, nil
}

func (s *scriptedExchange) AssetInfo(string) (core.AssetInfo, error) {
	return core.AssetInfo{}, nil
}

func (s *scriptedExchange) CandlesByLimit(context.Context, string, string, int) ([]core.Candle, error) {
	return nil, nil
}

func (s *scriptedExchange) LastQuote(context.Context, string) (float64, error) {
	if len(s.quotes) == 0 {
		return 0, errors.New("quote script exhausted")
	}
	price := s.quotes[0]
	s.quotes = s.quotes[1:]
	return price, nil
}

func (s *scriptedExchange) CreateOrderMarket(_ context.Context, side core.SideType, pair string, quantity float64) (core.Order, error) {
	if s.entryErr != nil {
		return core.Order{}, s.entryErr
	}
	order := s.entryOrder
	order.Side = side
	order.Pair = pair
	order.Quantity = quantity
	s.placed = append(s.placed, order)
	return order, nil
}

func (s *scriptedExchange) CreateExitOrderMarket(_ context.Context, pair string, quantity float64) (core.Order, error) {
	if s.exitErr != nil {
		return core.Order{}, s.exitErr
	}
	order := core.Order{
		Pair:       pair,
		Side:       core.SideTypeSell,
		Quantity:   quantity,
		ReduceOnly: true,
	}
	s.placed = append(s.placed, order)
	return order, nil
}

func (s *scriptedExchange) Order(context.Context, string, int64) (core.Order, error) {
	s.orderCalls++
	return s.filled, s.fillErr
}

type recordingNotifier struct {
	messages []string
	orders   []core.Order
	errs     []error
}

func (r *recordingNotifier) Notify(msg string)    { r.messages = append(r.messages, msg) }
func (r *recordingNotifier) OnOrder(o core.Order) { r.orders = append(r.orders, o) }
func (r *recordingNotifier) OnError(err error)    { r.errs = append(r.errs, err) }

func (r *recordingNotifier) contains(s string) bool {
	for _, msg := range r.messages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func newTestEngine(exchange *scriptedExchange, notifier *recordingNotifier) *Engine {
	return NewEngine(exchange, nil, notifier, nopLogger{}, 0)
}

func TestEngine_Run_ClosesOnTarget(t *testing.T) {
	exchange := &scriptedExchange{
		entryOrder: core.Order{ExchangeID: 1, Price: 100},
		quotes:     []float64{101, 102},
	}
	notifier := &recordingNotifier{}

	result, err := newTestEngine(exchange, notifier).Run(context.Background(), "ETHUSDT", 0.5, core.ProfileConservative)
	require.NoError(t, err)

	assert.Equal(t, StateClosedTarget, result.State)
	assert.True(t, result.Closed)
	assert.Equal(t, 100.0, result.EntryPrice)
	assert.Equal(t, 102.0, result.ExitPrice)
	assert.Equal(t, 102.0, result.PeakPrice)
	assert.Equal(t, "1:2", result.RiskReward)

	require.Len(t, exchange.placed, 2)
	assert.Equal(t, core.SideTypeBuy, exchange.placed[0].Side)
	assert.Equal(t, core.SideTypeSell, exchange.placed[1].Side)
	assert.True(t, exchange.placed[1].ReduceOnly)

	assert.True(t, notifier.contains("TRADE OPENED"))
	assert.True(t, notifier.contains("TRADE CLOSED (TP)"))
}

func TestEngine_Run_ClosesOnTrailedStop(t *testing.T) {
	exchange := &scriptedExchange{
		entryOrder: core.Order{ExchangeID: 1, Price: 100},
		quotes:     []float64{105, 103},
	}
	notifier := &recordingNotifier{}

	result, err := newTestEngine(exchange, notifier).Run(context.Background(), "ETHUSDT", 0.5, core.ProfileAggressive)
	require.NoError(t, err)

	assert.Equal(t, StateClosedStop, result.State)
	assert.True(t, result.Closed)
	assert.Equal(t, 103.0, result.ExitPrice)
	assert.Equal(t, 105.0, result.PeakPrice)
	assert.InDelta(t, 103.95, result.StopPrice, 1e-9)

	require.Len(t, exchange.placed, 2)
	assert.True(t, exchange.placed[1].ReduceOnly)
	assert.True(t, notifier.contains("TRADE CLOSED (SL)"))
}

func TestEngine_Run_EntryFillFromOrderPoll(t *testing.T) {
	// The acknowledgment carries no fill price, so the engine looks the
	// order up once before trailing
	exchange := &scriptedExchange{
		entryOrder: core.Order{ExchangeID: 7, Price: 0},
		filled:     core.Order{ExchangeID: 7, Price: 100},
		quotes:     []float64{98},
	}
	notifier := &recordingNotifier{}

	result, err := newTestEngine(exchange, notifier).Run(context.Background(), "ETHUSDT", 0.5, core.ProfileConservative)
	require.NoError(t, err)

	assert.Equal(t, 1, exchange.orderCalls)
	assert.Equal(t, 100.0, result.EntryPrice)
	assert.Equal(t, StateClosedStop, result.State)
}

func TestEngine_Run_EntryFailureAborts(t *testing.T) {
	exchange := &scriptedExchange{entryErr: errors.New("insufficient margin")}
	notifier := &recordingNotifier{}

	result, err := newTestEngine(exchange, notifier).Run(context.Background(), "ETHUSDT", 0.5, core.ProfileConservative)
	require.Error(t, err)

	assert.Equal(t, StateAborted, result.State)
	assert.False(t, result.Closed)
	assert.Zero(t, result.EntryPrice)
	assert.Empty(t, exchange.placed)
	assert.True(t, notifier.contains("Trade failed"))
}

func TestEngine_Run_PollFailureAborts(t *testing.T) {
	// No quotes scripted: the first poll fails and the loop must abort
	// without closing, flagging the position for manual intervention
	exchange := &scriptedExchange{
		entryOrder: core.Order{ExchangeID: 1, Price: 100},
	}
	notifier := &recordingNotifier{}

	result, err := newTestEngine(exchange, notifier).Run(context.Background(), "ETHUSDT", 0.5, core.ProfileConservative)
	require.Error(t, err)

	assert.Equal(t, StateAborted, result.State)
	assert.False(t, result.Closed)
	require.Len(t, exchange.placed, 1)
	assert.True(t, notifier.contains("Polling failed"))
	assert.True(t, notifier.contains("manual check required"))
}

func TestEngine_Run_ExitFailureAborts(t *testing.T) {
	exchange := &scriptedExchange{
		entryOrder: core.Order{ExchangeID: 1, Price: 100},
		exitErr:    errors.New("rejected"),
		quotes:     []float64{98},
	}
	notifier := &recordingNotifier{}

	result, err := newTestEngine(exchange, notifier).Run(context.Background(), "ETHUSDT", 0.5, core.ProfileConservative)
	require.Error(t, err)

	assert.Equal(t, StateAborted, result.State)
	assert.False(t, result.Closed)
	assert.True(t, notifier.contains("Polling failed"))
}
