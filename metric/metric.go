// Package metric exposes Prometheus counters for run and trade outcomes.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirrortrade_runs_total",
		Help: "Number of trading runs started.",
	})

	tradesOpenedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirrortrade_trades_opened_total",
		Help: "Number of positions opened.",
	})

	tradesClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirrortrade_trades_closed_total",
		Help: "Number of positions closed, by reason.",
	}, []string{"reason"})

	tradesAbortedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mirrortrade_trades_aborted_total",
		Help: "Number of trades that ended in a failed or aborted state.",
	})

	symbolsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mirrortrade_symbols_skipped_total",
		Help: "Number of candidate symbols skipped, by reason.",
	}, []string{"reason"})

	lastRunDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mirrortrade_last_run_duration_seconds",
		Help: "Wall-clock duration of the most recent run.",
	})
)

func init() {
	prometheus.MustRegister(
		runsTotal,
		tradesOpenedTotal,
		tradesClosedTotal,
		tradesAbortedTotal,
		symbolsSkippedTotal,
		lastRunDuration,
	)
}

// RunStarted counts a trading run kickoff.
func RunStarted() { runsTotal.Inc() }

// TradeOpened counts a successfully opened position.
func TradeOpened() { tradesOpenedTotal.Inc() }

// TradeClosed counts a closed position with its close reason,
// e.g. "target" or "stop".
func TradeClosed(reason string) { tradesClosedTotal.WithLabelValues(reason).Inc() }

// TradeAborted counts a trade that failed at entry or whose lifecycle
// loop aborted, as opposed to a pre-entry skip.
func TradeAborted() { tradesAbortedTotal.Inc() }

// SymbolSkipped counts a candidate rejected before entry.
func SymbolSkipped(reason string) { symbolsSkippedTotal.WithLabelValues(reason).Inc() }

// RunDuration records how long the last run took.
func RunDuration(seconds float64) { lastRunDuration.Set(seconds) }
