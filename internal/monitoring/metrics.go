package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Batch run metrics
	backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_runs_total",
			Help: "Total number of backtest runs completed",
		},
		[]string{"strategy"},
	)

	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_trades_total",
			Help: "Total number of simulated trades",
		},
		[]string{"symbol", "side"},
	)

	finalEquity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backtester_final_equity",
			Help: "Final portfolio value of the last run per symbol",
		},
		[]string{"symbol"},
	)

	winRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backtester_win_rate",
			Help: "Win rate percentage of the last run per symbol",
		},
		[]string{"symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtester_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(backtestsTotal)
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(finalEquity)
	prometheus.MustRegister(winRate)
	prometheus.MustRegister(errorsTotal)
}

// RecordRun records one completed backtest run.
func RecordRun(strategy, symbol string, trades, winners, losers int, equity, winPct float64) {
	backtestsTotal.WithLabelValues(strategy).Inc()
	tradesTotal.WithLabelValues(symbol, "win").Add(float64(winners))
	tradesTotal.WithLabelValues(symbol, "loss").Add(float64(losers))
	finalEquity.WithLabelValues(symbol).Set(equity)
	winRate.WithLabelValues(symbol).Set(winPct)
}

// RecordError records an error by type.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}

// StartMetricsServer starts the Prometheus metrics endpoint. Blocking; run
// in a goroutine for batch backtests.
func StartMetricsServer(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, nil)
}
