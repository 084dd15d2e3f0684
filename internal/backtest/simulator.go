package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/evoquant/stock-backtester/internal/features"
	"github.com/evoquant/stock-backtester/internal/logger"
	"github.com/evoquant/stock-backtester/internal/models"
	"github.com/evoquant/stock-backtester/internal/regime"
	"github.com/evoquant/stock-backtester/internal/strategy"
	"github.com/evoquant/stock-backtester/pkg/data"
	"github.com/evoquant/stock-backtester/pkg/types"
)

// ErrCannotBacktest means the input data is unusable for simulation,
// detected before the loop starts.
var ErrCannotBacktest = errors.New("cannot backtest symbol")

// DefaultWarmupBars is the leading window skipped before any entry is
// considered, needed for indicator stability.
const DefaultWarmupBars = 60

// DefaultStopLossPct is the fixed stop distance below the entry price.
const DefaultStopLossPct = 0.05

// Config holds the per-run simulator settings.
type Config struct {
	InitialCapital   float64
	MaxPositionRatio float64
	StopLossPct      float64
	WarmupBars       int
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig(initialCapital float64) Config {
	return Config{
		InitialCapital:   initialCapital,
		MaxPositionRatio: DefaultMaxPositionRatio,
		StopLossPct:      DefaultStopLossPct,
		WarmupBars:       DefaultWarmupBars,
	}
}

// Simulator replays a price table bar by bar, holding at most one open
// position per symbol. A fresh instance (or Reset) is required per run.
type Simulator struct {
	cfg       Config
	strat     strategy.Strategy
	extractor *features.Extractor
	detector  *regime.Detector
	evaluator *SignalEvaluator
	sizer     *PositionSizer
	params    *AdaptiveParams
	log       *logger.Logger

	capital float64
	trades  []*TradeRecord
	equity  []types.EquityPoint
	open    *TradeRecord
}

// NewSimulator creates a simulator. The model manager may be nil or empty,
// in which case every decision falls back to pure rule logic. The
// AdaptiveParams are constructed fresh here so no state leaks between runs.
func NewSimulator(cfg Config, strat strategy.Strategy, mm *models.Manager, log *logger.Logger) *Simulator {
	if cfg.WarmupBars <= 0 {
		cfg.WarmupBars = DefaultWarmupBars
	}
	if cfg.StopLossPct <= 0 {
		cfg.StopLossPct = DefaultStopLossPct
	}
	if cfg.MaxPositionRatio <= 0 {
		cfg.MaxPositionRatio = DefaultMaxPositionRatio
	}
	if strat == nil {
		strat = strategy.NewMACDCross()
	}
	if log == nil {
		log = logger.Discard()
	}

	params := NewAdaptiveParams()
	return &Simulator{
		cfg:       cfg,
		strat:     strat,
		extractor: features.NewExtractor(),
		detector:  regime.NewDetector(),
		evaluator: NewSignalEvaluator(mm, params),
		sizer:     NewPositionSizer(mm, params, cfg.MaxPositionRatio),
		params:    params,
		log:       log,
		capital:   cfg.InitialCapital,
	}
}

// Params exposes the run's adaptive parameters for tuning before Run.
func (s *Simulator) Params() *AdaptiveParams { return s.params }

// Reset clears all run state so the instance can replay another table.
func (s *Simulator) Reset() {
	s.capital = s.cfg.InitialCapital
	s.trades = nil
	s.equity = nil
	s.open = nil
}

// Run replays the whole table and aggregates the result. Tables shorter
// than the warm-up window produce an empty result, not an error: a backtest
// always reports, possibly degraded.
func (s *Simulator) Run(table *data.PriceTable) (*BacktestResult, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("%w: no price data", ErrCannotBacktest)
	}

	s.Reset()
	if err := s.strat.Prepare(table); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCannotBacktest, err)
	}

	for i := s.cfg.WarmupBars; i < table.Len(); i++ {
		s.Step(table, i)
	}

	return s.finalize(table), nil
}

// Step advances the simulation by one bar. It is exported so a caller can
// drive the loop externally and stop between bars; Run simply calls it for
// every bar past the warm-up window.
func (s *Simulator) Step(table *data.PriceTable, i int) {
	if i < 1 || i >= table.Len() {
		return
	}

	bar := table.Bar(i)
	price := bar.Close
	trigger := s.strat.Signal(table, i)

	if s.open != nil {
		// Stop-loss breach closes at the stop price, not the bar close.
		if bar.Low <= s.open.StopLoss {
			s.closePosition(bar.Date, s.open.StopLoss, "stop-loss")
		} else if trigger.Exit {
			v := s.extractor.Extract(table, i)
			if s.evaluator.EvaluateExit(v, trigger.Strength) > 0 {
				s.closePosition(bar.Date, price, "rule exit")
			}
		}
	} else if trigger.Entry {
		s.tryEnter(table, i, price, trigger)
	}

	// Mark-to-market equity sample for this bar.
	value := s.capital
	if s.open != nil {
		value += (price - s.open.EntryPrice) * s.open.PositionSize
	}
	s.equity = append(s.equity, types.EquityPoint{Time: bar.Date, Value: value})
}

func (s *Simulator) tryEnter(table *data.PriceTable, i int, price float64, trigger strategy.Trigger) {
	v := s.extractor.Extract(table, i)
	if v.Len() == 0 {
		return
	}

	final := s.evaluator.EvaluateEntry(v, trigger.Strength)
	if final <= 0 {
		return
	}

	stopLoss := price * (1 - s.cfg.StopLossPct*s.params.StopLossFactor)
	ratio := s.sizer.Size(v, final, price, stopLoss, s.capital)
	if ratio <= 0 || price <= 0 {
		return
	}

	shares := ratio * s.capital / price
	takeProfit := price * (1 + 2*s.cfg.StopLossPct*s.params.TakeProfitFactor)

	riskReward := 0.0
	if price-stopLoss > 0 {
		riskReward = (takeProfit - price) / (price - stopLoss)
	}

	bar := table.Bar(i)
	trade := &TradeRecord{
		Symbol:        table.Symbol(),
		EntryTime:     bar.Date,
		EntryPrice:    price,
		PositionSize:  shares,
		StopLoss:      stopLoss,
		TakeProfit:    takeProfit,
		RiskReward:    riskReward,
		PositionRatio: ratio,
		Features:      v.Map(),
		Signal: SignalSnapshot{
			RuleStrength: trigger.Strength,
			FinalSignal:  final,
			Regime:       s.detector.Detect(table.Bars()[:i+1]),
		},
	}

	s.trades = append(s.trades, trade)
	s.open = trade
	s.log.Trade("BUY %s: price=%.2f ratio=%.2f%% shares=%.2f stop=%.2f regime=%s",
		trade.Symbol, price, ratio*100, shares, stopLoss, trade.Signal.Regime)
}

func (s *Simulator) closePosition(exitTime time.Time, exitPrice float64, reason string) {
	profit := s.open.close(exitTime, exitPrice)
	s.capital += profit

	pct := 0.0
	if s.open.EntryPrice > 0 {
		pct = (exitPrice/s.open.EntryPrice - 1) * 100
	}
	s.log.Trade("SELL %s (%s): price=%.2f profit=%.2f (%.2f%%)",
		s.open.Symbol, reason, exitPrice, profit, pct)
	s.open = nil
}

// finalize marks any still-open position to the last close and aggregates
// the report. The open record keeps its nil exit fields.
func (s *Simulator) finalize(table *data.PriceTable) *BacktestResult {
	last := table.Bar(table.Len() - 1)

	finalCapital := s.capital
	if s.open != nil {
		finalCapital += (last.Close - s.open.EntryPrice) * s.open.PositionSize
	}

	result := &BacktestResult{
		Symbol:         table.Symbol(),
		Strategy:       s.strat.GetName(),
		InitialCapital: s.cfg.InitialCapital,
		FinalCapital:   finalCapital,
		StartTime:      table.Bar(0).Date,
		EndTime:        last.Date,
		Trades:         s.trades,
		EquityCurve:    s.equity,
		StrategyParams: s.params,
	}
	Aggregate(result)
	return result
}
