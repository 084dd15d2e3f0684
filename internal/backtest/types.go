package backtest

import (
	"time"

	"github.com/evoquant/stock-backtester/internal/regime"
	"github.com/evoquant/stock-backtester/pkg/types"
)

// AdaptiveParams tune signal gating and position sizing without touching
// model weights. Each simulator owns a fresh copy per run so one backtest
// can never contaminate the next.
type AdaptiveParams struct {
	PositionSizeFactor float64 `json:"position_size_factor"`
	StopLossFactor     float64 `json:"stop_loss_factor"`
	TakeProfitFactor   float64 `json:"take_profit_factor"`
	EntryThreshold     float64 `json:"entry_threshold"`
	ExitThreshold      float64 `json:"exit_threshold"`
	TrendFactor        float64 `json:"trend_factor"`
}

// NewAdaptiveParams returns the default parameter set.
func NewAdaptiveParams() *AdaptiveParams {
	return &AdaptiveParams{
		PositionSizeFactor: 1.0,
		StopLossFactor:     1.0,
		TakeProfitFactor:   1.0,
		EntryThreshold:     0.5,
		ExitThreshold:      0.5,
		TrendFactor:        1.0,
	}
}

// SignalSnapshot preserves the raw signal diagnostics at entry time.
type SignalSnapshot struct {
	RuleStrength float64       `json:"rule_strength"`
	FinalSignal  float64       `json:"final_signal"`
	Regime       regime.Regime `json:"regime"`
}

// TradeRecord is one position's lifecycle. Exit fields stay nil until the
// position closes; a record still open at report time keeps them nil, which
// is an explicit state, not an error.
type TradeRecord struct {
	Symbol       string    `json:"symbol"`
	EntryTime    time.Time `json:"entry_time"`
	EntryPrice   float64   `json:"entry_price"`
	PositionSize float64   `json:"position_size"` // shares

	ExitTime   *time.Time `json:"exit_time,omitempty"`
	ExitPrice  *float64   `json:"exit_price,omitempty"`
	ProfitLoss *float64   `json:"profit_loss,omitempty"`

	StopLoss      float64 `json:"stop_loss"`
	TakeProfit    float64 `json:"take_profit,omitempty"`
	RiskReward    float64 `json:"risk_reward_ratio"`
	PositionRatio float64 `json:"position_ratio"`

	Features map[string]float64 `json:"features,omitempty"`
	Signal   SignalSnapshot     `json:"signal"`
}

// Closed reports whether the position has been exited.
func (t *TradeRecord) Closed() bool { return t.ExitTime != nil }

// close fills in the exit fields. Called exactly once per record.
func (t *TradeRecord) close(exitTime time.Time, exitPrice float64) float64 {
	profit := (exitPrice - t.EntryPrice) * t.PositionSize
	t.ExitTime = &exitTime
	t.ExitPrice = &exitPrice
	t.ProfitLoss = &profit
	return profit
}

// BacktestResult is the final report of one simulation run.
type BacktestResult struct {
	Symbol         string              `json:"symbol"`
	Strategy       string              `json:"strategy"`
	InitialCapital float64             `json:"initial_capital"`
	FinalCapital   float64             `json:"final_capital"`
	StartTime      time.Time           `json:"start_time"`
	EndTime        time.Time           `json:"end_time"`
	Trades         []*TradeRecord      `json:"trades"`
	EquityCurve    []types.EquityPoint `json:"equity_curve"`

	WinRate       float64 `json:"win_rate"`
	AvgProfit     float64 `json:"avg_profit"`
	AvgLoss       float64 `json:"avg_loss"`
	ProfitFactor  float64 `json:"profit_factor"`
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`

	StrategyParams *AdaptiveParams `json:"strategy_params"`
}
