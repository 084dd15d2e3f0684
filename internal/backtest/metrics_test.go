package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func closedTrade(pl float64) *TradeRecord {
	exitTime := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	exitPrice := 100.0
	return &TradeRecord{
		EntryTime:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice: 100,
		ExitTime:   &exitTime,
		ExitPrice:  &exitPrice,
		ProfitLoss: &pl,
	}
}

func TestAggregate_NoTrades(t *testing.T) {
	result := &BacktestResult{}
	Aggregate(result)

	assert.Equal(t, 0, result.TotalTrades)
	assert.Equal(t, 0.0, result.WinRate)
	assert.Equal(t, 0.0, result.ProfitFactor)
}

func TestAggregate_OpenTradesExcluded(t *testing.T) {
	result := &BacktestResult{
		Trades: []*TradeRecord{
			closedTrade(100),
			{EntryPrice: 100}, // still open
		},
	}
	Aggregate(result)

	assert.Equal(t, 1, result.TotalTrades)
	assert.Equal(t, 1, result.WinningTrades)
}

func TestAggregate_CountsBalance(t *testing.T) {
	result := &BacktestResult{
		Trades: []*TradeRecord{
			closedTrade(100), closedTrade(50), closedTrade(-30), closedTrade(0),
		},
	}
	Aggregate(result)

	// Zero P/L counts as a loss, never silently dropped.
	assert.Equal(t, result.TotalTrades, result.WinningTrades+result.LosingTrades)
	assert.Equal(t, 2, result.WinningTrades)
	assert.Equal(t, 2, result.LosingTrades)
	assert.Equal(t, 50.0, result.WinRate)
}

func TestAggregate_AverageWinLoss(t *testing.T) {
	result := &BacktestResult{
		Trades: []*TradeRecord{
			closedTrade(100), closedTrade(200), closedTrade(-60),
		},
	}
	Aggregate(result)

	assert.Equal(t, 150.0, result.AvgProfit)
	assert.Equal(t, -60.0, result.AvgLoss)
	assert.InDelta(t, 5.0, result.ProfitFactor, 1e-9)
}

func TestAggregate_ProfitFactor_NoLosers(t *testing.T) {
	result := &BacktestResult{
		Trades: []*TradeRecord{closedTrade(100), closedTrade(25)},
	}
	Aggregate(result)

	assert.True(t, math.IsInf(result.ProfitFactor, 1))
}

func TestAggregate_ProfitFactor_OnlyLosers(t *testing.T) {
	result := &BacktestResult{
		Trades: []*TradeRecord{closedTrade(-10), closedTrade(-20)},
	}
	Aggregate(result)

	assert.Equal(t, 0.0, result.ProfitFactor)
	assert.Equal(t, 0.0, result.WinRate)
}
