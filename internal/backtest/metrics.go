package backtest

import "math"

// Aggregate computes the performance metrics of a result in place, over
// closed trades only. Still-open positions contribute to FinalCapital but
// not to the trade counts.
//
// ProfitFactor is |sum of winner P/L / sum of loser P/L|. With winners and
// no losers it is +Inf; with no closed trades at all it is 0. The JSON
// reporter serializes the infinite case as the string "inf" so downstream
// aggregations never ingest it silently.
func Aggregate(result *BacktestResult) {
	var winners, losers int
	var winSum, lossSum float64

	for _, t := range result.Trades {
		if !t.Closed() {
			continue
		}
		pl := *t.ProfitLoss
		if pl > 0 {
			winners++
			winSum += pl
		} else {
			losers++
			lossSum += pl
		}
	}

	total := winners + losers
	result.TotalTrades = total
	result.WinningTrades = winners
	result.LosingTrades = losers

	if total == 0 {
		result.WinRate = 0
		result.AvgProfit = 0
		result.AvgLoss = 0
		result.ProfitFactor = 0
		return
	}

	result.WinRate = float64(winners) / float64(total) * 100
	if winners > 0 {
		result.AvgProfit = winSum / float64(winners)
	}
	if losers > 0 {
		result.AvgLoss = lossSum / float64(losers)
	}

	switch {
	case lossSum != 0:
		result.ProfitFactor = math.Abs(winSum / lossSum)
	case winners > 0:
		result.ProfitFactor = math.Inf(1)
	default:
		result.ProfitFactor = 0
	}
}
