package types

import "time"

// Bar is one daily OHLCV row of a price series.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// EquityPoint is one sample of the portfolio value over time.
type EquityPoint struct {
	Time  time.Time
	Value float64
}
