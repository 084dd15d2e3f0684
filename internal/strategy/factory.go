package strategy

import "strings"

// ForID returns the strategy for an identifier. Unrecognized identifiers
// fall back to the default MACD crossover.
func ForID(id string) Strategy {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "kdj", "kdj_cross":
		return NewKDJCross()
	case "ma", "ma_cross", "dual_ma":
		return NewMACross()
	case "macd", "macd_cross", "":
		return NewMACDCross()
	default:
		return NewMACDCross()
	}
}
