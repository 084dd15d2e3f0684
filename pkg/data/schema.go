package data

import "strings"

// Canonical column names used by everything downstream of table construction.
// Source files may carry either the Chinese or the English header scheme;
// resolution happens exactly once, when a PriceTable is built.
const (
	ColDate   = "date"
	ColOpen   = "open"
	ColHigh   = "high"
	ColLow    = "low"
	ColClose  = "close"
	ColVolume = "volume"

	ColMA5  = "ma5"
	ColMA10 = "ma10"
	ColMA20 = "ma20"
	ColMA60 = "ma60"

	ColMACD       = "macd"
	ColMACDSignal = "macd_signal"
	ColMACDHist   = "macd_hist"

	ColK = "k"
	ColD = "d"
	ColJ = "j"

	ColRSI = "rsi"

	ColBollUpper  = "boll_upper"
	ColBollMiddle = "boll_middle"
	ColBollLower  = "boll_lower"
)

// requiredColumns must all resolve or the symbol cannot be backtested.
var requiredColumns = []string{ColOpen, ColHigh, ColLow, ColClose, ColVolume}

// columnAliases maps every accepted header spelling to its canonical name.
var columnAliases = map[string]string{
	// Chinese scheme
	"日期":  ColDate,
	"开盘":  ColOpen,
	"最高":  ColHigh,
	"最低":  ColLow,
	"收盘":  ColClose,
	"成交量": ColVolume,

	// English scheme (case-insensitive, see ResolveColumn)
	"date":      ColDate,
	"timestamp": ColDate,
	"open":      ColOpen,
	"high":      ColHigh,
	"low":       ColLow,
	"close":     ColClose,
	"volume":    ColVolume,

	// Derived indicator columns, both spellings
	"ma5":  ColMA5,
	"ma10": ColMA10,
	"ma20": ColMA20,
	"ma60": ColMA60,

	"macd":        ColMACD,
	"macd_signal": ColMACDSignal,
	"macd_hist":   ColMACDHist,

	"k": ColK,
	"d": ColD,
	"j": ColJ,

	"rsi": ColRSI,

	"boll_upper":  ColBollUpper,
	"boll_middle": ColBollMiddle,
	"boll_lower":  ColBollLower,
}

// ResolveColumn maps a raw header name from either naming scheme to its
// canonical column name. The second return is false for headers the engine
// does not understand; callers keep or drop those as they see fit.
func ResolveColumn(header string) (string, bool) {
	h := strings.TrimSpace(header)
	if canonical, ok := columnAliases[h]; ok {
		return canonical, true
	}
	if canonical, ok := columnAliases[strings.ToLower(h)]; ok {
		return canonical, true
	}
	return "", false
}
