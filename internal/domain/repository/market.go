package repository

// Market identifies the exchange a symbol trades on.
type Market string

const (
	MarketSH Market = "sh"
	MarketSZ Market = "sz"
	MarketHK Market = "hk"
	MarketUS Market = "us"
)

// IsValidMarket returns true if m is a supported market.
func IsValidMarket(m Market) bool {
	switch m {
	case MarketSH, MarketSZ, MarketHK, MarketUS:
		return true
	default:
		return false
	}
}

// DefaultMarket returns the default market.
func DefaultMarket() Market { return MarketSH }

// NormalizeMarket converts a raw string to a valid market (or default).
func NormalizeMarket(s string) Market {
	if s == "" {
		return DefaultMarket()
	}
	m := Market(s)
	if IsValidMarket(m) {
		return m
	}
	return DefaultMarket()
}
