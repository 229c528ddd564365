package common

import (
	"fmt"
	"strings"
)

// TradingPair is immutable once configured on the simulator.
type TradingPair struct {
	Symbol string `json:"symbol"`
	Base   string `json:"base"`
	Quote  string `json:"quote"`
}

func NewPair(base, quote string) TradingPair {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)
	return TradingPair{
		Symbol: base + "-" + quote,
		Base:   base,
		Quote:  quote,
	}
}

// ParsePair splits a "BASE-QUOTE" symbol.
func ParsePair(symbol string) (TradingPair, error) {
	base, quote, ok := strings.Cut(symbol, "-")
	if !ok || base == "" || quote == "" {
		return TradingPair{}, fmt.Errorf("invalid trading pair symbol %q", symbol)
	}
	return NewPair(base, quote), nil
}

func (p TradingPair) String() string {
	return p.Symbol
}
