package exchange

import "errors"

// Recoverable rejections. PlaceOrder returns these as values for strategy
// code to check; they never abort a run.
var (
	ErrInvalidOrder       = errors.New("invalid order")
	ErrInvalidTradingPair = errors.New("invalid trading pair")
	ErrNoLiquidity        = errors.New("no liquidity")
)
