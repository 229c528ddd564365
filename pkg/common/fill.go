package common

import (
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// Fill records one execution against synthetic liquidity.
type Fill struct {
	OrderId     OrderId     `json:"order_id"`
	Pair        TradingPair `json:"pair"`
	Side        OrderSide   `json:"side"`
	Price       fixed.Point `json:"price"`
	Amount      fixed.Point `json:"amount"`
	SlippageBps fixed.Point `json:"slippage_bps"`
	Partial     bool        `json:"partial,omitempty"`
	Remaining   fixed.Point `json:"remaining,omitempty"`
	TimeStamp   time.Time   `json:"ts"`
}
