package sandbox

import "github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"

// Statistics are cumulative execution counters for one run.
type Statistics struct {
	OrdersPlaced    uint64
	OrdersFilled    uint64
	OrdersCancelled uint64
	OrdersRejected  uint64
	PartialFills    uint64

	FillCount        uint64
	TotalVolume      fixed.Point // quote volume across fills
	TotalSlippageBps fixed.Point
}

// AverageSlippageBps is the mean slippage across fills, fixed.Zero when
// nothing filled.
func (s Statistics) AverageSlippageBps() fixed.Point {
	if s.FillCount == 0 {
		return fixed.Zero
	}
	return s.TotalSlippageBps.DivInt64(int64(s.FillCount))
}
