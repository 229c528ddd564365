package sandbox

import (
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// slippageBps prices the impact of taking amount out of the opposing depth.
// The impact fraction is k*f(amount/depth) with f set by the model, capped at
// MaxSlippageBps. An empty opposing side charges the cap outright.
func (s *Simulator) slippageBps(amount fixed.Point, side common.OrderSide, book *common.OrderBook) fixed.Point {
	var depth fixed.Point
	if side == common.OrderSideBuy {
		depth = book.AskDepth(s.slippage.DepthLevels)
	} else {
		depth = book.BidDepth(s.slippage.DepthLevels)
	}
	if depth.IsZero() {
		return s.slippage.MaxSlippageBps
	}

	ratio := amount.Div(depth)
	var impact fixed.Point
	switch s.slippage.Model {
	case SlippageLogarithmic:
		impact = fixed.One.Add(ratio).Log()
	case SlippageSqrt:
		impact = ratio.Sqrt()
	default:
		impact = ratio
	}

	bps := s.slippage.ImpactFactor.Mul(impact).Mul(fixed.TenThousand)
	return fixed.Min(bps, s.slippage.MaxSlippageBps)
}

// applySlippage moves the price against the taker: up for buys, down for
// sells.
func applySlippage(price, bps fixed.Point, side common.OrderSide) fixed.Point {
	if bps.IsZero() {
		return price
	}
	fraction := bps.Div(fixed.TenThousand)
	if side == common.OrderSideBuy {
		return price.Mul(fixed.One.Add(fraction))
	}
	return price.Mul(fixed.One.Sub(fraction))
}
