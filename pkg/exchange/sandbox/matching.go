package sandbox

import (
	"errors"
	"sort"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/balance"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/bus"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/common"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// matchOrders runs one matching pass over the latency-eligible orders.
// Market orders go first in placement order, then buy limits best price
// first, then sell limits best price first. Orders at the same price level
// keep placement order.
func (s *Simulator) matchOrders() error {
	var markets, buys, sells []*trackedOrder
	for _, t := range s.active {
		if s.tick < t.readyAt {
			continue
		}
		switch {
		case t.order.Type == common.OrderTypeMarket:
			markets = append(markets, t)
		case t.order.Side == common.OrderSideBuy:
			buys = append(buys, t)
		default:
			sells = append(sells, t)
		}
	}

	bySeq := func(orders []*trackedOrder) func(i, j int) bool {
		return func(i, j int) bool { return orders[i].seq < orders[j].seq }
	}
	sort.Slice(markets, bySeq(markets))
	sort.Slice(buys, func(i, j int) bool {
		if !buys[i].order.Price.Eq(buys[j].order.Price) {
			return buys[i].order.Price.Gt(buys[j].order.Price)
		}
		return buys[i].seq < buys[j].seq
	})
	sort.Slice(sells, func(i, j int) bool {
		if !sells[i].order.Price.Eq(sells[j].order.Price) {
			return sells[i].order.Price.Lt(sells[j].order.Price)
		}
		return sells[i].seq < sells[j].seq
	})

	for _, group := range [][]*trackedOrder{markets, buys, sells} {
		for _, t := range group {
			if err := s.tryFill(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// crossed reports whether a limit order is marketable against the book.
func crossed(order *common.Order, book *common.OrderBook) bool {
	if order.Side == common.OrderSideBuy {
		ask := book.BestAsk()
		return !ask.IsZero() && ask.Lte(order.Price)
	}
	bid := book.BestBid()
	return !bid.IsZero() && bid.Gte(order.Price)
}

func (s *Simulator) tryFill(t *trackedOrder) error {
	order := t.order
	book := s.books[order.Pair.Symbol]

	// Limit fills execute at the order's own limit price, the price the
	// reservation was taken at. Market fills execute at the touch.
	var basePrice fixed.Point
	switch order.Type {
	case common.OrderTypeLimit:
		if !crossed(order, book) {
			return nil
		}
		basePrice = order.Price
	case common.OrderTypeMarket:
		if order.Side == common.OrderSideBuy {
			basePrice = book.BestAsk()
		} else {
			basePrice = book.BestBid()
		}
		if basePrice.IsZero() {
			// No liquidity this tick; the order rests until some appears.
			return nil
		}
	}

	fillAmount, partial := s.fillableAmount(order, book)
	if fillAmount.IsZero() {
		return nil
	}

	slippageBps := fixed.Zero
	if order.Type == common.OrderTypeMarket || s.slippage.ApplyToLimit {
		slippageBps = s.slippageBps(fillAmount, order.Side, book)
	}
	fillPrice := applySlippage(basePrice, slippageBps, order.Side)

	lockedPortion := fillAmount
	if order.Side == common.OrderSideBuy {
		lockedPortion = fillAmount.Mul(order.LockPrice)
	}

	err := s.balances.ApplyFill(order.Pair.Base, order.Pair.Quote, order.Side, fillAmount, fillPrice, lockedPortion)
	if errors.Is(err, balance.ErrInsufficientBalance) {
		// Slippage pushed the cost past the reservation. The fill is
		// abandoned and the order rejected with its lock released.
		s.rejectOrder(order, "fill cost exceeds reserved balance")
		return nil
	}
	if err != nil {
		return err
	}

	if s.slippage.EnablePartialFills {
		s.consumeDepth(book, order, fillAmount)
	}

	order.FilledAmount = order.FilledAmount.Add(fillAmount)
	order.UpdatedAt = s.now
	if order.RemainingAmount().IsZero() {
		order.Status = common.OrderStatusFilled
		delete(s.active, order.Id)
		s.stats.OrdersFilled++
	} else {
		order.Status = common.OrderStatusPartiallyFilled
		s.stats.PartialFills++
	}

	s.stats.FillCount++
	s.stats.TotalVolume = s.stats.TotalVolume.Add(fillAmount.Mul(fillPrice))
	s.stats.TotalSlippageBps = s.stats.TotalSlippageBps.Add(slippageBps)

	fill := common.Fill{
		OrderId:     order.Id,
		Pair:        order.Pair,
		Side:        order.Side,
		Price:       fillPrice,
		Amount:      fillAmount,
		SlippageBps: slippageBps,
		Partial:     partial,
		Remaining:   order.RemainingAmount(),
		TimeStamp:   s.now,
	}
	s.fills = append(s.fills, fill)

	s.post(bus.OrderFilledEvent, common.OrderFilled{
		Order:       *order,
		Fill:        fill,
		Source:      simulatorComponentName,
		ExecutionID: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.now,
	})
	s.postBalance(order.Pair.Base)
	s.postBalance(order.Pair.Quote)
	return nil
}

// fillableAmount caps the fill by the eligible opposing depth when partial
// fills are on; otherwise the synthetic book is treated as deep enough for
// the whole remainder.
func (s *Simulator) fillableAmount(order *common.Order, book *common.OrderBook) (fixed.Point, bool) {
	remaining := order.RemainingAmount()
	if !s.slippage.EnablePartialFills {
		return remaining, false
	}

	available := fixed.Zero
	for _, level := range opposingLevels(order.Side, book) {
		if order.Type == common.OrderTypeLimit && violatesLimit(order, level.Price) {
			break
		}
		available = available.Add(level.Amount)
		if available.Gte(remaining) {
			return remaining, false
		}
	}
	return available, available.Lt(remaining)
}

func opposingLevels(side common.OrderSide, book *common.OrderBook) []common.BookLevel {
	if side == common.OrderSideBuy {
		return book.Asks
	}
	return book.Bids
}

func violatesLimit(order *common.Order, levelPrice fixed.Point) bool {
	if order.Side == common.OrderSideBuy {
		return levelPrice.Gt(order.Price)
	}
	return levelPrice.Lt(order.Price)
}

// consumeDepth removes filled amount from the opposing side so orders later
// in the pass see the liquidity that is actually left. Depth recovers when
// the book next regenerates.
func (s *Simulator) consumeDepth(book *common.OrderBook, order *common.Order, amount fixed.Point) {
	levels := opposingLevels(order.Side, book)
	kept := levels[:0]
	for i, level := range levels {
		if !amount.IsPos() {
			kept = append(kept, levels[i:]...)
			break
		}
		taken := fixed.Min(level.Amount, amount)
		amount = amount.Sub(taken)
		level.Amount = level.Amount.Sub(taken)
		if level.Amount.IsPos() {
			kept = append(kept, level)
		}
	}
	if order.Side == common.OrderSideBuy {
		book.Asks = kept
	} else {
		book.Bids = kept
	}
}

func (s *Simulator) rejectOrder(order *common.Order, reason string) {
	s.balances.Unlock(order.LockAsset(), order.RemainingLock())
	order.Status = common.OrderStatusCancelled
	order.UpdatedAt = s.now
	delete(s.active, order.Id)
	s.stats.OrdersRejected++

	s.post(bus.OrderRejectedEvent, common.OrderRejected{
		Order:       *order,
		Reason:      reason,
		Source:      simulatorComponentName,
		ExecutionID: utility.GetExecutionID(),
		TraceID:     utility.CreateTraceID(),
		TimeStamp:   s.now,
	})
	s.postBalance(order.LockAsset())
}
