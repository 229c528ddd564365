package common

import (
	"time"

	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility"
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// Event payloads are ephemeral: created by the producing component, dispatched
// within one tick and discarded. Each carries the common header fields.

type OrderPlaced struct {
	Order Order `json:"order"`

	Source      string              `json:"src,omitempty"`
	ExecutionID utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderFilled struct {
	Order Order `json:"order"`
	Fill  Fill  `json:"fill"`

	Source      string              `json:"src,omitempty"`
	ExecutionID utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderCancelled struct {
	Order          Order       `json:"order"`
	UnlockedAmount fixed.Point `json:"unlocked_amount"`

	Source      string              `json:"src,omitempty"`
	ExecutionID utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type OrderRejected struct {
	Order  Order  `json:"order"`
	Reason string `json:"reason,omitempty"`

	Source      string              `json:"src,omitempty"`
	ExecutionID utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type BalanceUpdated struct {
	Asset   string  `json:"asset"`
	Balance Balance `json:"balance"`

	Source      string              `json:"src,omitempty"`
	ExecutionID utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}

type PriceUpdated struct {
	Pair TradingPair `json:"pair"`
	Bid  fixed.Point `json:"bid"`
	Ask  fixed.Point `json:"ask"`

	Source      string              `json:"src,omitempty"`
	ExecutionID utility.ExecutionID `json:"eid,omitempty"`
	TraceID     utility.TraceID     `json:"tid,omitempty"`
	TimeStamp   time.Time           `json:"ts"`
}
