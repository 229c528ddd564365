package common

import (
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// Balance is a point-in-time view of one asset. Total == Available + Locked
// holds at all times, both components are non-negative.
type Balance struct {
	Asset     string      `json:"asset"`
	Total     fixed.Point `json:"total"`
	Available fixed.Point `json:"available"`
	Locked    fixed.Point `json:"locked"`
}
