package simulation

import (
	"github.com/MementoRC/hb-strategy-sandbox/pkg/utility/fixed"
)

// auditTrail tracks mark-to-market equity tick by tick to derive drawdown and
// risk-adjusted return for the report.
type auditTrail struct {
	initial fixed.Point
	last    fixed.Point
	peak    fixed.Point

	returns     []fixed.Point
	maxDrawdown fixed.Point
}

func newAuditTrail(initial fixed.Point) *auditTrail {
	return &auditTrail{
		initial: initial,
		last:    initial,
		peak:    initial,
	}
}

func (a *auditTrail) observe(equity fixed.Point) {
	if a.last.IsPos() {
		a.returns = append(a.returns, equity.Sub(a.last).Div(a.last))
	}
	a.last = equity

	if equity.Gt(a.peak) {
		a.peak = equity
	}
	if a.peak.IsPos() {
		drawdown := a.peak.Sub(equity).Div(a.peak)
		if drawdown.Gt(a.maxDrawdown) {
			a.maxDrawdown = drawdown
		}
	}
}

func (a *auditTrail) finalEquity() fixed.Point {
	return a.last
}

func (a *auditTrail) pnl() fixed.Point {
	return a.last.Sub(a.initial)
}

func (a *auditTrail) pnlPercent() fixed.Point {
	if !a.initial.IsPos() {
		return fixed.Zero
	}
	return a.pnl().Div(a.initial).Mul(fixed.Hundred)
}

func (a *auditTrail) maxDrawdownPercent() fixed.Point {
	return a.maxDrawdown.Mul(fixed.Hundred)
}

// annualizedVolatility scales the per-tick return deviation by the daily
// convention, treating one tick as one bar.
func (a *auditTrail) annualizedVolatility() fixed.Point {
	if len(a.returns) < 2 {
		return fixed.Zero
	}
	return fixed.StdDev(a.returns, fixed.Mean(a.returns)).Mul(fixed.Sqrt252)
}

// sharpe is the per-tick Sharpe ratio with a zero risk-free rate.
func (a *auditTrail) sharpe() fixed.Point {
	return fixed.SharpeRatio(a.returns, fixed.Zero)
}

func (a *auditTrail) sortino() fixed.Point {
	return fixed.SortinoRatio(a.returns, fixed.Zero)
}
