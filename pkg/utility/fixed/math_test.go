package fixed

import (
	"testing"
)

func points(values ...float64) []Point {
	result := make([]Point, len(values))
	for i, v := range values {
		result[i] = FromFloat64(v)
	}
	return result
}

func TestFixedMath_Mean(t *testing.T) {
	if !Mean(nil).Eq(Point{}) {
		t.Error("Mean of empty slice should be zero")
	}
	assertPointEqual(t, FromFloat64(2.0), Mean(points(1.0, 2.0, 3.0)), 0.0001, "Mean")
}

func TestFixedMath_StdDev(t *testing.T) {
	data := points(2.0, 4.0, 4.0, 4.0, 5.0, 5.0, 7.0, 9.0)
	assertPointEqual(t, FromFloat64(2.0), StdDev(data, Mean(data)), 0.0001, "StdDev")

	if !StdDev(points(5.0), FromFloat64(5.0)).Eq(Zero) {
		t.Error("StdDev of single point should be Zero")
	}
}

func TestFixedMath_SharpeRatio(t *testing.T) {
	if !SharpeRatio(points(1.0, 1.0, 1.0), Zero).Eq(Zero) {
		t.Error("zero volatility should give zero Sharpe")
	}

	returns := points(0.01, -0.005, 0.02, 0.003, -0.001)
	sharpe := SharpeRatio(returns, Zero)
	if !sharpe.IsPos() {
		t.Errorf("positive mean returns should give positive Sharpe, got %v", sharpe)
	}
}

func TestFixedMath_SortinoRatio(t *testing.T) {
	// No returns below the threshold: downside deviation is zero.
	if !SortinoRatio(points(0.01, 0.02), Zero).Eq(Zero) {
		t.Error("no downside should give zero Sortino")
	}

	returns := points(0.01, -0.02, 0.03, -0.01, 0.02)
	if !SortinoRatio(returns, Zero).IsPos() {
		t.Error("positive mean with downside should give positive Sortino")
	}
}
