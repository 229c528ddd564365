package fixed

import (
	"testing"
)

func assertRingBufferEqual(t *testing.T, rb *RingBuffer, expected []float64, msg string) {
	t.Helper()
	if rb.Size() != len(expected) {
		t.Errorf("%s: size mismatch - got %d, want %d", msg, rb.Size(), len(expected))
		return
	}

	for i, exp := range expected {
		got := rb.Get(i)
		want := FromFloat64(exp)
		if !got.Eq(want) {
			t.Errorf("%s: at index %d - got %v, want %v", msg, i, got, want)
		}
	}
}

func TestFixedRingBuffer_NewRingBuffer(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for non-positive capacity")
		}
	}()

	rb := NewRingBuffer(3)
	if rb.Capacity() != 3 || !rb.IsEmpty() || rb.IsFull() {
		t.Errorf("unexpected initial state: %+v", rb)
	}

	NewRingBuffer(0)
}

func TestFixedRingBuffer_AddWrapsAround(t *testing.T) {
	rb := NewRingBuffer(3)

	rb.Add(FromFloat64(1.0))
	assertRingBufferEqual(t, rb, []float64{1.0}, "after first add")

	rb.Add(FromFloat64(2.0))
	rb.Add(FromFloat64(3.0))
	assertRingBufferEqual(t, rb, []float64{3.0, 2.0, 1.0}, "at capacity")

	rb.Add(FromFloat64(4.0))
	assertRingBufferEqual(t, rb, []float64{4.0, 3.0, 2.0}, "after wraparound")

	if !rb.Latest().Eq(FromFloat64(4.0)) {
		t.Errorf("Latest: got %v, want 4.0", rb.Latest())
	}
	if !rb.Oldest().Eq(FromFloat64(2.0)) {
		t.Errorf("Oldest: got %v, want 2.0", rb.Oldest())
	}
}

func TestFixedRingBuffer_ToSliceFifo(t *testing.T) {
	rb := NewRingBuffer(3)

	if data := rb.ToSliceFifo(); data != nil {
		t.Error("ToSliceFifo should return nil for empty buffer")
	}

	rb.Add(FromFloat64(1.0))
	rb.Add(FromFloat64(2.0))
	rb.Add(FromFloat64(3.0))

	data := rb.ToSliceFifo()
	expected := []float64{1.0, 2.0, 3.0}
	for i, v := range expected {
		if !data[i].Eq(FromFloat64(v)) {
			t.Errorf("ToSliceFifo[%d]: got %v, want %v", i, data[i], v)
		}
	}
}

func TestFixedRingBuffer_Statistics(t *testing.T) {
	rb := NewRingBuffer(5)

	if !rb.Mean().Eq(Zero) {
		t.Error("Mean of empty buffer should be Zero")
	}
	if !rb.StdDev().Eq(Zero) {
		t.Error("StdDev of empty buffer should be Zero")
	}

	for _, v := range []float64{1.0, 2.0, 3.0, 4.0, 5.0} {
		rb.Add(FromFloat64(v))
	}

	if !rb.Mean().Eq(FromFloat64(3.0)) {
		t.Errorf("Mean: got %v, want 3.0", rb.Mean())
	}
	if !rb.Sum().Eq(FromFloat64(15.0)) {
		t.Errorf("Sum: got %v, want 15.0", rb.Sum())
	}

	// Population variance of 1..5 is 2, sample variance 2.5.
	if !rb.StdDev().Mul(rb.StdDev()).Sub(FromFloat64(2.0)).Abs().Lt(FromFloat64(0.0001)) {
		t.Errorf("StdDev: got %v, want sqrt(2)", rb.StdDev())
	}
	sample := rb.SampleStdDev()
	if !sample.Mul(sample).Sub(FromFloat64(2.5)).Abs().Lt(FromFloat64(0.0001)) {
		t.Errorf("SampleStdDev: got %v, want sqrt(2.5)", sample)
	}
}

func TestFixedRingBuffer_Clear(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Add(FromFloat64(1.0))
	rb.Add(FromFloat64(2.0))

	rb.Clear()
	if !rb.IsEmpty() {
		t.Error("buffer should be empty after clear")
	}

	rb.Add(FromFloat64(7.0))
	assertRingBufferEqual(t, rb, []float64{7.0}, "after clear and add")
}
