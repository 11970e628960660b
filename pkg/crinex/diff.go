package crinex

// differ implements the m-th order numeric differencing predictor (spec
// §4.5(a)): the encoder emits the residual between the actual value and a
// prediction built from up to m previously reconstructed values; the decoder
// adds the residual back onto the same prediction. Both sides keep an
// identical history of reconstructed values so they always agree on the
// prediction.
//
// The prediction follows the forward-difference formula directly:
//
//	x̂n = sum_{k=1..m} (-1)^(k+1) * C(m,k) * x(n-k)
//
// During the first m-1 values of a stream (or after a reset), fewer than m
// prior values exist yet; the differencer falls back to the highest order
// it has history for, which is exactly what a growing Pascal's-triangle
// predictor does naturally.
type differ struct {
	order int
	hist  []int64 // most recently reconstructed values, oldest first, length <= order
}

// newDiffer returns a differ of the given order (1..MaxOrder).
func newDiffer(order int) *differ {
	if order < 1 {
		order = 1
	}
	if order > MaxOrder {
		order = MaxOrder
	}
	return &differ{order: order}
}

// reset clears all accumulated history, as required after a flag-4 (event)
// epoch marker or at the start of a new satellite arc (spec §4.5(c)).
func (d *differ) reset() {
	d.hist = d.hist[:0]
}

// predict returns the m-th order forward-difference prediction for the next
// value, using as much history as is currently available (m <= d.order).
func (d *differ) predict() int64 {
	m := len(d.hist)
	if m > d.order {
		m = d.order
	}
	var pred int64
	sign := int64(1)
	for k := 1; k <= m; k++ {
		pred += sign * binomial(m, k) * d.hist[len(d.hist)-k]
		sign = -sign
	}
	return pred
}

// push appends a newly reconstructed value to the history, trimming it to
// at most order entries.
func (d *differ) push(value int64) {
	d.hist = append(d.hist, value)
	if n := len(d.hist); n > d.order {
		d.hist = d.hist[n-d.order:]
	}
}

// encode returns the residual for value, then folds value into the history.
func (d *differ) encode(value int64) int64 {
	residual := value - d.predict()
	d.push(value)
	return residual
}

// decode reconstructs the original value from a residual, then folds the
// reconstructed value into the history exactly as encode would.
func (d *differ) decode(residual int64) int64 {
	value := residual + d.predict()
	d.push(value)
	return value
}

// binomial returns C(n,k) for the small n (<= MaxOrder) this codec uses.
func binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	result := int64(1)
	for i := 0; i < k; i++ {
		result = result * int64(n-i) / int64(i+1)
	}
	return result
}

// scaledDiffer wraps a differ to operate on floating point observation
// values, scaling to and from the fixed-point integer domain the numeric
// differencer works in (spec §4.5(a): 3 decimal digits, i.e. x1000).
type scaledDiffer struct {
	d *differ
}

func newScaledDiffer(order int) *scaledDiffer {
	return &scaledDiffer{d: newDiffer(order)}
}

func (s *scaledDiffer) reset() { s.d.reset() }

func (s *scaledDiffer) encode(value float64) int64 {
	return s.d.encode(int64(roundHalfAwayFromZero(value * valueScale)))
}

func (s *scaledDiffer) decode(residual int64) float64 {
	return float64(s.d.decode(residual)) / valueScale
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundHalfAwayFromZero(-v)
	}
	i := float64(int64(v))
	if v-i >= 0.5 {
		return i + 1
	}
	return i
}
