package crinex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffer_RoundTrip(t *testing.T) {
	for order := 1; order <= MaxOrder; order++ {
		enc := newDiffer(order)
		dec := newDiffer(order)

		values := []int64{100, 103, 109, 118, 130, 145, 163, 184, 208, 235}
		for _, v := range values {
			residual := enc.encode(v)
			got := dec.decode(residual)
			assert.Equal(t, v, got, "order=%d", order)
		}
	}
}

func TestDiffer_Reset(t *testing.T) {
	enc := newDiffer(3)
	dec := newDiffer(3)

	for _, v := range []int64{10, 12, 15} {
		got := dec.decode(enc.encode(v))
		assert.Equal(t, v, got)
	}

	enc.reset()
	dec.reset()

	for _, v := range []int64{500, 501, 503} {
		got := dec.decode(enc.encode(v))
		assert.Equal(t, v, got)
	}
}

func TestScaledDiffer_RoundTrip(t *testing.T) {
	enc := newScaledDiffer(4)
	dec := newScaledDiffer(4)

	values := []float64{20123456.789, 20123460.123, 20123465.456}
	for _, v := range values {
		got := dec.decode(enc.encode(v))
		assert.InDelta(t, v, got, 0.001)
	}
}

func TestDiffText_RoundTrip(t *testing.T) {
	ref := "> 2024 01 01 00 00  0.0000000  0 12"
	cur := "> 2024 01 01 00 00 30.0000000  0 12"

	mask := diffText(cur, ref)
	assert.Equal(t, cur, undiffText(mask, ref))
}

func TestDiffText_Truncation(t *testing.T) {
	ref := "G01G02G03G04"
	cur := "G01G02"

	mask := diffText(cur, ref)
	assert.Equal(t, cur, undiffText(mask, ref))
}

func TestDiffText_Growth(t *testing.T) {
	ref := "G01G02"
	cur := "G01G02G03"

	mask := diffText(cur, ref)
	assert.Equal(t, cur, undiffText(mask, ref))
}
