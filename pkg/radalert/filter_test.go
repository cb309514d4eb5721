package radalert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFIRFilterMeanArithmetic(t *testing.T) {
	f := NewFIRFilter(3)

	f.Push(1)
	f.Push(2)
	got := f.Push(3)

	assert.Equal(t, 2.0, got)
	assert.Equal(t, 3, f.Len())
}

func TestFIRFilterEvictsOldest(t *testing.T) {
	f := NewFIRFilter(2)

	f.Push(10)
	f.Push(20)
	got := f.Push(30) // evicts 10

	assert.Equal(t, 25.0, got)
	assert.Equal(t, []float64{20, 30}, f.Samples())
}

func TestFIRFilterSumReducer(t *testing.T) {
	f := NewFIRFilterWithReducer(60, Sum)

	for i := 0; i < 5; i++ {
		f.Push(2)
	}

	assert.Equal(t, 10.0, f.Value())
	assert.Equal(t, 5, f.Len())
}

func TestFIRFilterEmptyValue(t *testing.T) {
	f := NewFIRFilter(5)
	assert.Equal(t, 0.0, f.Value())
}

func TestFIRFilterMinMax(t *testing.T) {
	assert.Equal(t, 1.0, Min([]float64{3, 1, 2}))
	assert.Equal(t, 3.0, Max([]float64{3, 1, 2}))
}

func TestIIRFilterSeedsOnFirstPush(t *testing.T) {
	f := NewIIRFilter(0.9)

	got := f.Push(100)
	assert.Equal(t, 100.0, got)

	v, ok := f.Value()
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestIIRFilterBlendsSubsequentPushes(t *testing.T) {
	f := NewIIRFilter(0.5)

	f.Push(100)
	got := f.Push(0)

	assert.Equal(t, 50.0, got)
}

func TestIIRFilterUnseededValue(t *testing.T) {
	f := NewIIRFilter(0.9)
	v, ok := f.Value()
	assert.False(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestTimeConstantRoundTrip(t *testing.T) {
	const tau = 12.0
	coef := TimeConstantToCoefficient(tau)
	got := CoefficientToTimeConstant(coef)
	assert.InDelta(t, tau, got, 1e-9)
}

func TestHalfLifeRoundTrip(t *testing.T) {
	const halfLife = 7.0
	coef := HalfLifeToCoefficient(halfLife)
	got := CoefficientToHalfLife(coef)
	assert.InDelta(t, halfLife, got, 1e-9)
}

func TestHalfLifeDecaysToHalf(t *testing.T) {
	coef := HalfLifeToCoefficient(4)
	f := NewIIRFilter(coef)

	f.Push(100)
	for i := 0; i < 4; i++ {
		f.Push(0)
	}
	v, _ := f.Value()

	assert.InDelta(t, 50.0, v, 0.5)
}

func TestNewIIRFilterFromTimeConstantMatchesManualCoefficient(t *testing.T) {
	f1 := NewIIRFilterFromTimeConstant(10)
	f2 := NewIIRFilter(math.Exp(-1.0 / 10))

	assert.Equal(t, f2.Coefficient, f1.Coefficient)
}
