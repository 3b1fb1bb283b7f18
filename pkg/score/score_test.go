package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFractionAcceptsBounds(t *testing.T) {
	for _, v := range []float64{0.0, 0.5, 1.0} {
		f, err := NewFraction("confidence", v)
		require.NoError(t, err)
		assert.Equal(t, v, f.Float())
	}
}

func TestNewFractionRejectsOutOfRange(t *testing.T) {
	for _, v := range []float64{-0.01, 1.01, -1, 2} {
		_, err := NewFraction("confidence", v)
		assert.Error(t, err, "value %v", v)
	}
}

func TestNewFractionPtrNilStaysNil(t *testing.T) {
	f, err := NewFractionPtr("confidence", nil)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestNewFractionPtrValidates(t *testing.T) {
	bad := 1.5
	_, err := NewFractionPtr("confidence", &bad)
	assert.Error(t, err)

	good := 0.75
	f, err := NewFractionPtr("confidence", &good)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 0.75, f.Float())
}

func TestNewPercentAcceptsBounds(t *testing.T) {
	for _, v := range []float64{0.0, 50.0, 100.0} {
		p, err := NewPercent("change_percentage", v)
		require.NoError(t, err)
		assert.Equal(t, v, p.Float())
	}
}

func TestNewPercentRejectsOutOfRange(t *testing.T) {
	for _, v := range []float64{-0.01, 100.01} {
		_, err := NewPercent("change_percentage", v)
		assert.Error(t, err, "value %v", v)
	}
}
