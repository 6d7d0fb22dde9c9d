package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.123, roundTo(0.12345, 3))
	assert.Equal(t, 0.1235, roundTo(0.12345, 4))
	assert.Equal(t, 66.7, roundTo(66.666666, 1))
	assert.Equal(t, -0.5, roundTo(-0.4999, 1))
}

func TestPopStdDev(t *testing.T) {
	assert.InDelta(t, 2.0, popStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
	assert.Equal(t, 0.0, popStdDev(nil))
	assert.Equal(t, 0.0, popStdDev([]float64{5, 5, 5}))
}

func TestZScoresZeroVariance(t *testing.T) {
	scores := zScores([]float64{3, 3, 3, 3})
	for _, z := range scores {
		assert.Equal(t, 0.0, z, "constant series must not trip any threshold")
	}
}

func TestPercentileSortedLinearInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	assert.InDelta(t, 1.75, percentileSorted(sorted, 0.25), 1e-12)
	assert.InDelta(t, 2.5, percentileSorted(sorted, 0.5), 1e-12)
	assert.InDelta(t, 3.25, percentileSorted(sorted, 0.75), 1e-12)
	assert.Equal(t, 1.0, percentileSorted(sorted, 0))
	assert.Equal(t, 4.0, percentileSorted(sorted, 1))
	assert.Equal(t, 0.0, percentileSorted(nil, 0.5))
}

func TestQuartiles(t *testing.T) {
	q1, q3 := quartiles([]float64{45, 10, 10, 20, 10, 20, 10, 20})
	assert.InDelta(t, 10.0, q1, 1e-12)
	assert.InDelta(t, 20.0, q3, 1e-12)
}

func TestRanksAverageTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks([]float64{1, 2, 2, 3}))
	assert.Equal(t, []float64{3, 1, 2}, ranks([]float64{9, 4, 7}))
}

func TestCorrelationPValue(t *testing.T) {
	assert.Equal(t, 1.0, correlationPValue(0.9, 2), "too few samples")
	assert.Equal(t, 0.0, correlationPValue(1.0, 10), "perfect correlation")

	p := correlationPValue(0.3, 10)
	assert.Greater(t, p, 0.05)
	assert.Less(t, p, 1.0)
}

func TestPearsonTest(t *testing.T) {
	r, p, err := pearsonTest([]float64{1, 2, 3, 4, 5}, []float64{2, 4, 6, 8, 10})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)
	assert.InDelta(t, 0.0, p, 1e-9)

	r, p, err = pearsonTest([]float64{1, 2, 3, 4, 5}, []float64{5, 4, 3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-12)
	assert.InDelta(t, 0.0, p, 1e-9)
}

func TestPearsonTestDegenerateSeries(t *testing.T) {
	_, _, err := pearsonTest([]float64{1, 2, 3, 4, 5}, []float64{7, 7, 7, 7, 7})
	assert.ErrorIs(t, err, errDegenerate)
}

func TestSpearmanTestMonotonicNonlinear(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	y := []float64{1, 8, 27, 64, 125, 216, 343, 512}

	spearmanR, _, err := spearmanTest(x, y)
	require.NoError(t, err)
	pearsonR, _, err := pearsonTest(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, spearmanR, 1e-12, "rank correlation is exact for monotonic data")
	assert.Less(t, pearsonR, 1.0)
}

func TestOLSSlope(t *testing.T) {
	slope, ok := olsSlope([]float64{1, 2, 3})
	require.True(t, ok)
	assert.InDelta(t, 1.0, slope, 1e-12)

	slope, ok = olsSlope([]float64{5, 5, 5, 5})
	require.True(t, ok)
	assert.InDelta(t, 0.0, slope, 1e-12)

	_, ok = olsSlope([]float64{1})
	assert.False(t, ok)
}

func TestMedianOf(t *testing.T) {
	assert.InDelta(t, 3.5, medianOf([]float64{5, 2, 3, 4}), 1e-12)
	assert.InDelta(t, 3.0, medianOf([]float64{5, 2, 3}), 1e-12)
}
