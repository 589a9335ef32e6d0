package estimator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateEmptySamples(t *testing.T) {
	for _, prior := range []Prior{CongestionDelayPrior, RegionDurationPrior, {Mu: -2, Sigma: 0.5}} {
		posterior := Update(prior, nil)

		assert.Equal(t, prior.Mu, posterior.Mu)
		assert.Equal(t, prior.Sigma, posterior.Sigma)
		assert.Equal(t, 0.3, posterior.Confidence)
		assert.Equal(t, 0, posterior.SampleCount)
	}
}

func TestUpdatePullsTowardPrior(t *testing.T) {
	prior := Prior{Mu: 3, Sigma: 5}

	t.Run("samples above the prior", func(t *testing.T) {
		samples := []float64{8, 9, 10}
		posterior := Update(prior, samples)

		assert.Greater(t, posterior.Mu, prior.Mu)
		assert.Less(t, posterior.Mu, 10.0)
	})

	t.Run("samples below the prior", func(t *testing.T) {
		samples := []float64{0.5, 1, 1.5}
		posterior := Update(prior, samples)

		assert.Less(t, posterior.Mu, prior.Mu)
		assert.Greater(t, posterior.Mu, 0.5)
	})
}

func TestUpdateMeanFormula(t *testing.T) {
	// The prior mean counts as exactly one pseudo-observation.
	posterior := Update(Prior{Mu: 3, Sigma: 5}, []float64{9})
	assert.InDelta(t, 6.0, posterior.Mu, 1e-9)

	// 15 identical samples of 8 against the congestion prior.
	samples := make([]float64, 15)
	for i := range samples {
		samples[i] = 8
	}
	posterior = Update(CongestionDelayPrior, samples)
	assert.InDelta(t, (3.0+15*8)/16, posterior.Mu, 1e-9)
	assert.Greater(t, posterior.Confidence, 0.5)
}

func TestUpdateSigmaShrinks(t *testing.T) {
	prior := Prior{Mu: 40, Sigma: 20}

	prev := prior.Sigma
	for _, n := range []int{1, 4, 15, 99} {
		samples := make([]float64, n)
		posterior := Update(prior, samples)

		require.Less(t, posterior.Sigma, prev, "sigma must shrink with n=%d", n)
		prev = posterior.Sigma
	}
}

func TestConfidenceStrictlyIncreasing(t *testing.T) {
	prior := Prior{Mu: 3, Sigma: 5}

	var last float64
	for _, n := range []int{0, 2, 5, 20, 50} {
		samples := make([]float64, n)
		for i := range samples {
			samples[i] = 4
		}
		posterior := Update(prior, samples)

		require.Greater(t, posterior.Confidence, last-1e-12)
		if n > 0 {
			require.Greater(t, posterior.Confidence, last)
		}
		last = posterior.Confidence
	}

	assert.LessOrEqual(t, last, 0.95)
}

func TestConfidenceStaysBelowCap(t *testing.T) {
	samples := make([]float64, 100000)
	posterior := Update(CongestionDelayPrior, samples)
	assert.LessOrEqual(t, posterior.Confidence, 0.95)
	assert.Equal(t, 100000, posterior.SampleCount)
}
