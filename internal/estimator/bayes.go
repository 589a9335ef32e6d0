package estimator

import "math"

// Prior is a fixed belief about a quantity's mean and spread before any
// cross-user data is seen.
type Prior struct {
	Mu    float64
	Sigma float64
}

// Priors used by the aggregation pipelines (minutes).
var (
	// CongestionDelayPrior is the prior for per-segment delay estimates.
	CongestionDelayPrior = Prior{Mu: 3, Sigma: 5}

	// RegionDurationPrior is the prior for regional commute durations.
	RegionDurationPrior = Prior{Mu: 40, Sigma: 20}
)

// Posterior is the result of one estimation call. Its fields are copied
// into the aggregate record; it is never persisted on its own.
type Posterior struct {
	Mu          float64
	Sigma       float64
	Confidence  float64
	SampleCount int
}

const (
	minConfidence  = 0.3
	maxConfidence  = 0.95
	confidenceGain = 0.65

	// smoothingK controls how fast confidence saturates with sample count.
	smoothingK = 5.0
)

// Update folds a list of samples into the prior and returns the smoothed
// posterior. The prior mean counts as exactly one pseudo-observation, so
// small samples are pulled toward the prior and large samples converge to
// the raw sample mean. Spread shrinks with sqrt of the evidence count.
//
// Update is pure and total: an empty sample list returns the prior
// unchanged with the minimum confidence.
func Update(prior Prior, samples []float64) Posterior {
	n := len(samples)

	var sum float64
	for _, s := range samples {
		sum += s
	}

	return Posterior{
		Mu:          (prior.Mu + sum) / float64(1+n),
		Sigma:       prior.Sigma / math.Sqrt(float64(1+n)),
		Confidence:  confidence(n),
		SampleCount: n,
	}
}

func confidence(n int) float64 {
	c := minConfidence + confidenceGain*float64(n)/(float64(n)+smoothingK)
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}
