// Package indicators implements the PTSI family of price-time symmetry
// oscillators. All functions are pure: they read the supplied windows and
// never keep state between calls. Scores are reported on a 0-100 scale where
// LOW means the trajectory is strongly time-correlated (trending) and HIGH
// means it is choppy or range-bound.
package indicators

import "math"

// epsilon guards divisions when variance or correlation collapse to zero.
const epsilon = 1e-4

// PTSI computes the price-time symmetry index over the trailing period.
// Returns false when the window holds fewer than period points.
func PTSI(prices []float64, period int) (float64, bool) {
	if period <= 0 || len(prices) < period {
		return 0, false
	}

	window := prices[len(prices)-period:]
	n := float64(period)

	mean := 0.0
	for _, p := range window {
		mean += p
	}
	mean /= n

	variance := 0.0
	for _, p := range window {
		d := p - mean
		variance += d * d
	}
	variance /= n

	// Variance of the centered index sequence k - period/2 is period²/12.
	timeVariance := n * n / 12

	covariance := 0.0
	for k, p := range window {
		covariance += (p - mean) * (float64(k) - n/2)
	}
	covariance /= n

	correlation := covariance / (math.Sqrt(variance)*math.Sqrt(timeVariance) + epsilon)
	symmetry := math.Sqrt(math.Abs(variance*timeVariance)) / (math.Abs(correlation) + epsilon)

	return clamp(symmetry*5, 0, 100), true
}

// PTSIAdaptive evaluates PTSI at periods 10..30 (step 5) and returns the
// maximum score observed. Requires at least 30 points.
func PTSIAdaptive(prices []float64) (float64, bool) {
	if len(prices) < 30 {
		return 0, false
	}

	maxSymmetry := 0.0
	for period := 10; period <= 30; period += 5 {
		if score, ok := PTSI(prices, period); ok {
			maxSymmetry = math.Max(maxSymmetry, score)
		}
	}
	return maxSymmetry, true
}

// PTSIMomentum blends the base PTSI(20) score with a saturated one-step
// momentum term: 60% symmetry, 40% tanh-compressed percent change.
// Requires at least 20 points.
func PTSIMomentum(prices []float64) (float64, bool) {
	if len(prices) < 20 {
		return 0, false
	}

	base, ok := PTSI(prices, 20)
	if !ok {
		base = 50
	}

	last := prices[len(prices)-1]
	prev := prices[len(prices)-2]
	momentum := (last - prev) / prev * 100
	momSmoothed := math.Tanh(momentum/5) * 50

	return base*0.6 + momSmoothed*0.4, true
}

// PTSIVolume computes a volume-weighted dispersion score over the trailing
// 20 points. Weights are the trailing volumes normalized by their own max.
// Requires at least 20 prices AND 20 volumes.
func PTSIVolume(prices, volumes []float64) (float64, bool) {
	const period = 20
	if len(prices) < period || len(volumes) < period {
		return 0, false
	}

	priceWindow := prices[len(prices)-period:]
	volWindow := volumes[len(volumes)-period:]

	mean := 0.0
	for _, p := range priceWindow {
		mean += p
	}
	mean /= period

	maxVol := volWindow[0]
	for _, v := range volWindow[1:] {
		if v > maxVol {
			maxVol = v
		}
	}

	weightedVariance := 0.0
	for i, p := range priceWindow {
		d := p - mean
		weightedVariance += (volWindow[i] / maxVol) * d * d
	}
	weightedVariance /= period

	score := math.Sqrt(math.Abs(weightedVariance)) / (mean + epsilon) * 50
	return clamp(score, 0, 100), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
