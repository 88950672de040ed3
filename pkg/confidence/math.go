// Package confidence scores how far an estimate can be trusted.
package confidence

import "math"

// Base scores
const (
	HighConfidence   = 0.95
	MediumConfidence = 0.80
	LowConfidence    = 0.60
	MinConfidence    = 0.50
)

// Aggregate combines scores with a geometric mean, so one weak input drags
// the result down more than an arithmetic mean would.
func Aggregate(scores ...float64) float64 {
	if len(scores) == 0 {
		return 0
	}

	product := 1.0
	for _, s := range scores {
		if s <= 0 {
			return 0
		}
		product *= s
	}

	return math.Pow(product, 1.0/float64(len(scores)))
}

// Decay takes 10% off base for every adjustment made to the inputs.
func Decay(base float64, factors int) float64 {
	if factors <= 0 {
		return base
	}
	return base * math.Pow(0.9, float64(factors))
}

// Clamp ensures confidence is in valid range [0, 1].
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Label buckets a score for display.
func Label(score float64) string {
	switch {
	case score >= HighConfidence:
		return "high"
	case score >= MediumConfidence:
		return "medium"
	case score >= LowConfidence:
		return "low"
	}
	return "very low"
}
