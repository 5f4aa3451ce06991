package domain

import "math"

// Scoring weights. The hazard flag dominates on purpose: NASA's own
// classification carries more signal than any single measured attribute.
const (
	hazardWeight    = 35.0
	maxSizeTerm     = 30.0
	maxVelocityTerm = 10.0
)

// Score computes the risk assessment for an object. It is a pure, total
// function: every NearEarthObject, including ones with zero or unknown
// fields, produces a score in [0, 100] rounded to one decimal.
func Score(obj NearEarthObject) RiskAssessment {
	score := 0.0
	if obj.IsHazardous {
		score += hazardWeight
	}
	score += sizeTerm(obj.DiameterKm)
	score += distanceTerm(obj.MissDistanceKm)
	score += velocityTerm(obj.VelocityKph)

	score = math.Round(clamp(score, 0, 100)*10) / 10

	return RiskAssessment{
		Score:            score,
		ThreatLevel:      threatLevelFor(score),
		SizeCategory:     sizeCategoryFor(obj.DiameterKm),
		DistanceCategory: distanceCategoryFor(obj.MissDistanceKm),
	}
}

// sizeTerm scales logarithmically with diameter in meters, capped at 30.
// A zero diameter means the size is unknown and contributes nothing.
// Diameters under one meter would produce a negative log, so the term is
// floored at zero.
func sizeTerm(diameterKm float64) float64 {
	if diameterKm <= 0 {
		return 0
	}
	term := 10 * math.Log10(diameterKm*1000)
	if term < 0 {
		return 0
	}
	return math.Min(maxSizeTerm, term)
}

// distanceTerm maps lunar distance into fixed bands. An unknown (+Inf)
// distance contributes nothing.
func distanceTerm(missDistanceKm float64) float64 {
	if math.IsInf(missDistanceKm, 1) {
		return 0
	}
	ld := missDistanceKm / LunarDistanceKm
	switch {
	case ld <= 0.05:
		return 25
	case ld <= 0.1:
		return 20
	case ld <= 0.5:
		return 15
	case ld <= 1:
		return 10
	case ld <= 5:
		return 5
	default:
		return 0
	}
}

func velocityTerm(velocityKph float64) float64 {
	switch {
	case velocityKph > 80000:
		return maxVelocityTerm
	case velocityKph > 60000:
		return 7
	case velocityKph > 40000:
		return 4
	default:
		return 2
	}
}

func threatLevelFor(score float64) ThreatLevel {
	switch {
	case score >= 70:
		return ThreatCritical
	case score >= 50:
		return ThreatHigh
	case score >= 30:
		return ThreatModerate
	case score >= 10:
		return ThreatLow
	default:
		return ThreatMinimal
	}
}

func sizeCategoryFor(diameterKm float64) SizeCategory {
	switch {
	case diameterKm >= 1:
		return SizeLarge
	case diameterKm >= 0.1:
		return SizeMedium
	default:
		return SizeSmall
	}
}

func distanceCategoryFor(missDistanceKm float64) DistanceCategory {
	if math.IsInf(missDistanceKm, 1) {
		return DistanceDistant
	}
	ld := missDistanceKm / LunarDistanceKm
	switch {
	case ld <= 0.1:
		return DistanceExtremelyClose
	case ld <= 0.5:
		return DistanceVeryClose
	case ld <= 1:
		return DistanceClose
	case ld <= 5:
		return DistanceNearby
	default:
		return DistanceDistant
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
