package domain

import "math"

// BuildSnapshot scores every object and derives aggregate statistics for the
// given date range. It is pure apart from the GeneratedAt timestamp,
// order-preserving relative to the input, and performs no I/O.
func BuildSnapshot(start, end Date, objects []NearEarthObject) FeedSnapshot {
	scored := make([]ScoredObject, len(objects))
	for i, obj := range objects {
		scored[i] = ScoredObject{NearEarthObject: obj, Risk: Score(obj)}
	}

	return FeedSnapshot{
		StartDate:   start.Time(),
		EndDate:     end.Time(),
		Objects:     scored,
		Statistics:  buildStatistics(scored),
		GeneratedAt: clock.Now().UTC(),
	}
}

func buildStatistics(objects []ScoredObject) Statistics {
	stats := Statistics{TotalCount: len(objects)}
	if len(objects) == 0 {
		return stats
	}

	var riskSum float64
	stats.MinRisk = objects[0].Risk.Score
	for _, obj := range objects {
		if obj.IsHazardous {
			stats.HazardousCount++
		}
		riskSum += obj.Risk.Score
		stats.MaxRisk = math.Max(stats.MaxRisk, obj.Risk.Score)
		stats.MinRisk = math.Min(stats.MinRisk, obj.Risk.Score)
	}

	stats.HazardousPercentage = round1(float64(stats.HazardousCount) / float64(len(objects)) * 100)
	stats.AverageRisk = round1(riskSum / float64(len(objects)))
	stats.ClosestApproach = closestApproach(objects)
	return stats
}

// closestApproach returns the object with the minimum known miss distance,
// ties broken by first occurrence. Nil when no object has a known distance.
func closestApproach(objects []ScoredObject) *ClosestApproach {
	var closest *ScoredObject
	for i := range objects {
		if !objects[i].HasMissDistance() {
			continue
		}
		if closest == nil || objects[i].MissDistanceKm < closest.MissDistanceKm {
			closest = &objects[i]
		}
	}
	if closest == nil {
		return nil
	}
	return &ClosestApproach{
		AsteroidID:    closest.ID,
		AsteroidName:  closest.Name,
		DistanceKm:    closest.MissDistanceKm,
		DistanceLunar: round3(closest.LunarDistance()),
		Date:          closest.CloseApproachDate,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
