package nasa

import "github.com/cosmicwatch/neo-monitor-service/internal/domain"

// SampleObjects returns the static fallback set served when the upstream API
// is unreachable and no cached data exists. The four objects are real
// asteroids with representative attribute spreads; risk scores are computed
// by the caller like any other batch, never hard-coded.
func SampleObjects() []domain.NearEarthObject {
	return []domain.NearEarthObject{
		{
			ID:             "3542519",
			Name:           "(2010 PK9)",
			IsHazardous:    true,
			DiameterKm:     0.284,
			MissDistanceKm: 7_230_000,
			VelocityKph:    67_600,
		},
		{
			ID:             "3726710",
			Name:           "(2015 RC)",
			DiameterKm:     0.041,
			MissDistanceKm: 15_400_000,
			VelocityKph:    54_200,
		},
		{
			ID:             "2465633",
			Name:           "465633 (2009 JR5)",
			IsHazardous:    true,
			DiameterKm:     1.2,
			MissDistanceKm: 12_500_000,
			VelocityKph:    58_900,
		},
		{
			ID:             "3550117",
			Name:           "(2010 VB)",
			DiameterKm:     0.045,
			MissDistanceKm: 53_200_000,
			VelocityKph:    43_849,
		},
	}
}
