package domain

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRange(t *testing.T) (Date, Date) {
	t.Helper()
	start, err := ParseDate("2026-03-01")
	require.NoError(t, err)
	return start, start.AddDays(2)
}

func TestBuildSnapshot_Statistics(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	start, end := testRange(t)
	objects := []NearEarthObject{
		{ID: "a1", Name: "Alpha", IsHazardous: true, DiameterKm: 1.2, MissDistanceKm: 12_500_000, VelocityKph: 58_900},
		{ID: "b2", Name: "Beta", DiameterKm: 0.04, MissDistanceKm: 15_400_000, VelocityKph: 54_200},
		{ID: "c3", Name: "Gamma", DiameterKm: 0.05, MissDistanceKm: 1_800_000, VelocityKph: 30_000},
	}

	snap := BuildSnapshot(start, end, objects)

	require.Len(t, snap.Objects, 3)
	assert.Equal(t, frozen, snap.GeneratedAt)
	assert.Equal(t, start.Time(), snap.StartDate)
	assert.Equal(t, end.Time(), snap.EndDate)

	// Order preserved and scored in place.
	assert.Equal(t, "a1", snap.Objects[0].ID)
	assert.Equal(t, 69.0, snap.Objects[0].Risk.Score)

	stats := snap.Statistics
	assert.Equal(t, 3, stats.TotalCount)
	assert.Equal(t, 1, stats.HazardousCount)
	assert.Equal(t, 33.3, stats.HazardousPercentage)
	assert.Equal(t, 69.0, stats.MaxRisk)
	assert.Greater(t, stats.AverageRisk, stats.MinRisk)

	require.NotNil(t, stats.ClosestApproach)
	assert.Equal(t, "c3", stats.ClosestApproach.AsteroidID)
	assert.Equal(t, "Gamma", stats.ClosestApproach.AsteroidName)
	assert.Equal(t, 1_800_000.0, stats.ClosestApproach.DistanceKm)
	assert.Equal(t, 4.683, stats.ClosestApproach.DistanceLunar)
}

func TestBuildSnapshot_Empty(t *testing.T) {
	start, end := testRange(t)

	snap := BuildSnapshot(start, end, nil)

	assert.Empty(t, snap.Objects)
	assert.Equal(t, 0, snap.Statistics.TotalCount)
	assert.Equal(t, 0.0, snap.Statistics.HazardousPercentage)
	assert.Equal(t, 0.0, snap.Statistics.AverageRisk)
	assert.Nil(t, snap.Statistics.ClosestApproach)
}

func TestClosestApproach_TieBreaksByInputOrder(t *testing.T) {
	objects := []ScoredObject{
		{NearEarthObject: NearEarthObject{ID: "first", MissDistanceKm: 1000}},
		{NearEarthObject: NearEarthObject{ID: "second", MissDistanceKm: 1000}},
	}

	closest := closestApproach(objects)

	require.NotNil(t, closest)
	assert.Equal(t, "first", closest.AsteroidID)
}

func TestClosestApproach_AllDistancesUnknown(t *testing.T) {
	objects := []ScoredObject{
		{NearEarthObject: NearEarthObject{ID: "x", MissDistanceKm: math.Inf(1)}},
		{NearEarthObject: NearEarthObject{ID: "y", MissDistanceKm: math.Inf(1)}},
	}

	assert.Nil(t, closestApproach(objects))
}

func TestClosestApproach_SkipsUnknownDistances(t *testing.T) {
	objects := []ScoredObject{
		{NearEarthObject: NearEarthObject{ID: "unknown", MissDistanceKm: math.Inf(1)}},
		{NearEarthObject: NearEarthObject{ID: "known", MissDistanceKm: 9_999_999}},
	}

	closest := closestApproach(objects)

	require.NotNil(t, closest)
	assert.Equal(t, "known", closest.AsteroidID)
}

func TestFeedSnapshot_Hazardous(t *testing.T) {
	snap := FeedSnapshot{Objects: []ScoredObject{
		{NearEarthObject: NearEarthObject{ID: "a", IsHazardous: true}},
		{NearEarthObject: NearEarthObject{ID: "b"}},
		{NearEarthObject: NearEarthObject{ID: "c", IsHazardous: true}},
	}}

	hazardous := snap.Hazardous()

	require.Len(t, hazardous, 2)
	assert.Equal(t, "a", hazardous[0].ID)
	assert.Equal(t, "c", hazardous[1].ID)
}

func TestFeedSnapshot_Find(t *testing.T) {
	snap := FeedSnapshot{Objects: []ScoredObject{
		{NearEarthObject: NearEarthObject{ID: "a"}},
		{NearEarthObject: NearEarthObject{ID: "b", Name: "Beta"}},
	}}

	obj, ok := snap.Find("b")
	require.True(t, ok)
	assert.Equal(t, "Beta", obj.Name)

	_, ok = snap.Find("missing")
	assert.False(t, ok)
}
