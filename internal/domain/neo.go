package domain

import (
	"encoding/json"
	"math"
	"time"
)

// LunarDistanceKm is the average Earth-Moon distance, used to normalize
// miss distances into lunar distances (LD).
const LunarDistanceKm = 384400.0

// NearEarthObject is one asteroid close-approach record, normalized from the
// upstream NeoWs feed. Immutable once constructed; one instance per
// (id, fetch date) pair. An unknown miss distance is stored as +Inf so that
// distance comparisons against thresholds are always false.
type NearEarthObject struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	IsHazardous       bool      `json:"is_potentially_hazardous"`
	DiameterKm        float64   `json:"estimated_diameter_km"`
	MissDistanceKm    float64   `json:"-"`
	VelocityKph       float64   `json:"relative_velocity_kph"`
	CloseApproachDate time.Time `json:"close_approach_date"`
}

// HasMissDistance reports whether the miss distance is known.
func (o NearEarthObject) HasMissDistance() bool {
	return !math.IsInf(o.MissDistanceKm, 1)
}

// LunarDistance returns the miss distance in lunar distances, or +Inf when unknown.
func (o NearEarthObject) LunarDistance() float64 {
	return o.MissDistanceKm / LunarDistanceKm
}

// MarshalJSON emits the miss distance as a nullable field because +Inf has no
// JSON encoding.
func (o NearEarthObject) MarshalJSON() ([]byte, error) {
	type alias NearEarthObject
	out := struct {
		alias
		MissDistanceKm *float64 `json:"miss_distance_km"`
	}{alias: alias(o)}
	if o.HasMissDistance() {
		out.MissDistanceKm = &o.MissDistanceKm
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a null or absent miss distance as +Inf.
func (o *NearEarthObject) UnmarshalJSON(data []byte) error {
	type alias NearEarthObject
	in := struct {
		*alias
		MissDistanceKm *float64 `json:"miss_distance_km"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.MissDistanceKm != nil {
		o.MissDistanceKm = *in.MissDistanceKm
	} else {
		o.MissDistanceKm = math.Inf(1)
	}
	return nil
}

// ThreatLevel is the discrete label derived from the numeric risk score.
type ThreatLevel string

const (
	ThreatMinimal  ThreatLevel = "MINIMAL"  // score < 10
	ThreatLow      ThreatLevel = "LOW"      // 10 <= score < 30
	ThreatModerate ThreatLevel = "MODERATE" // 30 <= score < 50
	ThreatHigh     ThreatLevel = "HIGH"     // 50 <= score < 70
	ThreatCritical ThreatLevel = "CRITICAL" // score >= 70
)

// SizeCategory buckets an object by its estimated maximum diameter.
type SizeCategory string

const (
	SizeSmall  SizeCategory = "SMALL"  // < 0.1 km
	SizeMedium SizeCategory = "MEDIUM" // 0.1 - 1 km
	SizeLarge  SizeCategory = "LARGE"  // >= 1 km
)

// DistanceCategory buckets an object by its miss distance in lunar distances.
type DistanceCategory string

const (
	DistanceExtremelyClose DistanceCategory = "EXTREMELY_CLOSE" // <= 0.1 LD
	DistanceVeryClose      DistanceCategory = "VERY_CLOSE"      // <= 0.5 LD
	DistanceClose          DistanceCategory = "CLOSE"           // <= 1 LD
	DistanceNearby         DistanceCategory = "NEARBY"          // <= 5 LD
	DistanceDistant        DistanceCategory = "DISTANT"         // > 5 LD
)

// RiskAssessment is the deterministic classification of one object. It is
// derived on read by [Score] and never stored independently.
type RiskAssessment struct {
	Score            float64          `json:"score"`
	ThreatLevel      ThreatLevel      `json:"threat_level"`
	SizeCategory     SizeCategory     `json:"size_category"`
	DistanceCategory DistanceCategory `json:"distance_category"`
}

// ScoredObject pairs an object with its risk assessment.
type ScoredObject struct {
	NearEarthObject
	Risk RiskAssessment `json:"risk"`
}

// MarshalJSON flattens the object fields and the risk block into one JSON
// object. Without it the embedded object's marshaler would be promoted and
// the risk field silently dropped.
func (s ScoredObject) MarshalJSON() ([]byte, error) {
	type alias NearEarthObject
	out := struct {
		alias
		MissDistanceKm *float64       `json:"miss_distance_km"`
		Risk           RiskAssessment `json:"risk"`
	}{alias: alias(s.NearEarthObject), Risk: s.Risk}
	if s.HasMissDistance() {
		out.MissDistanceKm = &s.NearEarthObject.MissDistanceKm
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *ScoredObject) UnmarshalJSON(data []byte) error {
	if err := s.NearEarthObject.UnmarshalJSON(data); err != nil {
		return err
	}
	var aux struct {
		Risk RiskAssessment `json:"risk"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Risk = aux.Risk
	return nil
}

// ClosestApproach describes the object with the minimum known miss distance
// in a snapshot.
type ClosestApproach struct {
	AsteroidID    string    `json:"asteroid_id"`
	AsteroidName  string    `json:"asteroid_name"`
	DistanceKm    float64   `json:"distance_km"`
	DistanceLunar float64   `json:"distance_lunar"`
	Date          time.Time `json:"date"`
}

// Statistics aggregates a scored feed.
type Statistics struct {
	TotalCount          int              `json:"total_count"`
	HazardousCount      int              `json:"hazardous_count"`
	HazardousPercentage float64          `json:"hazardous_percentage"`
	AverageRisk         float64          `json:"average_risk"`
	MaxRisk             float64          `json:"max_risk"`
	MinRisk             float64          `json:"min_risk"`
	ClosestApproach     *ClosestApproach `json:"closest_approach,omitempty"`
}

// FeedSnapshot is one scored view of the feed for a date range. It is rebuilt
// on every fetch+score cycle and never mutated in place.
type FeedSnapshot struct {
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Objects     []ScoredObject `json:"objects"`
	Statistics  Statistics     `json:"statistics"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// Hazardous returns the subset of objects flagged as potentially hazardous,
// preserving feed order.
func (s FeedSnapshot) Hazardous() []ScoredObject {
	var out []ScoredObject
	for _, obj := range s.Objects {
		if obj.IsHazardous {
			out = append(out, obj)
		}
	}
	return out
}

// Find returns the scored object with the given upstream ID.
func (s FeedSnapshot) Find(asteroidID string) (ScoredObject, bool) {
	for _, obj := range s.Objects {
		if obj.ID == asteroidID {
			return obj, true
		}
	}
	return ScoredObject{}, false
}

// AlertRule is a user-defined trigger condition, owned by the persistence
// collaborator. The evaluator reads rules and records trigger times; all other
// mutation happens elsewhere.
type AlertRule struct {
	ID                  int64
	UserID              int64
	Name                string
	AsteroidID          string
	ThresholdDistanceKm float64
	ThresholdRiskScore  float64
	IsActive            bool
	LastTriggeredAt     *time.Time
}
