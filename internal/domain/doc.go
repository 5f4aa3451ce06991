// Package domain models near-earth-object (NEO) close-approach data and the
// risk classification derived from it.
//
// # Data Source
//
// Objects originate from the NASA NeoWs feed endpoint
// (https://api.nasa.gov/neo/rest/v1/feed), queried by date range. The feed
// groups objects under their close-approach date and encodes miss distance
// and relative velocity as decimal strings. The nasa adapter flattens that
// shape into [NearEarthObject]; this package never sees the wire format.
//
// # Field Conventions
//
// Unknown values are deliberately representable:
//
//	DiameterKm = 0       means the size is unknown or unmeasured.
//	MissDistanceKm = +Inf means no close-approach record was present.
//	VelocityKph = 0      means the velocity is unknown.
//
// +Inf for an unknown distance makes threshold comparisons (distance <= X)
// false without special-casing, and makes the distance score term vanish.
// Because +Inf has no JSON encoding, [NearEarthObject] marshals the miss
// distance as a nullable field.
//
// # Risk Scoring
//
// [Score] is the single canonical formula. Earlier iterations of the system
// carried several disagreeing variants; this one is authoritative:
//
//	hazard:   +35 when NASA flags the object potentially hazardous
//	size:     min(30, 10*log10(diameter_m)), floored at 0, 0 when unknown
//	distance: 25 / 20 / 15 / 10 / 5 / 0 for <=0.05 / <=0.1 / <=0.5 / <=1 / <=5 / >5 LD
//	velocity: 10 / 7 / 4 / 2 for >80000 / >60000 / >40000 / else kph
//
// The sum is clamped to [0, 100] and rounded to one decimal. Threat levels
// band the score: MINIMAL <10, LOW <30, MODERATE <50, HIGH <70, CRITICAL >=70.
//
// # Snapshots
//
// [BuildSnapshot] maps a raw object batch through [Score] and aggregates
// [Statistics]. Snapshots are rebuilt on every fetch cycle and never mutated;
// risk assessments are recomputed on read, never persisted.
package domain
