package nasa

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
)

// NeoWs wire types. Miss distance and velocity arrive as decimal strings.

type feedResponse struct {
	ElementCount     int                          `json:"element_count"`
	NearEarthObjects map[string][]json.RawMessage `json:"near_earth_objects"`
}

type neoEntry struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	IsPotentiallyHazardous bool   `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter      struct {
		Kilometers struct {
			EstimatedDiameterMax float64 `json:"estimated_diameter_max"`
		} `json:"kilometers"`
	} `json:"estimated_diameter"`
	CloseApproachData []closeApproach `json:"close_approach_data"`
}

type closeApproach struct {
	CloseApproachDate string `json:"close_approach_date"`
	MissDistance      struct {
		Kilometers string `json:"kilometers"`
	} `json:"miss_distance"`
	RelativeVelocity struct {
		KilometersPerHour string `json:"kilometers_per_hour"`
	} `json:"relative_velocity"`
}

// ParseFeed flattens a NeoWs feed payload into domain objects. Entries are
// ordered by approach date, then by their position within the date's list,
// so output is deterministic despite JSON object key ordering. Entries that
// fail to decode or lack an ID are skipped and counted; a payload that is not
// a feed response at all is an error.
//
// Field defaults for partial entries: missing numerics read as 0, a missing
// miss distance as +Inf, a missing hazard flag as false.
func ParseFeed(body []byte) ([]domain.NearEarthObject, int, error) {
	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, 0, fmt.Errorf("%w: decode feed: %v", ErrUnavailable, err)
	}

	dates := make([]string, 0, len(feed.NearEarthObjects))
	for date := range feed.NearEarthObjects {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var objects []domain.NearEarthObject
	skipped := 0
	for _, date := range dates {
		for _, raw := range feed.NearEarthObjects[date] {
			var entry neoEntry
			if err := json.Unmarshal(raw, &entry); err != nil || entry.ID == "" {
				skipped++
				continue
			}
			objects = append(objects, flattenEntry(entry, date))
		}
	}
	return objects, skipped, nil
}

// flattenEntry maps one wire entry onto a domain object, taking the first
// close-approach record when several exist.
func flattenEntry(entry neoEntry, feedDate string) domain.NearEarthObject {
	obj := domain.NearEarthObject{
		ID:             entry.ID,
		Name:           entry.Name,
		IsHazardous:    entry.IsPotentiallyHazardous,
		DiameterKm:     entry.EstimatedDiameter.Kilometers.EstimatedDiameterMax,
		MissDistanceKm: math.Inf(1),
	}

	approachDate := feedDate
	if len(entry.CloseApproachData) > 0 {
		approach := entry.CloseApproachData[0]
		if km, ok := parsePositiveFloat(approach.MissDistance.Kilometers); ok {
			obj.MissDistanceKm = km
		}
		if kph, ok := parsePositiveFloat(approach.RelativeVelocity.KilometersPerHour); ok {
			obj.VelocityKph = kph
		}
		if approach.CloseApproachDate != "" {
			approachDate = approach.CloseApproachDate
		}
	}
	if d, err := domain.ParseDate(approachDate); err == nil {
		obj.CloseApproachDate = d.Time()
	}
	return obj
}

// parsePositiveFloat parses a non-negative decimal string, reporting failure
// for empty, malformed, or negative values.
func parsePositiveFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
