// Command mockfeed runs a local NeoWs-shaped feed server built from the
// static sample set. Point the monitor at it with NASA_BASE_URL to develop
// against deterministic data, or use -out to write the payload as a JSON
// fixture for scorecheck and tests.
//
// Usage:
//
//	go run ./cmd/mockfeed -addr :9090
//	go run ./cmd/mockfeed -out testdata/feed.json
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cosmicwatch/neo-monitor-service/internal/adapter/nasa"
	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
)

// Wire shapes mirror the NeoWs feed response, string-encoded numerics
// included, so the production parser exercises its real decode path.

type wireEntry struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	IsPotentiallyHazardous bool           `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter      wireDiameter   `json:"estimated_diameter"`
	CloseApproachData      []wireApproach `json:"close_approach_data"`
}

type wireDiameter struct {
	Kilometers struct {
		EstimatedDiameterMax float64 `json:"estimated_diameter_max"`
	} `json:"kilometers"`
}

type wireApproach struct {
	CloseApproachDate string `json:"close_approach_date"`
	MissDistance      struct {
		Kilometers string `json:"kilometers"`
	} `json:"miss_distance"`
	RelativeVelocity struct {
		KilometersPerHour string `json:"kilometers_per_hour"`
	} `json:"relative_velocity"`
}

type wireFeed struct {
	ElementCount     int                    `json:"element_count"`
	NearEarthObjects map[string][]wireEntry `json:"near_earth_objects"`
}

func main() {
	addr := flag.String("addr", ":9090", "listen address for the mock server")
	out := flag.String("out", "", "write a feed fixture to this path and exit")
	flag.Parse()

	if *out != "" {
		if err := writeFixture(*out); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote feed fixture: %s", *out)
		return
	}

	http.HandleFunc("GET /feed", handleFeed)
	log.Printf("mock NeoWs feed listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}

// handleFeed serves the sample set spread across the requested date range,
// echoing the start_date/end_date contract of the real API.
func handleFeed(w http.ResponseWriter, r *http.Request) {
	start, err := domain.ParseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		start = domain.NewDate(time.Now().UTC())
	}

	feed := buildFeed(start)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(feed); err != nil {
		log.Printf("encode feed: %v", err)
	}
}

// buildFeed groups the sample objects under consecutive dates starting at
// start, matching how the real feed keys objects by approach date.
func buildFeed(start domain.Date) wireFeed {
	objects := nasa.SampleObjects()
	grouped := make(map[string][]wireEntry, len(objects))
	for i, obj := range objects {
		date := start.AddDays(i % 2).String()
		grouped[date] = append(grouped[date], toWire(obj, date))
	}
	return wireFeed{ElementCount: len(objects), NearEarthObjects: grouped}
}

func toWire(obj domain.NearEarthObject, date string) wireEntry {
	entry := wireEntry{
		ID:                     obj.ID,
		Name:                   obj.Name,
		IsPotentiallyHazardous: obj.IsHazardous,
	}
	entry.EstimatedDiameter.Kilometers.EstimatedDiameterMax = obj.DiameterKm

	var approach wireApproach
	approach.CloseApproachDate = date
	approach.MissDistance.Kilometers = strconv.FormatFloat(obj.MissDistanceKm, 'f', 1, 64)
	approach.RelativeVelocity.KilometersPerHour = strconv.FormatFloat(obj.VelocityKph, 'f', 1, 64)
	entry.CloseApproachData = []wireApproach{approach}
	return entry
}

func writeFixture(path string) error {
	feed := buildFeed(domain.NewDate(time.Now().UTC()))
	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
