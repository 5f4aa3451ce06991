// Command scorecheck scores asteroids offline. It accepts either a NeoWs
// feed JSON file or a single object described by flags, runs the production
// scoring engine over it, and prints the assessments. Useful for verifying
// threshold choices before creating alert rules.
//
// Usage:
//
//	go run ./cmd/scorecheck -feed testdata/feed.json
//	go run ./cmd/scorecheck -diameter 1.2 -distance 12500000 -velocity 58900 -hazardous
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/cosmicwatch/neo-monitor-service/internal/adapter/nasa"
	"github.com/cosmicwatch/neo-monitor-service/internal/domain"
)

func main() {
	feedPath := flag.String("feed", "", "path to a NeoWs feed JSON file")
	name := flag.String("name", "(unnamed)", "object name for single-object mode")
	diameter := flag.Float64("diameter", 0, "estimated diameter in km")
	distance := flag.Float64("distance", 0, "miss distance in km (0 = unknown)")
	velocity := flag.Float64("velocity", 0, "relative velocity in km/h")
	hazardous := flag.Bool("hazardous", false, "potentially hazardous flag")
	flag.Parse()

	if code := run(*feedPath, *name, *diameter, *distance, *velocity, *hazardous); code != 0 {
		os.Exit(code)
	}
}

func run(feedPath, name string, diameter, distance, velocity float64, hazardous bool) int {
	var objects []domain.NearEarthObject

	switch {
	case feedPath != "":
		body, err := os.ReadFile(feedPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read feed file: %v\n", err)
			return 1
		}
		parsed, skipped, err := nasa.ParseFeed(body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: parse feed: %v\n", err)
			return 1
		}
		if skipped > 0 {
			fmt.Fprintf(os.Stderr, "warning: skipped %d malformed entries\n", skipped)
		}
		objects = parsed
	case diameter > 0 || velocity > 0:
		obj := domain.NearEarthObject{
			Name:           name,
			IsHazardous:    hazardous,
			DiameterKm:     diameter,
			MissDistanceKm: distance,
			VelocityKph:    velocity,
		}
		if distance == 0 {
			// zero means "not provided", not a surface impact
			obj.MissDistanceKm = math.Inf(1)
		}
		objects = []domain.NearEarthObject{obj}
	default:
		flag.Usage()
		return 1
	}

	if len(objects) == 0 {
		fmt.Println("no objects to score")
		return 0
	}

	scored := make([]domain.ScoredObject, 0, len(objects))
	for _, obj := range objects {
		scored = append(scored, domain.ScoredObject{
			NearEarthObject: obj,
			Risk:            domain.Score(obj),
		})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Risk.Score > scored[j].Risk.Score })

	fmt.Println("=== Asteroid Risk Assessment ===")
	fmt.Println()
	for _, obj := range scored {
		printAssessment(obj)
	}

	fmt.Printf("Scored %d object(s).\n", len(scored))
	return 0
}

func printAssessment(obj domain.ScoredObject) {
	distance := "unknown"
	if obj.HasMissDistance() {
		distance = fmt.Sprintf("%.0f km (%.2f LD)", obj.MissDistanceKm, obj.LunarDistance())
	}
	approach := "unknown"
	if !obj.CloseApproachDate.IsZero() {
		approach = obj.CloseApproachDate.Format(time.DateOnly)
	}

	fmt.Printf("%-28s %6.1f/100  %-8s\n", obj.Name, obj.Risk.Score, obj.Risk.ThreatLevel)
	fmt.Printf("  hazardous=%-5t diameter=%.3f km (%s)\n", obj.IsHazardous, obj.DiameterKm, obj.Risk.SizeCategory)
	fmt.Printf("  approach=%s distance=%s (%s) velocity=%.0f km/h\n",
		approach, distance, obj.Risk.DistanceCategory, obj.VelocityKph)
	fmt.Println()
}
