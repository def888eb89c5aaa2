package analysis

import (
	"context"
	"hash/fnv"
	"strings"
)

// SourceLocal identifies reports produced by Local.
const SourceLocal = "local-deterministic"

// localConfidence is reported for every local report; it carries no
// external data.
const localConfidence = 0.7

// Local is a deterministic Analyzer for development and offline use.
//
// The overall score is derived from an FNV-1a hash of the lower-cased
// location and always falls in [40, 79]. Repeated calls for a location return
// the same report within a build; the score is a development stand-in, not a
// stable identifier to compare across releases or other servers.
type Local struct{}

// Compile-time verification that Local implements Analyzer.
var _ Analyzer = Local{}

// Analyze implements Analyzer.
func (Local) Analyze(_ context.Context, location, _ string) (*Report, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(location)))
	sum := h.Sum32()

	overall := 40 + int(sum%100)%40
	buying := clamp(overall + int((sum>>8)%21) - 10)

	buyingStatus := "Medium"
	if overall >= 60 {
		buyingStatus = "High"
	}

	return &Report{
		LocationInfo: LocationInfo{
			FormattedAddress: location,
			Region:           "Unknown Region",
			Country:          "Unknown",
			Jurisdiction:     "Local analysis - limited data",
		},
		RiskAnalysis: RiskAnalysis{
			OverallScore: overall,
			BuyingRisk: Factor{
				Score:   buying,
				Status:  buyingStatus,
				Factors: []string{"Limited market data", "Local analysis only"},
			},
			RentingRisk: Factor{
				Score:   clamp(overall - 5),
				Status:  "Medium",
				Factors: []string{"Average rental market"},
			},
			FloodRisk:            Factor{Score: 30, Status: "Low", Factors: []string{"Estimated low flood risk"}},
			CrimeRate:            Factor{Score: 45, Status: "Stable", Factors: []string{"Property crime"}},
			AirQuality:           Factor{Score: 70, Status: "Moderate", Factors: []string{"PM2.5"}},
			Amenities:            Factor{Score: 65, Status: "Average", Factors: []string{"Schools", "Hospitals"}},
			Transportation:       Factor{Score: 60, Status: "Average", Factors: []string{"Bus"}},
			Neighbourhood:        Factor{Score: 65, Status: "Average", Factors: []string{"Mixed residential area"}},
			EnvironmentalHazards: Factor{Score: 20, Status: "Low"},
			GrowthPotential:      Factor{Score: 60, Status: "Moderate Growth", Factors: []string{"Economic development"}},
		},
		Confidence: localConfidence,
		Source:     SourceLocal,
	}, nil
}

func clamp(score int) int {
	return min(max(score, 0), 100)
}
