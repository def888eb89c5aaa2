package analysis

// Report is the risk assessment of one location.
type Report struct {
	LocationInfo LocationInfo `json:"location_info"`
	RiskAnalysis RiskAnalysis `json:"risk_analysis"`
	Confidence   float64      `json:"confidence"`
	Source       string       `json:"source"`
}

// LocationInfo describes the analyzed location.
type LocationInfo struct {
	FormattedAddress string      `json:"formatted_address"`
	Coordinates      Coordinates `json:"coordinates"`
	Region           string      `json:"region,omitempty"`
	Country          string      `json:"country,omitempty"`
	Jurisdiction     string      `json:"jurisdiction,omitempty"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RiskAnalysis holds the overall score and the per-category factors.
// Scores range from 0 to 100.
type RiskAnalysis struct {
	OverallScore         int    `json:"overall_score"`
	BuyingRisk           Factor `json:"buying_risk"`
	RentingRisk          Factor `json:"renting_risk"`
	FloodRisk            Factor `json:"flood_risk"`
	CrimeRate            Factor `json:"crime_rate"`
	AirQuality           Factor `json:"air_quality"`
	Amenities            Factor `json:"amenities"`
	Transportation       Factor `json:"transportation"`
	Neighbourhood        Factor `json:"neighbourhood"`
	EnvironmentalHazards Factor `json:"environmental_hazards"`
	GrowthPotential      Factor `json:"growth_potential"`
}

// Factor is one scored risk category.
type Factor struct {
	Score   int      `json:"score"`
	Status  string   `json:"status,omitempty"`
	Factors []string `json:"factors,omitempty"`
}

// Level buckets a score for display.
func Level(score int) string {
	switch {
	case score < 35:
		return "Low"
	case score < 60:
		return "Medium"
	default:
		return "High"
	}
}
