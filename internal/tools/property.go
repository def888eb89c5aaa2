package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/riskmcp/internal/analysis"
	"github.com/wagiedev/riskmcp/internal/registry"
)

// DefaultAnalysisType is used when analyze_property omits analysis_type.
const DefaultAnalysisType = "comprehensive"

// AnalysisTypes lists the accepted analysis_type values.
var AnalysisTypes = []any{DefaultAnalysisType, "web_grounded", "agentic", "conversational"}

func registerAnalyze(reg *registry.Registry, svc PropertyAnalyzer) error {
	schema := registry.ObjectSchema(map[string]registry.Property{
		"location": {
			Type:        "string",
			Description: "Address, neighbourhood or city to assess",
			Required:    true,
		},
		"analysis_type": {
			Type:        "string",
			Description: "Depth of the analysis (default comprehensive)",
			Enum:        AnalysisTypes,
		},
	})

	tool := registry.NewTool(NameAnalyzeProperty, "Assess buying, renting and environmental risk for a property location", schema)

	return wrapRegister(NameAnalyzeProperty, reg.Register(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := registry.ParseArguments(req)
		if err != nil {
			return nil, err
		}

		location, _ := args["location"].(string)

		analysisType, _ := args["analysis_type"].(string)
		if analysisType == "" {
			analysisType = DefaultAnalysisType
		}

		result, err := svc.Analyze(ctx, location, analysisType)
		if errors.Is(err, analysis.ErrInvalidLocation) {
			return registry.ErrorResult(err.Error()), nil
		}

		if err != nil {
			return nil, err
		}

		resource, err := registry.JSONResource(ReportURI(result.Location), result.Report)
		if err != nil {
			return nil, err
		}

		return registry.ResourceResult(summarize(result), resource), nil
	}))
}

// ReportURI returns the resource URI of the report for location.
func ReportURI(location string) string {
	return "risk://report/" + slug(location)
}

func slug(s string) string {
	var b strings.Builder

	dash := false

	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)

			dash = false

			continue
		}

		if !dash && b.Len() > 0 {
			b.WriteByte('-')

			dash = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

func summarize(result *analysis.Result) string {
	risk := result.Report.RiskAnalysis

	var b strings.Builder

	fmt.Fprintf(&b, "Risk analysis for %s: overall score %d/100 (%s)\n",
		result.Location, risk.OverallScore, analysis.Level(risk.OverallScore))
	fmt.Fprintf(&b, "Buying risk: %d (%s)\n", risk.BuyingRisk.Score, analysis.Level(risk.BuyingRisk.Score))
	fmt.Fprintf(&b, "Renting risk: %d (%s)\n", risk.RentingRisk.Score, analysis.Level(risk.RentingRisk.Score))
	fmt.Fprintf(&b, "Source: %s, confidence %.0f%%", result.Report.Source, result.Report.Confidence*100)

	if result.Corrected {
		fmt.Fprintf(&b, "\nLocation normalized to %q", result.Location)
	}

	if result.Fallback {
		b.WriteString("\nRemote analyzer unavailable; local estimate shown")
	}

	if result.Cached {
		b.WriteString("\n(cached)")
	}

	return b.String()
}
