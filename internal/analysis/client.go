package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	servererrors "github.com/wagiedev/riskmcp/internal/errors"
)

const serviceName = "analyzer"

// Client calls a remote analyzer over HTTP.
//
// Wire format:
//
//	POST {baseURL}/analyze
//	{"location": "...", "analysis_type": "...", "params": {...}}
//
//	200 OK
//	{"location_info": {...}, "risk_analysis": {...}, "confidence": 0.9, "source": "..."}
type Client struct {
	baseURL string
	http    *http.Client
}

// Compile-time verification that Client implements Analyzer.
var _ Analyzer = (*Client)(nil)

// NewClient returns a client for the analyzer at baseURL. If httpClient is
// nil, a default with a 30s timeout is used.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type analyzeRequest struct {
	Location     string         `json:"location"`
	AnalysisType string         `json:"analysis_type,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
}

// analyzeResponse tolerates analyzers that nest the full analysis document
// under risk_analysis.
type analyzeResponse struct {
	LocationInfo LocationInfo    `json:"location_info"`
	RiskAnalysis json.RawMessage `json:"risk_analysis"`
	Confidence   float64         `json:"confidence"`
	Source       string          `json:"source"`
}

// Analyze implements Analyzer.
func (c *Client) Analyze(ctx context.Context, location, analysisType string) (*Report, error) {
	body, err := json.Marshal(analyzeRequest{Location: location, AnalysisType: analysisType})
	if err != nil {
		return nil, fmt.Errorf("marshal analyze request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create analyze request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &servererrors.CollaboratorError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return nil, &servererrors.CollaboratorError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(detail))),
		}
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &servererrors.CollaboratorError{Service: serviceName, Err: fmt.Errorf("decode response: %w", err)}
	}

	analysis, err := decodeRiskAnalysis(decoded.RiskAnalysis)
	if err != nil {
		return nil, &servererrors.CollaboratorError{Service: serviceName, Err: err}
	}

	if decoded.LocationInfo.FormattedAddress == "" {
		decoded.LocationInfo.FormattedAddress = location
	}

	return &Report{
		LocationInfo: decoded.LocationInfo,
		RiskAnalysis: *analysis,
		Confidence:   decoded.Confidence,
		Source:       decoded.Source,
	}, nil
}

func decodeRiskAnalysis(raw json.RawMessage) (*RiskAnalysis, error) {
	if len(raw) == 0 {
		return nil, errors.New("response has no risk_analysis")
	}

	var nested struct {
		RiskAnalysis *RiskAnalysis `json:"risk_analysis"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("decode risk_analysis: %w", err)
	}

	if nested.RiskAnalysis != nil {
		return nested.RiskAnalysis, nil
	}

	var flat RiskAnalysis
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decode risk_analysis: %w", err)
	}

	return &flat, nil
}
