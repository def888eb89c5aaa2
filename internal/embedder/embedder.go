// Package embedder is a client for the text embedding service.
package embedder

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

const serviceName = "embedder"

// MaxTexts bounds the number of texts in one request.
const MaxTexts = 256

// ErrNoTexts indicates an empty embedding request.
var ErrNoTexts = errors.New("at least one text is required")

// Embeddings is the response of the embedding service.
type Embeddings struct {
	Vectors   [][]float64 `json:"embeddings"`
	ModelName string      `json:"model_name"`
	Dimension int         `json:"dimension"`
}

// Client calls the embedding service over HTTP.
//
// Wire format:
//
//	POST {baseURL}/embed
//	{"texts": ["..."], "normalize": true}
//
//	200 OK
//	{"embeddings": [[0.1, ...]], "model_name": "all-MiniLM-L6-v2", "dimension": 384}
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the service at baseURL. If httpClient is nil, a
// default with a 30s timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Normalize bool     `json:"normalize"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string, normalize bool) (*Embeddings, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	if len(texts) > MaxTexts {
		return nil, fmt.Errorf("too many texts: %d (maximum %d)", len(texts), MaxTexts)
	}

	body, err := json.Marshal(embedRequest{Texts: texts, Normalize: normalize})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &servererrors.CollaboratorError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &servererrors.CollaboratorError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Err:        errors.New(errorDetail(resp.Body)),
		}
	}

	var out Embeddings
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &servererrors.CollaboratorError{Service: serviceName, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(out.Vectors) != len(texts) {
		return nil, &servererrors.CollaboratorError{
			Service: serviceName,
			Err:     fmt.Errorf("expected %d embeddings, got %d", len(texts), len(out.Vectors)),
		}
	}

	if out.Dimension == 0 && len(out.Vectors) > 0 {
		out.Dimension = len(out.Vectors[0])
	}

	return &out, nil
}

// errorDetail extracts the detail message of an error response.
func errorDetail(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))

	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.Detail != "" {
		return body.Detail
	}

	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}

	return "no response body"
}
