package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Location length limits, in characters.
const (
	MinLocationLength = 3
	MaxLocationLength = 500
)

// Cache defaults.
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = time.Hour
)

// ErrInvalidLocation indicates the requested location failed validation.
var ErrInvalidLocation = errors.New("invalid location")

// Analyzer produces a risk report for a normalized location.
type Analyzer interface {
	Analyze(ctx context.Context, location, analysisType string) (*Report, error)
}

// Result is a report together with how it was obtained.
type Result struct {
	Report *Report

	// Location is the normalized location that was analyzed.
	Location string

	// Corrected reports whether normalization changed the input.
	Corrected bool

	// Cached reports whether the report was served from the cache.
	Cached bool

	// Fallback reports whether the primary analyzer failed and the
	// fallback produced the report.
	Fallback bool
}

// Service validates requests and caches reports.
type Service struct {
	log      *slog.Logger
	primary  Analyzer
	fallback Analyzer
	cache    *expirable.LRU[string, *Report]
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Fallback answers when the primary analyzer fails. Nil disables fallback.
	Fallback  Analyzer
	CacheSize int
	CacheTTL  time.Duration
}

// NewService creates a Service backed by primary.
func NewService(log *slog.Logger, primary Analyzer, opts ServiceOptions) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}

	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	return &Service{
		log:      log.With("component", "analysis"),
		primary:  primary,
		fallback: opts.Fallback,
		cache:    expirable.NewLRU[string, *Report](opts.CacheSize, nil, opts.CacheTTL),
	}
}

// Analyze returns the report for location, from the cache when possible.
func (s *Service) Analyze(ctx context.Context, location, analysisType string) (*Result, error) {
	normalized, err := NormalizeLocation(location)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Location:  normalized,
		Corrected: normalized != location,
	}

	key := CacheKey(normalized, analysisType)
	if report, ok := s.cache.Get(key); ok {
		s.log.Debug("Cache hit", "location", normalized)

		result.Report = report
		result.Cached = true

		return result, nil
	}

	report, err := s.primary.Analyze(ctx, normalized, analysisType)
	if err != nil {
		if s.fallback == nil || ctx.Err() != nil {
			return nil, err
		}

		s.log.Warn("Analyzer failed, using fallback", "location", normalized, "error", err)

		report, err = s.fallback.Analyze(ctx, normalized, analysisType)
		if err != nil {
			return nil, fmt.Errorf("fallback analyzer: %w", err)
		}

		result.Fallback = true
	}

	s.cache.Add(key, report)
	result.Report = report

	return result, nil
}

// CacheLen returns the number of cached reports.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

// NormalizeLocation trims the location, collapses internal whitespace and
// checks its length.
func NormalizeLocation(location string) (string, error) {
	normalized := strings.Join(strings.Fields(location), " ")

	switch n := utf8.RuneCountInString(normalized); {
	case n == 0:
		return "", fmt.Errorf("%w: location cannot be empty", ErrInvalidLocation)
	case n < MinLocationLength:
		return "", fmt.Errorf("%w: location too short (minimum %d characters)", ErrInvalidLocation, MinLocationLength)
	case n > MaxLocationLength:
		return "", fmt.Errorf("%w: location too long (maximum %d characters)", ErrInvalidLocation, MaxLocationLength)
	}

	return normalized, nil
}

// CacheKey is the hex sha256 of the lower-cased, trimmed location followed
// by the analysis type.
func CacheKey(location, analysisType string) string {
	h := sha256.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(location))))
	h.Write([]byte(analysisType))

	return hex.EncodeToString(h.Sum(nil))
}
