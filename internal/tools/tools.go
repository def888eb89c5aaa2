package tools

import (
	"context"
	"fmt"

	"github.com/wagiedev/riskmcp/internal/analysis"
	"github.com/wagiedev/riskmcp/internal/embedder"
	"github.com/wagiedev/riskmcp/internal/registry"
)

// Tool names.
const (
	NameCalculateSum    = "calculate_sum"
	NameEmbedTexts      = "embed_texts"
	NameAnalyzeProperty = "analyze_property"
	NameRiskGauge       = "risk_gauge"
)

// Embedder turns texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string, normalize bool) (*embedder.Embeddings, error)
}

// PropertyAnalyzer produces risk reports for locations.
type PropertyAnalyzer interface {
	Analyze(ctx context.Context, location, analysisType string) (*analysis.Result, error)
}

// Options selects the services backing the optional tools.
type Options struct {
	// Embedder backs embed_texts. Nil leaves the tool unregistered.
	Embedder Embedder

	// Analysis backs analyze_property. Nil leaves the tool unregistered.
	Analysis PropertyAnalyzer
}

// Register adds the built-in tools to reg in a fixed order.
func Register(reg *registry.Registry, opts Options) error {
	if err := registerSum(reg); err != nil {
		return err
	}

	if opts.Embedder != nil {
		if err := registerEmbed(reg, opts.Embedder); err != nil {
			return err
		}
	}

	if opts.Analysis != nil {
		if err := registerAnalyze(reg, opts.Analysis); err != nil {
			return err
		}
	}

	if err := registerGauge(reg); err != nil {
		return err
	}

	return nil
}

// Compile-time verification of the production services.
var (
	_ Embedder         = (*embedder.Client)(nil)
	_ PropertyAnalyzer = (*analysis.Service)(nil)
)

func wrapRegister(name string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("register %s: %w", name, err)
}
