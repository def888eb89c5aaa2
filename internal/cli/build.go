package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wagiedev/riskmcp"
	"github.com/wagiedev/riskmcp/internal/analysis"
	"github.com/wagiedev/riskmcp/internal/config"
	"github.com/wagiedev/riskmcp/internal/embedder"
	"github.com/wagiedev/riskmcp/internal/tools"
)

// loadConfig reads configuration files and applies flag overrides.
func loadConfig(flags *GlobalFlags) (*config.Config, error) {
	cfg, err := config.LoadFromFiles(flags.ConfigPaths...)
	if err != nil {
		return nil, err
	}

	config.ApplyFlagOverrides(cfg, flags.Host, flags.Port, flags.LogLevel)

	return cfg, nil
}

// BuildServer creates a server with the built-in tools wired to the
// collaborators named in cfg.
//
// An empty analyzer URL selects the local analyzer. A remote analyzer falls
// back to the local one when it fails. An empty embedder URL leaves
// embed_texts unregistered.
func BuildServer(cfg *config.Config, log *slog.Logger) (*riskmcp.Server, error) {
	srv, err := riskmcp.New(
		riskmcp.WithLogger(log),
		riskmcp.WithOptions(cfg.Options()),
		riskmcp.WithInstructions("Call analyze_property with a location to assess property risk. "+
			"risk_gauge renders a score as an image."),
	)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Collaborators.Timeout)}

	var opts tools.Options

	if cfg.Collaborators.EmbedderURL != "" {
		opts.Embedder = embedder.New(cfg.Collaborators.EmbedderURL, httpClient)
	}

	var primary analysis.Analyzer = analysis.Local{}

	svcOpts := analysis.ServiceOptions{
		CacheSize: cfg.Cache.Size,
		CacheTTL:  time.Duration(cfg.Cache.TTL),
	}

	if cfg.Collaborators.AnalyzerURL != "" {
		primary = analysis.NewClient(cfg.Collaborators.AnalyzerURL, httpClient)
		svcOpts.Fallback = analysis.Local{}
	}

	opts.Analysis = analysis.NewService(log, primary, svcOpts)

	if err := tools.Register(srv.Registry(), opts); err != nil {
		return nil, fmt.Errorf("failed to register built-in tools: %w", err)
	}

	log.Debug("Built-in tools registered",
		"tools", len(srv.Tools()),
		"embedder_url", cfg.Collaborators.EmbedderURL,
		"analyzer_url", cfg.Collaborators.AnalyzerURL,
	)

	return srv, nil
}
