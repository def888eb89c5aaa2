package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"log/slog"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/riskmcp/internal/analysis"
	"github.com/wagiedev/riskmcp/internal/embedder"
	servererrors "github.com/wagiedev/riskmcp/internal/errors"
	"github.com/wagiedev/riskmcp/internal/registry"
)

type fakeEmbedder struct {
	texts     []string
	normalize bool
	err       error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string, normalize bool) (*embedder.Embeddings, error) {
	f.texts = texts
	f.normalize = normalize

	if f.err != nil {
		return nil, f.err
	}

	vectors := make([][]float64, len(texts))
	for i := range vectors {
		vectors[i] = []float64{float64(i), 1}
	}

	return &embedder.Embeddings{Vectors: vectors, ModelName: "test-model", Dimension: 2}, nil
}

func newTestRegistry(t *testing.T, opts Options) *registry.Registry {
	t.Helper()

	reg := registry.New()
	require.NoError(t, Register(reg, opts))

	return reg
}

func callTool(t *testing.T, reg *registry.Registry, name, args string) (*mcp.CallToolResult, error) {
	t.Helper()

	entry, err := reg.Resolve(name)
	require.NoError(t, err)

	if _, err := entry.Validate(json.RawMessage(args)); err != nil {
		return nil, err
	}

	return entry.Call(context.Background(), json.RawMessage(args))
}

func textAt(t *testing.T, result *mcp.CallToolResult, i int) string {
	t.Helper()

	require.Greater(t, len(result.Content), i)

	text, ok := result.Content[i].(*mcp.TextContent)
	require.True(t, ok, "content %d is %T", i, result.Content[i])

	return text.Text
}

func resourceAt(t *testing.T, result *mcp.CallToolResult, i int) *mcp.ResourceContents {
	t.Helper()

	require.Greater(t, len(result.Content), i)

	res, ok := result.Content[i].(*mcp.EmbeddedResource)
	require.True(t, ok, "content %d is %T", i, result.Content[i])

	return res.Resource
}

func TestRegister_Catalog(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		reg := newTestRegistry(t, Options{})

		var names []string
		for _, tool := range reg.List() {
			names = append(names, tool.Name)
		}

		require.Equal(t, []string{NameCalculateSum, NameRiskGauge}, names)
	})

	t.Run("all services", func(t *testing.T) {
		svc := analysis.NewService(slog.Default(), analysis.Local{}, analysis.ServiceOptions{})
		reg := newTestRegistry(t, Options{Embedder: &fakeEmbedder{}, Analysis: svc})

		var names []string
		for _, tool := range reg.List() {
			names = append(names, tool.Name)
			require.NotEmpty(t, tool.Description)
			require.NotNil(t, tool.InputSchema)
		}

		require.Equal(t, []string{NameCalculateSum, NameEmbedTexts, NameAnalyzeProperty, NameRiskGauge}, names)
	})

	t.Run("twice fails", func(t *testing.T) {
		reg := newTestRegistry(t, Options{})
		require.Error(t, Register(reg, Options{}))
	})
}

func TestCalculateSum(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	result, err := callTool(t, reg, NameCalculateSum, `{"a":2,"b":3}`)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "The sum is 5", textAt(t, result, 0))

	result, err = callTool(t, reg, NameCalculateSum, `{"a":-7,"b":3}`)
	require.NoError(t, err)
	require.Equal(t, "The sum is -4", textAt(t, result, 0))
}

func TestCalculateSum_InvalidArguments(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	for _, args := range []string{`{"a":2}`, `{"a":"2","b":3}`, `{"a":1.5,"b":3}`, `[]`} {
		t.Run(args, func(t *testing.T) {
			_, err := callTool(t, reg, NameCalculateSum, args)
			require.ErrorIs(t, err, servererrors.ErrInvalidArguments)
		})
	}
}

func TestCalculateSum_LargeIntegers(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	tests := []struct {
		args string
		want string
	}{
		{`{"a":9007199254740993,"b":0}`, "The sum is 9007199254740993"},
		{`{"a":9223372036854775807,"b":1}`, "The sum is 9223372036854775808"},
		{`{"a":-9223372036854775808,"b":-1}`, "The sum is -9223372036854775809"},
		{`{"a":1e20,"b":1}`, "The sum is 100000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			result, err := callTool(t, reg, NameCalculateSum, tt.args)
			require.NoError(t, err)
			require.False(t, result.IsError)
			require.Equal(t, tt.want, textAt(t, result, 0))
		})
	}
}

func TestCalculateSum_RejectsFractionAfterValidation(t *testing.T) {
	entry, err := newTestRegistry(t, Options{}).Resolve(NameCalculateSum)
	require.NoError(t, err)

	// 9007199254740993.5 decodes to a whole float64 and passes the schema.
	args := json.RawMessage(`{"a":9007199254740993.5,"b":0}`)
	_, err = entry.Validate(args)
	require.NoError(t, err)

	_, err = entry.Call(context.Background(), args)
	require.ErrorIs(t, err, servererrors.ErrInvalidArguments)

	argErr, ok := errors.AsType[*servererrors.ArgumentError](err)
	require.True(t, ok)
	require.Equal(t, NameCalculateSum, argErr.Tool)
}

func TestEmbedTexts(t *testing.T) {
	emb := &fakeEmbedder{}
	reg := newTestRegistry(t, Options{Embedder: emb})

	result, err := callTool(t, reg, NameEmbedTexts, `{"texts":["a","b","c"]}`)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, emb.texts)
	require.True(t, emb.normalize)

	require.Equal(t, "Embedded 3 text(s) with test-model (dimension 2)", textAt(t, result, 0))

	res := resourceAt(t, result, 1)
	require.Equal(t, EmbeddingsURI, res.URI)
	require.Equal(t, "application/json", res.MIMEType)

	var decoded embedder.Embeddings
	require.NoError(t, json.Unmarshal([]byte(res.Text), &decoded))
	require.Len(t, decoded.Vectors, 3)
}

func TestEmbedTexts_Normalize(t *testing.T) {
	emb := &fakeEmbedder{}
	reg := newTestRegistry(t, Options{Embedder: emb})

	_, err := callTool(t, reg, NameEmbedTexts, `{"texts":["a"],"normalize":false}`)
	require.NoError(t, err)
	require.False(t, emb.normalize)
}

func TestEmbedTexts_EmptyTexts(t *testing.T) {
	reg := newTestRegistry(t, Options{Embedder: &fakeEmbedder{}})

	result, err := callTool(t, reg, NameEmbedTexts, `{"texts":[]}`)
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestEmbedTexts_ServiceFailure(t *testing.T) {
	emb := &fakeEmbedder{err: &servererrors.CollaboratorError{Service: "embedder", StatusCode: 503, Err: errors.New("Model not loaded")}}
	reg := newTestRegistry(t, Options{Embedder: emb})

	_, err := callTool(t, reg, NameEmbedTexts, `{"texts":["a"]}`)

	toolErr, ok := errors.AsType[*servererrors.ToolError](err)
	require.True(t, ok)
	require.Equal(t, NameEmbedTexts, toolErr.Tool)
	require.Equal(t, servererrors.KindToolExecutionError, servererrors.Kind(err))
	require.ErrorContains(t, err, "Model not loaded")
}

func TestAnalyzeProperty(t *testing.T) {
	svc := analysis.NewService(slog.Default(), analysis.Local{}, analysis.ServiceOptions{})
	reg := newTestRegistry(t, Options{Analysis: svc})

	result, err := callTool(t, reg, NameAnalyzeProperty, `{"location":"  221B   Baker Street, London "}`)
	require.NoError(t, err)
	require.False(t, result.IsError)

	summary := textAt(t, result, 0)
	require.Contains(t, summary, "Risk analysis for 221B Baker Street, London")
	require.Contains(t, summary, "Source: local-deterministic, confidence 70%")
	require.Contains(t, summary, `Location normalized to "221B Baker Street, London"`)
	require.NotContains(t, summary, "(cached)")

	res := resourceAt(t, result, 1)
	require.Equal(t, "risk://report/221b-baker-street-london", res.URI)

	var report analysis.Report
	require.NoError(t, json.Unmarshal([]byte(res.Text), &report))
	require.Equal(t, analysis.SourceLocal, report.Source)
	require.GreaterOrEqual(t, report.RiskAnalysis.OverallScore, 40)
	require.LessOrEqual(t, report.RiskAnalysis.OverallScore, 79)

	again, err := callTool(t, reg, NameAnalyzeProperty, `{"location":"221B Baker Street, London"}`)
	require.NoError(t, err)
	require.Contains(t, textAt(t, again, 0), "(cached)")
	require.Equal(t, 1, svc.CacheLen())
}

func TestAnalyzeProperty_InvalidLocation(t *testing.T) {
	svc := analysis.NewService(slog.Default(), analysis.Local{}, analysis.ServiceOptions{})
	reg := newTestRegistry(t, Options{Analysis: svc})

	result, err := callTool(t, reg, NameAnalyzeProperty, `{"location":"  x "}`)
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Contains(t, textAt(t, result, 0), "location too short")
	require.Equal(t, 0, svc.CacheLen())
}

func TestAnalyzeProperty_SchemaRejectsUnknownType(t *testing.T) {
	svc := analysis.NewService(slog.Default(), analysis.Local{}, analysis.ServiceOptions{})
	reg := newTestRegistry(t, Options{Analysis: svc})

	_, err := callTool(t, reg, NameAnalyzeProperty, `{"location":"Paris","analysis_type":"astrology"}`)
	require.ErrorIs(t, err, servererrors.ErrInvalidArguments)

	_, err = callTool(t, reg, NameAnalyzeProperty, `{}`)
	require.ErrorIs(t, err, servererrors.ErrInvalidArguments)
}

func TestReportURI(t *testing.T) {
	require.Equal(t, "risk://report/paris", ReportURI("Paris"))
	require.Equal(t, "risk://report/10-downing-st-london", ReportURI("10 Downing St., London"))
	require.Equal(t, "risk://report/münchen", ReportURI("München!"))
}

func TestRiskGauge(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	result, err := callTool(t, reg, NameRiskGauge, `{"score":80}`)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)

	image, ok := result.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	require.Equal(t, "image/png", image.MIMEType)

	img, err := png.Decode(bytes.NewReader(image.Data))
	require.NoError(t, err)
	require.Equal(t, GaugeWidth, img.Bounds().Dx())
	require.Equal(t, GaugeHeight, img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	high := gaugeFill["High"]
	require.Equal(t, uint32(high.R)*0x101, r)
	require.Equal(t, uint32(high.G)*0x101, g)
	require.Equal(t, uint32(high.B)*0x101, b)

	r, _, _, _ = img.At(GaugeWidth-1, 0).RGBA()
	require.Equal(t, uint32(gaugeTrack.R)*0x101, r)
}

func TestRiskGauge_OutOfRange(t *testing.T) {
	reg := newTestRegistry(t, Options{})

	for _, args := range []string{`{"score":101}`, `{"score":-1}`, `{"score":"high"}`, `{}`} {
		t.Run(args, func(t *testing.T) {
			_, err := callTool(t, reg, NameRiskGauge, args)
			require.ErrorIs(t, err, servererrors.ErrInvalidArguments)
		})
	}
}

func TestRenderGauge_Clamps(t *testing.T) {
	data, err := RenderGauge(250)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	r, _, _, _ := img.At(GaugeWidth-1, GaugeHeight-1).RGBA()
	require.Equal(t, uint32(gaugeFill["High"].R)*0x101, r)
}
