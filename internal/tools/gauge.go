package tools

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/riskmcp/internal/analysis"
	"github.com/wagiedev/riskmcp/internal/registry"
)

// Gauge geometry in pixels.
const (
	GaugeWidth  = 200
	GaugeHeight = 24
)

var (
	gaugeTrack = color.RGBA{R: 0xe0, G: 0xe0, B: 0xe0, A: 0xff}
	gaugeFill  = map[string]color.RGBA{
		"Low":    {R: 0x2e, G: 0x7d, B: 0x32, A: 0xff},
		"Medium": {R: 0xf9, G: 0xa8, B: 0x25, A: 0xff},
		"High":   {R: 0xc6, G: 0x28, B: 0x28, A: 0xff},
	}
)

func registerGauge(reg *registry.Registry) error {
	schema := registry.ObjectSchema(map[string]registry.Property{
		"score": {
			Type:        "integer",
			Description: "Risk score from 0 to 100",
			Required:    true,
			Minimum:     registry.Float(0),
			Maximum:     registry.Float(100),
		},
	})

	tool := registry.NewTool(NameRiskGauge, "Render a risk score as a horizontal gauge image", schema)

	return wrapRegister(NameRiskGauge, reg.Register(tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := registry.ParseArguments(req)
		if err != nil {
			return nil, err
		}

		score, _ := args["score"].(float64)

		data, err := RenderGauge(int(score))
		if err != nil {
			return nil, err
		}

		return registry.ImageResult(data, "image/png"), nil
	}))
}

// RenderGauge draws score, clamped to [0, 100], as a PNG bar filled in the
// color of its risk level.
func RenderGauge(score int) ([]byte, error) {
	score = min(max(score, 0), 100)

	img := image.NewRGBA(image.Rect(0, 0, GaugeWidth, GaugeHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: gaugeTrack}, image.Point{}, draw.Src)

	filled := score * GaugeWidth / 100
	fill := gaugeFill[analysis.Level(score)]
	draw.Draw(img, image.Rect(0, 0, filled, GaugeHeight), &image.Uniform{C: fill}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode gauge: %w", err)
	}

	return buf.Bytes(), nil
}
