package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/riskmcp/internal/registry"
)

// EmbeddingsURI is the resource URI of embed_texts results.
const EmbeddingsURI = "embeddings://result"

type embedInput struct {
	Texts     []string `json:"texts" jsonschema:"Texts to embed"`
	Normalize *bool    `json:"normalize,omitempty" jsonschema:"Normalize vectors to unit length (default true)"`
}

func registerEmbed(reg *registry.Registry, emb Embedder) error {
	return wrapRegister(NameEmbedTexts, registry.AddTool(reg,
		NameEmbedTexts,
		"Compute sentence embeddings for a list of texts",
		func(ctx context.Context, in embedInput) (*mcp.CallToolResult, error) {
			if len(in.Texts) == 0 {
				return registry.ErrorResult("texts must contain at least one entry"), nil
			}

			normalize := true
			if in.Normalize != nil {
				normalize = *in.Normalize
			}

			out, err := emb.Embed(ctx, in.Texts, normalize)
			if err != nil {
				return nil, err
			}

			resource, err := registry.JSONResource(EmbeddingsURI, out)
			if err != nil {
				return nil, err
			}

			summary := fmt.Sprintf("Embedded %d text(s) with %s (dimension %d)",
				len(out.Vectors), out.ModelName, out.Dimension)

			return registry.ResourceResult(summary, resource), nil
		},
	))
}
