package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	servererrors "github.com/wagiedev/riskmcp/internal/errors"
	"github.com/wagiedev/riskmcp/internal/registry"
)

type sumInput struct {
	A json.Number `json:"a"`
	B json.Number `json:"b"`
}

func registerSum(reg *registry.Registry) error {
	schema := registry.ObjectSchema(map[string]registry.Property{
		"a": {Type: "integer", Description: "First addend", Required: true},
		"b": {Type: "integer", Description: "Second addend", Required: true},
	})

	tool := registry.NewTool(NameCalculateSum, "Add two integers and return their sum", schema)

	return wrapRegister(NameCalculateSum, reg.Register(tool, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in sumInput

		dec := json.NewDecoder(bytes.NewReader(req.Params.Arguments))
		dec.UseNumber()

		if err := dec.Decode(&in); err != nil {
			return nil, &servererrors.ArgumentError{Tool: NameCalculateSum, Err: fmt.Errorf("decode arguments: %w", err)}
		}

		a, err := parseInteger("a", in.A)
		if err != nil {
			return nil, err
		}

		b, err := parseInteger("b", in.B)
		if err != nil {
			return nil, err
		}

		return registry.TextResult("The sum is " + new(big.Int).Add(a, b).String()), nil
	}))
}

// parseInteger reads an arbitrary-size JSON integer. Exponent forms such as
// 1e20 are accepted when they denote a whole number.
func parseInteger(field string, n json.Number) (*big.Int, error) {
	r, ok := new(big.Rat).SetString(n.String())
	if !ok || !r.IsInt() {
		return nil, &servererrors.ArgumentError{
			Tool: NameCalculateSum,
			Err:  fmt.Errorf("%s: %q is not an integer", field, n.String()),
		}
	}

	return r.Num(), nil
}
