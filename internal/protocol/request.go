package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	servererrors "github.com/wagiedev/riskmcp/internal/errors"
)

// JSONRPCVersion is the only accepted value of the jsonrpc member.
const JSONRPCVersion = "2.0"

var nullID = json.RawMessage("null")

// Request is a JSON-RPC 2.0 request or notification.
//
// Wire format:
//
//	{
//	  "jsonrpc": "2.0",
//	  "id": 1,
//	  "method": "tools/call",
//	  "params": {"name": "calculate_sum", "arguments": {"a": 2, "b": 3}}
//	}
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error is set.
//
// Wire format for success:
//
//	{"jsonrpc": "2.0", "id": 1, "result": {...}}
//
// Wire format for error:
//
//	{
//	  "jsonrpc": "2.0",
//	  "id": 1,
//	  "error": {"code": -32602, "message": "unknown tool: nope", "data": {"kind": "UnknownTool", "tool": "nope"}}
//	}
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the error member of a JSON-RPC response.
type ErrorObject struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Data    *ErrorData `json:"data,omitempty"`
}

// ErrorData names the taxonomy member of a failure.
type ErrorData struct {
	Kind string `json:"kind"`
	Tool string `json:"tool,omitempty"`
}

// decodeRequest parses one submitted message.
//
// On failure it returns a *errors.ProtocolError together with the request id
// when it could be recovered, or null otherwise.
func decodeRequest(raw []byte) (*Request, json.RawMessage, error) {
	if !json.Valid(raw) {
		return nil, nullID, &servererrors.ProtocolError{
			Code:    servererrors.CodeParseError,
			Message: "parse error",
		}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, nullID, invalidRequest("request must be a JSON object", err)
	}

	id := nullID
	if rawID, ok := fields["id"]; ok && validID(rawID) {
		id = rawID
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, id, invalidRequest("malformed request envelope", err)
	}

	switch {
	case req.JSONRPC != JSONRPCVersion:
		return nil, id, invalidRequest(fmt.Sprintf("jsonrpc must be %q", JSONRPCVersion), nil)
	case req.Method == "":
		return nil, id, invalidRequest("method is required", nil)
	case len(req.ID) > 0 && !validID(req.ID):
		return nil, nullID, invalidRequest("id must be a string, number or null", nil)
	case !validParams(req.Params):
		return nil, id, invalidRequest("params must be an object", nil)
	}

	return &req, id, nil
}

func invalidRequest(message string, err error) error {
	return &servererrors.ProtocolError{
		Code:    servererrors.CodeInvalidRequest,
		Message: message,
		Err:     err,
	}
}

func validID(id json.RawMessage) bool {
	trimmed := bytes.TrimSpace(id)
	if len(trimmed) == 0 {
		return false
	}

	switch trimmed[0] {
	case '"', 'n', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	default:
		return false
	}
}

func validParams(params json.RawMessage) bool {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}

	return trimmed[0] == '{'
}

// newResult builds a success response.
func newResult(id json.RawMessage, result any) (*Response, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	return &Response{JSONRPC: JSONRPCVersion, ID: id, Result: data}, nil
}

// newError builds an error response from any error.
func newError(id json.RawMessage, err error, tool string) *Response {
	message := err.Error()
	if pe, ok := errors.AsType[*servererrors.ProtocolError](err); ok {
		message = pe.Message
		if pe.Err != nil {
			message += ": " + pe.Err.Error()
		}
	}

	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error: &ErrorObject{
			Code:    servererrors.Code(err),
			Message: message,
			Data: &ErrorData{
				Kind: servererrors.Kind(err),
				Tool: tool,
			},
		},
	}
}
