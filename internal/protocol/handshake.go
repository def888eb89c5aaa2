package protocol

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	servererrors "github.com/wagiedev/riskmcp/internal/errors"
	"github.com/wagiedev/riskmcp/internal/session"
)

// LatestProtocolVersion is offered to clients requesting an unsupported version.
const LatestProtocolVersion = "2025-11-25"

// SupportedProtocolVersions lists the protocol revisions the server accepts,
// oldest first.
var SupportedProtocolVersions = []string{
	"2024-11-05",
	"2025-03-26",
	"2025-06-18",
	LatestProtocolVersion,
}

// NegotiateVersion returns the requested version when supported and the
// latest supported version otherwise.
func NegotiateVersion(requested string) string {
	if slices.Contains(SupportedProtocolVersions, requested) {
		return requested
	}

	return LatestProtocolVersion
}

// handleInitialize completes the handshake: Handshaking -> Ready.
func (d *Dispatcher) handleInitialize(_ context.Context, s *session.Session, req *Request) (any, error) {
	var params mcp.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &servererrors.ProtocolError{
				Code:    servererrors.CodeInvalidParams,
				Message: "invalid initialize params",
				Err:     err,
			}
		}
	}

	version := NegotiateVersion(params.ProtocolVersion)

	if err := s.MarkReady(version, params.ClientInfo); err != nil {
		return nil, err
	}

	attrs := []any{"session_id", s.ID(), "protocol_version", version}
	if params.ClientInfo != nil {
		attrs = append(attrs, "client", params.ClientInfo.Name, "client_version", params.ClientInfo.Version)
	}

	d.log.Info("Session initialized", attrs...)

	return &mcp.InitializeResult{
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{},
		},
		Instructions:    d.instructions,
		ProtocolVersion: version,
		ServerInfo:      d.serverInfo,
	}, nil
}
