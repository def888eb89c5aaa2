// Package riskmcp provides a session-oriented tool server speaking the Model
// Context Protocol over Server-Sent Events.
//
// Clients open a stream with GET /sse and receive an endpoint event naming
// the URL to post JSON-RPC messages to. Every response is delivered on the
// stream as a message event, in the order the requests were posted. Each
// session must complete the initialize handshake before it may call tools.
//
// # Basic Usage
//
//	srv, err := riskmcp.New(
//	    riskmcp.WithLogger(slog.Default()),
//	    riskmcp.WithServerInfo("my-server", "1.0.0"),
//	    riskmcp.WithTools(addTool),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := srv.ListenAndServe(ctx, "localhost:8000"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Defining Tools
//
// Tools pair an input schema with a handler. Arguments are validated against
// the schema before the handler runs:
//
//	addTool := riskmcp.NewTool("add", "Add two numbers",
//	    riskmcp.SimpleSchema(map[string]string{"a": "float64", "b": "float64"}),
//	    func(ctx context.Context, req *riskmcp.CallToolRequest) (*riskmcp.CallToolResult, error) {
//	        args, _ := riskmcp.ParseArguments(req)
//	        return riskmcp.TextResult(fmt.Sprintf("Result: %v", args["a"].(float64)+args["b"].(float64))), nil
//	    },
//	)
//
// Typed tools infer their schema from a struct:
//
//	type greetInput struct {
//	    Name string `json:"name" jsonschema:"Who to greet"`
//	}
//
//	err := riskmcp.AddTool(srv, "greet", "Say hello",
//	    func(ctx context.Context, in greetInput) (*riskmcp.CallToolResult, error) {
//	        return riskmcp.TextResult("Hello, " + in.Name), nil
//	    })
//
// A handler error becomes a result with isError set; the session stays
// usable. Use ErrorResult to report a user-facing failure directly.
//
// # Error Handling
//
// Protocol failures are reported on the session stream as JSON-RPC errors
// whose data.kind names the failure (UnknownTool, InvalidArguments,
// SessionNotReady, ProtocolError). Kind translates a Go error to the same
// name:
//
//	if riskmcp.Kind(err) == riskmcp.KindUnknownTool {
//	    // ...
//	}
package riskmcp
