package session

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Event names written on the outbound stream.
const (
	EventEndpoint = "endpoint"
	EventMessage  = "message"
)

// Event is one frame of a session's outbound stream.
type Event struct {
	// ID is a ULID, monotonic enough to order frames in logs.
	ID   string
	Name string
	Data []byte
}

// NewEvent creates an event with a fresh id.
func NewEvent(name string, data []byte) Event {
	return Event{
		ID:   ulid.Make().String(),
		Name: name,
		Data: data,
	}
}

// Format renders the event as a Server-Sent Events frame.
// Multi-line data is split across several data fields.
func (e Event) Format() string {
	var b strings.Builder

	if e.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", e.ID)
	}

	if e.Name != "" {
		fmt.Fprintf(&b, "event: %s\n", e.Name)
	}

	for line := range strings.SplitSeq(string(e.Data), "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}

	b.WriteString("\n")

	return b.String()
}
