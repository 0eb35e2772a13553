package gateway

import (
	"encoding/json"

	"github.com/glyphdb/gateway/core"
)

// State tracks one invocation through the gateway. Invocations hold no
// cross-request state; the machine exists for logging and tracing only.
type State int

const (
	StateReceived State = iota
	StateParsed
	StatePermissionChecked
	StateDispatched
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "RECEIVED"
	case StateParsed:
		return "PARSED"
	case StatePermissionChecked:
		return "PERMISSION_CHECKED"
	case StateDispatched:
		return "DISPATCHED"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Request is everything one invocation needs: the tenant being addressed,
// the authenticated caller with their credential and grants, and the raw
// command text.
type Request struct {
	Tenant    string
	Requester string
	Token     string
	Set       core.PermissionSet
	Text      string
}

// Envelope wraps a successful dispatch.
type Envelope struct {
	Operation core.Operation  `json:"operation"`
	Path      string          `json:"path"`
	Result    json.RawMessage `json:"result"`
	TookMs    int64           `json:"tookMs"`
}
