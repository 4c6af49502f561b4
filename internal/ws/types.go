package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady = "ready"
	MsgPong  = "pong"
	MsgError = "error"
)

// Message is the envelope for control frames. Task events are sent as
// domain.TaskEvent, whose type field uses the task.* names.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}
