// Package live defines the transport-agnostic message model for the
// bidirectional voice stream.
//
// Concrete backends (see the gemini subpackage) translate their wire
// frames into [Message] values so the session's routing loop can pattern
// match on kind without knowing the wire format.
package live

// MessageKind discriminates inbound stream messages.
type MessageKind string

const (
	// KindOpened is delivered once, after the backend acknowledged the
	// stream setup.
	KindOpened MessageKind = "opened"
	// KindAudio carries one chunk of response audio in transport text form.
	KindAudio MessageKind = "audio"
	// KindToolCall carries a batch of function call requests.
	KindToolCall MessageKind = "tool_call"
	// KindInterrupted signals the user spoke over an in-progress response;
	// pending playback must be flushed immediately.
	KindInterrupted MessageKind = "interrupted"
	// KindTurnComplete signals the current model response finished.
	KindTurnComplete MessageKind = "turn_complete"
	// KindClosed is the terminal message; Err is set when the stream ended
	// abnormally. No messages follow it.
	KindClosed MessageKind = "closed"
)

// Message is one inbound stream message. Exactly the fields implied by Kind
// are populated.
type Message struct {
	Kind MessageKind

	// Audio is the base64 PCM16 payload for KindAudio.
	Audio string
	// Calls is the function call batch for KindToolCall.
	Calls []FunctionCall
	// Err is the terminal error for KindClosed, nil on clean close.
	Err error
}

// FunctionCall is one backend-requested tool invocation. ID is an opaque
// correlation token assigned by the backend, unique within the stream.
type FunctionCall struct {
	ID   string
	Name string
	Args map[string]any
}

// FunctionResponse answers one FunctionCall, echoing its ID.
type FunctionResponse struct {
	ID       string
	Name     string
	Response map[string]any
}

// Stream is one established bidirectional voice stream.
//
// Messages returns the inbound message channel. The channel is closed after
// a KindClosed message is delivered, so a consumer can range over it.
type Stream interface {
	Messages() <-chan Message
	// SendAudio transmits one outbound audio frame in transport text form.
	// Frames are sent in call order with no batching.
	SendAudio(data string) error
	// SendToolResponse transmits correlated tool call responses.
	SendToolResponse(responses ...FunctionResponse) error
	// Close tears the stream down. Safe to call multiple times.
	Close() error
}
