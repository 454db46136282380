// Package agentclient implements the Agent Client (C4): a pull-based,
// resumable streaming call to the external LLM Game Master, with a tool
// server dispatcher and a post-tool hook. Grounded on the teacher pack's
// jack-phare-goat/pkg/llm.Stream.Next()/io.EOF idiom, generalized to this
// spec's four message kinds.
package agentclient

// MessageKind tags the union of messages a Stream can yield.
type MessageKind string

const (
	KindInit      MessageKind = "init"
	KindStream    MessageKind = "stream"
	KindAssistant MessageKind = "assistant"
	KindError     MessageKind = "error"
)

// StreamEventKind is the fine-grained shape of a KindStream message.
type StreamEventKind string

const (
	EventContentBlockStart StreamEventKind = "contentBlockStart"
	EventTextDelta         StreamEventKind = "textDelta"
	EventContentBlockEnd   StreamEventKind = "contentBlockEnd"
)

// ContentBlockType distinguishes text from tool_use blocks in a completed
// assistant message.
type ContentBlockType string

const (
	BlockText    ContentBlockType = "text"
	BlockToolUse ContentBlockType = "tool_use"
)

// ContentBlock is one block of a completed assistant message.
type ContentBlock struct {
	Type      ContentBlockType
	Text      string
	ToolUseID string
	ToolName  string
	ToolInput map[string]any
}

// Message is the tagged union yielded by Stream.Next.
type Message struct {
	Kind MessageKind

	// KindInit
	SessionID string

	// KindStream
	StreamEvent StreamEventKind
	Text        string

	// KindAssistant
	Content []ContentBlock
	IsError bool

	// KindError
	Err            error
	Classification ErrorClass
}
