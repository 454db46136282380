// Package toolhost implements the Tool Dispatcher / MCP Surface: the ten
// fixed tools the agent can invoke, each routed to a side-effect handler
// supplied via a Capabilities struct and surfaced to the agent as a real
// MCP server.
package toolhost

// Result is the unified return type from a tool handler. Adapted from the
// teacher's tools.Result: the cost-tracking fields (Usage/Provider/Model)
// are dropped since this dispatcher never makes its own LLM calls.
type Result struct {
	ForLLM  string // content sent back to the agent
	ForUser string // content shown to the human player, if different
	Silent  bool   // suppress the ForUser message
	IsError bool   // marks a textual "Error: ..." result
	Async   bool   // handler started work that completes out-of-band
	Err     error  // internal error, not serialized to the agent
}

func NewResult(forLLM string) *Result { return &Result{ForLLM: forLLM} }

func SilentResult(forLLM string) *Result { return &Result{ForLLM: forLLM, Silent: true} }

func ErrorResult(message string) *Result { return &Result{ForLLM: "Error: " + message, IsError: true} }

func UserResult(content string) *Result { return &Result{ForLLM: content, ForUser: content} }

func AsyncResult(message string) *Result { return &Result{ForLLM: message, Async: true} }

func (r *Result) WithError(err error) *Result {
	r.Err = err
	return r
}
