package llm

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type Message struct {
	Role       Role
	Content    string
	ToolCalls  []*ToolCall
	ToolCallID string
	Name       string
}

type ToolCall struct {
	ID       string
	Type     string
	Function *FunctionCall
}

type FunctionCall struct {
	Name      string
	Arguments string
}

type StopReason string

const (
	StopReasonStop      StopReason = "stop"
	StopReasonLength    StopReason = "length"
	StopReasonToolCalls StopReason = "tool_calls"
)

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
