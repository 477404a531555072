package domain

// ChatRole identifies the speaker of a conversation turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one message in a conversation, tagged by speaker.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ProviderName identifies a generative-AI vendor.
type ProviderName string

const (
	ProviderGemini ProviderName = "gemini"
	ProviderOpenAI ProviderName = "openai"
)

// ProviderContext is the logical call-site category used to choose
// per-purpose provider and model configuration.
type ProviderContext string

const (
	ContextCloner         ProviderContext = "cloner"
	ContextConcierge      ProviderContext = "concierge"
	ContextAdminAssistant ProviderContext = "admin_assistant"
)
