package model

// Role is the speaker of a prompt message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PromptMessage is one entry in the ordered message list handed to the
// generation service.
type PromptMessage struct {
	Role    Role
	Content string
}
