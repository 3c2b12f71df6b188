package chat

// Role identifies the author of a chat turn. Only two roles survive
// normalization; anything else collapses to the assistant side.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn in a conversation transcript. Ordering within a
// transcript is insertion order and is significant. A message is immutable
// once persisted, except that a thinking placeholder is replaced in place by
// the final assistant message.
type Message struct {
	Role       Role     `json:"role"`
	Text       string   `json:"text"`
	Sources    []string `json:"sources,omitempty"`
	IsThinking bool     `json:"isThinking,omitempty"`
}

// NormalizeRole collapses an arbitrary role tag to exactly user or
// assistant. Unknown tags are treated as assistant output.
func NormalizeRole(raw string) Role {
	if raw == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// Turn is the normalized {role, content} pair forwarded to the RAG backend
// as conversation context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PriorTurns maps every message except the last to a normalized Turn. The
// caller is responsible for having validated that the list is non-empty and
// ends with a user turn.
func PriorTurns(messages []Message) []Turn {
	if len(messages) <= 1 {
		return []Turn{}
	}
	turns := make([]Turn, 0, len(messages)-1)
	for _, msg := range messages[:len(messages)-1] {
		turns = append(turns, Turn{
			Role:    string(NormalizeRole(string(msg.Role))),
			Content: msg.Text,
		})
	}
	return turns
}

// FirstUserText returns the text of the earliest user turn, if any.
func FirstUserText(messages []Message) (string, bool) {
	for _, msg := range messages {
		if NormalizeRole(string(msg.Role)) == RoleUser && msg.Text != "" {
			return msg.Text, true
		}
	}
	return "", false
}
