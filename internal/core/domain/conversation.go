package domain

import "time"

// Maximum length of a thread title derived from its first query.
const threadTitleLimit = 50

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser is a message written by the person asking questions.
	RoleUser Role = "user"

	// RoleAssistant is an answer produced by the pipeline.
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation thread.
type Message struct {
	// Role is user or assistant.
	Role Role

	// Content is the message text.
	Content string

	// Timestamp is when the message was appended.
	Timestamp time.Time

	// TokenCount is the approximate token count of Content, computed by
	// the configured TokenCounter when the message is appended.
	TokenCount int

	// RetrievedChunks holds the retrieval snapshot for assistant
	// messages: the chunks the answer was grounded on. Nil for user
	// messages.
	RetrievedChunks []RetrievedChunk

	// ProcessingTime is the wall-clock latency of the turn that
	// produced an assistant message. Zero for user messages.
	ProcessingTime time.Duration
}

// Thread is a persisted multi-turn conversation.
type Thread struct {
	// ID is an opaque identifier, generated when a query arrives
	// without one.
	ID string

	// Title is derived from the first query of the thread.
	Title string

	// Messages is the ordered message history.
	Messages []Message

	// CreatedAt is when the thread was created.
	CreatedAt time.Time
}

// TokenTotal is the running sum of token counts over all messages.
func (t *Thread) TokenTotal() int {
	total := 0
	for i := range t.Messages {
		total += t.Messages[i].TokenCount
	}
	return total
}

// ThreadSummary is the listing view of a thread.
type ThreadSummary struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	MessageCount int
}

// ThreadTitle derives a thread title from its first query.
func ThreadTitle(query string) string {
	runes := []rune(query)
	if len(runes) <= threadTitleLimit {
		return query
	}
	return string(runes[:threadTitleLimit])
}
