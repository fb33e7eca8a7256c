package internal

import "strings"

const (
	untitledConversation = "Untitled Conversation"
	previewLimit         = 200
)

// Transcript is the readable form of one conversation
type Transcript struct {
	ID         string              `json:"id" yaml:"id"`
	Title      string              `json:"title" yaml:"title"`
	CreateTime float64             `json:"create_time" yaml:"create_time"`
	Created    string              `json:"created" yaml:"created"`
	Messages   []TranscriptMessage `json:"messages" yaml:"messages"`
}

// TranscriptMessage is one displayed message
type TranscriptMessage struct {
	Role      string   `json:"role" yaml:"role"`
	Timestamp *float64 `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Time      string   `json:"time" yaml:"time"`
	Content   string   `json:"content" yaml:"content"`
}

// Preview returns the first user message cut to 200 characters
func (t *Transcript) Preview() string {
	for _, msg := range t.Messages {
		if strings.ToLower(msg.Role) != string(RoleUser) {
			continue
		}
		runes := []rune(msg.Content)
		if len(runes) > previewLimit {
			return string(runes[:previewLimit]) + "..."
		}
		return msg.Content
	}
	return "[No user message found]"
}

// MessageCount returns the number of displayed messages
func (t *Transcript) MessageCount() int {
	return len(t.Messages)
}
