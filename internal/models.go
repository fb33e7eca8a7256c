package internal

import (
	"encoding/json"
	"time"
)

// Role is the author role of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// MappingNode is one entry of a conversation mapping, kept in document order
type MappingNode struct {
	ID  string
	Raw json.RawMessage
}

// RawConversation is one element of the export array
type RawConversation struct {
	Index      int
	ID         string
	Title      string
	CreateTime json.RawMessage
	// Mapping is nil when the element is not an object or has no object mapping
	Mapping []MappingNode
}

// HasMapping reports whether the conversation carried a usable mapping
func (c *RawConversation) HasMapping() bool {
	return c.Mapping != nil
}

// ExtractedMessage is a validated user or assistant message
type ExtractedMessage struct {
	NodeID        string
	Role          Role
	CreateTime    *float64 // nil when absent or not numeric
	Text          string
	WordCount     int
	CharCount     int
	HasCode       bool
	CodeLanguages []string
}

// ConversationSummary describes one conversation with at least one timed user message
type ConversationSummary struct {
	ConversationID  string    `json:"-" yaml:"-"`
	Date            string    `json:"date" yaml:"date"`
	StartTime       string    `json:"start_time" yaml:"start_time"`
	EndTime         string    `json:"end_time" yaml:"end_time"`
	MessageCount    int       `json:"message_count" yaml:"message_count"`
	DurationMinutes float64   `json:"duration_minutes" yaml:"duration_minutes"`
	UserWords       int       `json:"user_words" yaml:"user_words"`
	AsstWords       int       `json:"asst_words" yaml:"asst_words"`
	ResponseRatio   float64   `json:"response_ratio" yaml:"response_ratio"`
	CodeLanguages   []string  `json:"code_languages" yaml:"code_languages"`
	Start           time.Time `json:"-" yaml:"-"`
	End             time.Time `json:"-" yaml:"-"`
}

// DailyRecord is a finalized daily bucket
type DailyRecord struct {
	Date               string  `json:"date" yaml:"date"`
	TotalMessages      int     `json:"total_messages" yaml:"total_messages"`
	TotalChats         int     `json:"total_chats" yaml:"total_chats"`
	AvgMessagesPerChat float64 `json:"avg_messages_per_chat" yaml:"avg_messages_per_chat"`
	MaxMessagesInChat  int     `json:"max_messages_in_chat" yaml:"max_messages_in_chat"`
	UserWords          int     `json:"user_words" yaml:"user_words"`
	UserChars          int     `json:"user_chars" yaml:"user_chars"`
	UserMsgs           int     `json:"user_msgs" yaml:"user_msgs"`
	UserCodeMsgs       int     `json:"user_code_msgs" yaml:"user_code_msgs"`
	AsstWords          int     `json:"asst_words" yaml:"asst_words"`
	AsstChars          int     `json:"asst_chars" yaml:"asst_chars"`
	AsstMsgs           int     `json:"asst_msgs" yaml:"asst_msgs"`
	AsstCodeMsgs       int     `json:"asst_code_msgs" yaml:"asst_code_msgs"`
}

// Corpus is the result of one ingestion pass
type Corpus struct {
	Conversations int
	Summaries     []ConversationSummary
	Daily         []DailyRecord
	// Timestamps holds every timed user message as local wall-clock time, in ingestion order
	Timestamps []time.Time
}
