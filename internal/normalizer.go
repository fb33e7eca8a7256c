package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Normalizer converts raw conversations to transcripts
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a normalizer that renders times in loc
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{loc: loc}
}

// NormalizeConversation builds the transcript of one conversation. System
// messages and messages without content parts are left out, and the rest
// are ordered by whole-second timestamp.
func (n *Normalizer) NormalizeConversation(conv *RawConversation) (*Transcript, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if !conv.HasMapping() {
		return nil, fmt.Errorf("conversation %s has no mapping", conv.ID)
	}

	nodes := make([]MappingNode, len(conv.Mapping))
	copy(nodes, conv.Mapping)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodeSortKey(nodes[i].Raw) < nodeSortKey(nodes[j].Raw)
	})

	var createTime float64
	messages := make([]TranscriptMessage, 0, len(nodes))
	for _, node := range nodes {
		msg, err := n.normalizeMessage(node.ID, node.Raw)
		if err != nil {
			if !errors.Is(err, ErrNoMessage) {
				LogDebug("conversation %s: %v", conv.ID, err)
			}
			continue
		}
		if createTime == 0 && msg.Timestamp != nil && *msg.Timestamp != 0 {
			createTime = *msg.Timestamp
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("conversation %s has no messages", conv.ID)
	}

	title := conv.Title
	if title == "" {
		title = untitledConversation
	}

	return &Transcript{
		ID:         conv.ID,
		Title:      title,
		CreateTime: createTime,
		Created:    n.FormatClock(&createTime),
		Messages:   messages,
	}, nil
}

// NormalizeAllConversations normalizes every usable conversation and
// orders them newest first
func (n *Normalizer) NormalizeAllConversations(conversations []RawConversation) []*Transcript {
	var transcripts []*Transcript
	for i := range conversations {
		t, err := n.NormalizeConversation(&conversations[i])
		if err != nil {
			LogDebug("skipping conversation: %v", err)
			continue
		}
		transcripts = append(transcripts, t)
	}
	sort.SliceStable(transcripts, func(i, j int) bool {
		return truncSeconds(transcripts[i].CreateTime) > truncSeconds(transcripts[j].CreateTime)
	})
	return transcripts
}

func (n *Normalizer) normalizeMessage(nodeID string, raw json.RawMessage) (TranscriptMessage, error) {
	node, ok := objectFields(raw)
	if !ok {
		return TranscriptMessage{}, &RejectionError{NodeID: nodeID, Reason: ErrNotObject}
	}
	msg, ok := objectFields(node["message"])
	if !ok {
		return TranscriptMessage{}, &RejectionError{NodeID: nodeID, Reason: ErrNoMessage}
	}
	author, ok := objectFields(msg["author"])
	if !ok {
		return TranscriptMessage{}, &RejectionError{NodeID: nodeID, Reason: ErrNoAuthor}
	}
	role, _ := stringValue(author["role"])
	if strings.EqualFold(role, string(RoleSystem)) {
		return TranscriptMessage{}, &RejectionError{NodeID: nodeID, Reason: ErrUnsupportedRole, Detail: role}
	}
	parts, _ := contentParts(msg["content"])
	if len(parts) == 0 {
		return TranscriptMessage{}, &RejectionError{NodeID: nodeID, Reason: ErrEmptyContent}
	}
	if role == "" {
		role = "unknown"
	}

	out := TranscriptMessage{
		Role:    role,
		Content: cleanText(joinAnyParts(parts)),
	}
	if !isJSONNull(msg["create_time"]) {
		if ts, ok := ParseCreateTime(msg["create_time"]); ok {
			out.Timestamp = &ts
			out.Time = n.FormatClock(&ts)
		} else {
			out.Time = "Invalid timestamp"
		}
	} else {
		out.Time = n.FormatClock(nil)
	}
	return out, nil
}

// FormatClock renders a timestamp as local YYYY-MM-DD HH:MM:SS
func (n *Normalizer) FormatClock(ts *float64) string {
	if ts == nil {
		return "Unknown time"
	}
	if math.IsNaN(*ts) || math.IsInf(*ts, 0) {
		return "Invalid timestamp"
	}
	t, err := LocalTime(math.Trunc(*ts), n.loc)
	if err != nil {
		return "Invalid timestamp"
	}
	return t.Format("2006-01-02 15:04:05")
}

// nodeSortKey is the whole-second create_time of a node, or 0.
func nodeSortKey(raw json.RawMessage) int64 {
	node, ok := objectFields(raw)
	if !ok {
		return 0
	}
	msg, ok := objectFields(node["message"])
	if !ok || len(msg) == 0 {
		return 0
	}
	ts, ok := ParseCreateTime(msg["create_time"])
	if !ok {
		return 0
	}
	return truncSeconds(ts)
}

func truncSeconds(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 9.2e18 {
		return 0
	}
	return int64(f)
}

// joinAnyParts joins every part; non-string parts are rendered as JSON text.
func joinAnyParts(parts []json.RawMessage) string {
	strs := make([]string, 0, len(parts))
	for _, p := range parts {
		if s, ok := stringValue(p); ok {
			strs = append(strs, s)
			continue
		}
		switch strings.TrimSpace(string(p)) {
		case "null":
			strs = append(strs, "None")
		case "true":
			strs = append(strs, "True")
		case "false":
			strs = append(strs, "False")
		default:
			strs = append(strs, compactJSON(p))
		}
	}
	return strings.Join(strs, " ")
}

func compactJSON(raw json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return strings.TrimSpace(string(raw))
	}
	out, err := json.Marshal(v)
	if err != nil {
		return strings.TrimSpace(string(raw))
	}
	return string(out)
}

func cleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimFunc(blankLines.ReplaceAllString(text, "\n\n"), isSpace)
}
