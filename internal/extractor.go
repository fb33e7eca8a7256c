package internal

import (
	"encoding/json"
	"errors"
	"strings"
)

// ExtractMessage validates one mapping node and pulls out its message
// metrics. Nodes that are not user or assistant messages come back as a
// *RejectionError.
func ExtractMessage(nodeID string, node json.RawMessage) (ExtractedMessage, error) {
	msg, role, err := messageFields(nodeID, node)
	if err != nil {
		return ExtractedMessage{}, err
	}
	if role != RoleUser && role != RoleAssistant {
		return ExtractedMessage{}, &RejectionError{NodeID: nodeID, Reason: ErrUnsupportedRole, Detail: string(role)}
	}

	parts, _ := contentParts(msg["content"])
	text := joinStringParts(parts)

	out := ExtractedMessage{
		NodeID:    nodeID,
		Role:      role,
		Text:      text,
		WordCount: WordCount(text),
		CharCount: CharCount(text),
		HasCode:   HasCode(text),
	}
	if out.HasCode {
		out.CodeLanguages = CodeLanguages(text)
	}
	if ts, ok := ParseCreateTime(msg["create_time"]); ok {
		out.CreateTime = &ts
	}
	return out, nil
}

// ExtractConversation returns the valid messages of a conversation in
// mapping order. Rejected nodes are logged at debug level and skipped.
func ExtractConversation(conv *RawConversation) []ExtractedMessage {
	if !conv.HasMapping() {
		return nil
	}
	var msgs []ExtractedMessage
	for _, node := range conv.Mapping {
		m, err := ExtractMessage(node.ID, node.Raw)
		if err != nil {
			var rej *RejectionError
			if errors.As(err, &rej) && !errors.Is(err, ErrNoMessage) {
				LogDebug("conversation %s: %v", conv.ID, err)
			}
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// messageFields unwraps node -> message -> author.role.
func messageFields(nodeID string, node json.RawMessage) (map[string]json.RawMessage, Role, error) {
	fields, ok := objectFields(node)
	if !ok {
		return nil, "", &RejectionError{NodeID: nodeID, Reason: ErrNotObject}
	}
	rawMsg := fields["message"]
	if isJSONNull(rawMsg) {
		return nil, "", &RejectionError{NodeID: nodeID, Reason: ErrNoMessage}
	}
	msg, ok := objectFields(rawMsg)
	if !ok {
		return nil, "", &RejectionError{NodeID: nodeID, Reason: ErrNoMessage, Detail: "message is not an object"}
	}
	author, ok := objectFields(msg["author"])
	if !ok {
		return nil, "", &RejectionError{NodeID: nodeID, Reason: ErrNoAuthor}
	}
	role, _ := stringValue(author["role"])
	return msg, Role(role), nil
}

// contentParts returns content.parts when content is an object and parts
// is an array.
func contentParts(content json.RawMessage) ([]json.RawMessage, bool) {
	fields, ok := objectFields(content)
	if !ok {
		return nil, false
	}
	if !isJSONArray(fields["parts"]) {
		return nil, false
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(fields["parts"], &parts); err != nil {
		return nil, false
	}
	return parts, true
}

func joinStringParts(parts []json.RawMessage) string {
	strs := make([]string, 0, len(parts))
	for _, p := range parts {
		if s, ok := stringValue(p); ok {
			strs = append(strs, s)
		}
	}
	return strings.Join(strs, " ")
}
