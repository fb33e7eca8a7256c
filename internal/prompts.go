package internal

import (
	"encoding/json"
	"math"
	"strings"
)

// ExtractUserPrompts walks the whole export document and returns the text
// of every user-authored message whose parts are all strings, in document
// order. Each prompt is cut after its first semicolon. With onlyFirst set,
// prompts without a semicolon are left out.
func ExtractUserPrompts(data []byte, onlyFirst bool) ([]string, error) {
	if err := json.Unmarshal(data, new(json.RawMessage)); err != nil {
		return nil, syntaxError(data, err)
	}
	prompts := []string{}
	if err := walkPrompts(data, onlyFirst, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

// LoadUserPrompts reads an export file and extracts its prompts.
func LoadUserPrompts(filePath string, onlyFirst bool) ([]string, error) {
	data, err := readSource(filePath)
	if err != nil {
		return nil, err
	}
	prompts, err := ExtractUserPrompts(data, onlyFirst)
	if serr, ok := err.(*SourceError); ok {
		serr.Path = filePath
	}
	return prompts, err
}

func walkPrompts(raw json.RawMessage, onlyFirst bool, out *[]string) error {
	switch jsonKind(raw) {
	case '{':
		fields, err := orderedFields(raw)
		if err != nil {
			return err
		}
		if content, ok := userPromptText(fields); ok {
			idx := strings.IndexByte(content, ';')
			switch {
			case idx != -1:
				*out = append(*out, content[:idx+1])
			case !onlyFirst:
				*out = append(*out, content)
			}
		}
		for _, f := range fields {
			if err := walkPrompts(f.Value, onlyFirst, out); err != nil {
				return err
			}
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		for _, item := range items {
			if err := walkPrompts(item, onlyFirst, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// userPromptText matches objects shaped like a user message: author.role
// is "user" and content.parts, when present, holds only strings.
func userPromptText(fields []jsonField) (string, bool) {
	var author, content json.RawMessage
	hasContent := false
	for _, f := range fields {
		switch f.Key {
		case "author":
			author = f.Value
		case "content":
			content, hasContent = f.Value, true
		}
	}
	authorFields, ok := objectFields(author)
	if !ok {
		return "", false
	}
	if role, _ := stringValue(authorFields["role"]); role != string(RoleUser) {
		return "", false
	}
	if !hasContent {
		return "", true
	}
	contentFields, ok := objectFields(content)
	if !ok {
		return "", false
	}
	rawParts, hasParts := contentFields["parts"]
	if !hasParts {
		return "", true
	}
	if !isJSONArray(rawParts) {
		return "", false
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(rawParts, &parts); err != nil {
		return "", false
	}
	strs := make([]string, 0, len(parts))
	for _, p := range parts {
		s, ok := stringValue(p)
		if !ok {
			return "", false
		}
		strs = append(strs, s)
	}
	return strings.Join(strs, " "), true
}

// FindEarliestConversation returns the conversation holding the earliest
// whole-second message timestamp of any role. Ties keep the first.
func FindEarliestConversation(conversations []RawConversation) (*RawConversation, int64, bool) {
	var (
		earliest *RawConversation
		best     int64
		found    bool
	)
	for i := range conversations {
		ts, ok := conversationMinTimestamp(&conversations[i])
		if !ok {
			continue
		}
		if !found || ts < best {
			earliest, best, found = &conversations[i], ts, true
		}
	}
	return earliest, best, found
}

func conversationMinTimestamp(conv *RawConversation) (int64, bool) {
	var (
		lowest int64
		found  bool
	)
	for _, node := range conv.Mapping {
		fields, ok := objectFields(node.Raw)
		if !ok {
			continue
		}
		msg, ok := objectFields(fields["message"])
		if !ok {
			continue
		}
		f, ok := ParseCreateTime(msg["create_time"])
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		ts := truncSeconds(f)
		if !found || ts < lowest {
			lowest, found = ts, true
		}
	}
	return lowest, found
}
