package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TestNode describes one mapping entry for fixtures
type TestNode struct {
	ID          string
	Role        string
	CreateTime  interface{}
	Parts       []interface{}
	NullMessage bool
}

// TimedText is a user message for MakeConversation
type TimedText struct {
	Time float64
	Text string
}

// DayConfig asks MakeConversationsWithDays for Chats conversations of
// MsgsPerChat user messages on Date
type DayConfig struct {
	Date        string
	Chats       int
	MsgsPerChat int
}

// MakeNode describes a message node with string parts
func MakeNode(id, role string, createTime interface{}, parts ...interface{}) TestNode {
	return TestNode{ID: id, Role: role, CreateTime: createTime, Parts: parts}
}

// BuildConversationJSON renders a conversation object whose mapping keeps
// the node order given
func BuildConversationJSON(id, title string, nodes []TestNode) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteString("{")
	if id != "" {
		fmt.Fprintf(&buf, "%s:%s,", mustJSON("id"), mustJSON(id))
	}
	if title != "" {
		fmt.Fprintf(&buf, "%s:%s,", mustJSON("title"), mustJSON(title))
	}
	buf.WriteString(`"mapping":{`)
	for i, n := range nodes {
		if i > 0 {
			buf.WriteString(",")
		}
		fmt.Fprintf(&buf, "%s:", mustJSON(n.ID))
		if n.NullMessage {
			buf.WriteString(`{"message":null}`)
			continue
		}
		parts := n.Parts
		if parts == nil {
			parts = []interface{}{}
		}
		msg := map[string]interface{}{
			"author":      map[string]interface{}{"role": n.Role},
			"create_time": n.CreateTime,
			"content":     map[string]interface{}{"parts": parts},
		}
		fmt.Fprintf(&buf, `{"message":%s}`, mustJSON(msg))
	}
	buf.WriteString("}}")
	return json.RawMessage(buf.Bytes())
}

// BuildExportJSON renders an export document from conversation objects
func BuildExportJSON(conversations ...json.RawMessage) []byte {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, c := range conversations {
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.Write(c)
	}
	buf.WriteString("]")
	return buf.Bytes()
}

// MakeConversationJSON builds a conversation of user messages followed by a
// node with a null message
func MakeConversationJSON(id string, msgs []TimedText) json.RawMessage {
	nodes := make([]TestNode, 0, len(msgs)+1)
	for i, m := range msgs {
		nodes = append(nodes, TestNode{
			ID:         fmt.Sprintf("msg-%d", i),
			Role:       "user",
			CreateTime: m.Time,
			Parts:      []interface{}{m.Text},
		})
	}
	nodes = append(nodes, TestNode{ID: "system-node", NullMessage: true})
	return BuildConversationJSON(id, "", nodes)
}

// MakeConversation is MakeConversationJSON decoded into a RawConversation
func MakeConversation(id string, msgs []TimedText) RawConversation {
	return parseConversation(0, MakeConversationJSON(id, msgs))
}

// MakeConversationsWithDays builds conversations starting at 10:00 local
// time on each date, one hour apart, with messages one minute apart
func MakeConversationsWithDays(loc *time.Location, days []DayConfig) []RawConversation {
	if loc == nil {
		loc = time.Local
	}
	var convs []RawConversation
	for _, day := range days {
		d, err := time.ParseInLocation(DateLayout, day.Date, loc)
		if err != nil {
			panic(err)
		}
		base := time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, loc)
		for c := 0; c < day.Chats; c++ {
			msgs := make([]TimedText, 0, day.MsgsPerChat)
			for m := 0; m < day.MsgsPerChat; m++ {
				ts := base.Add(time.Duration(c)*time.Hour + time.Duration(m)*time.Minute)
				msgs = append(msgs, TimedText{Time: float64(ts.Unix()), Text: fmt.Sprintf("msg-%d-%d", c, m)})
			}
			conv := MakeConversation(fmt.Sprintf("%s-%d", day.Date, c), msgs)
			conv.Index = len(convs)
			convs = append(convs, conv)
		}
	}
	return convs
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
