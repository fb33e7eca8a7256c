package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotJSONObject = errors.New("not a JSON object")

type jsonField struct {
	Key   string
	Value json.RawMessage
}

// jsonKind returns the first significant byte of a raw value, or 0 when empty.
func jsonKind(raw json.RawMessage) byte {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func isJSONObject(raw json.RawMessage) bool { return jsonKind(raw) == '{' }

func isJSONArray(raw json.RawMessage) bool { return jsonKind(raw) == '[' }

func isJSONNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// orderedFields decodes a JSON object keeping document key order. A repeated
// key keeps its first position and takes the last value.
func orderedFields(raw json.RawMessage) ([]jsonField, error) {
	if !isJSONObject(raw) {
		return nil, errNotJSONObject
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	fields := []jsonField{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if i, dup := index[key]; dup {
			fields[i].Value = value
			continue
		}
		index[key] = len(fields)
		fields = append(fields, jsonField{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

// objectFields decodes a JSON object into a lookup map. It returns false
// for anything that is not an object.
func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if !isJSONObject(raw) {
		return nil, false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// stringValue decodes raw as a JSON string.
func stringValue(raw json.RawMessage) (string, bool) {
	if jsonKind(raw) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
