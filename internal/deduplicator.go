package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// Deduplicator removes conversations repeated across merged exports
type Deduplicator struct{}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{}
}

// Deduplicate keeps the first of every group of conversations with the
// same id and mapping content
func (d *Deduplicator) Deduplicate(conversations []RawConversation) []RawConversation {
	seen := make(map[string]bool)
	unique := make([]RawConversation, 0, len(conversations))

	for _, conv := range conversations {
		hash := d.hashConversation(&conv)
		if seen[hash] {
			LogDebug("dropping duplicate conversation %s", conv.ID)
			continue
		}
		seen[hash] = true
		unique = append(unique, conv)
	}

	return unique
}

func (d *Deduplicator) hashConversation(conv *RawConversation) string {
	h := sha256.New()
	h.Write([]byte(conv.ID))
	h.Write([]byte{0})
	for _, node := range conv.Mapping {
		h.Write([]byte(node.ID))
		h.Write([]byte{0})
		h.Write(node.Raw)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
