package internal

import (
	"testing"
)

func TestDeduplicator_Deduplicate(t *testing.T) {
	first := MakeConversation("conv-1", []TimedText{{Time: 1704103200, Text: "hello"}})
	same := MakeConversation("conv-1", []TimedText{{Time: 1704103200, Text: "hello"}})
	edited := MakeConversation("conv-1", []TimedText{{Time: 1704103200, Text: "hello again"}})
	other := MakeConversation("conv-2", []TimedText{{Time: 1704103200, Text: "hello"}})

	tests := []struct {
		name    string
		input   []RawConversation
		wantIDs []string
		wantLen int
	}{
		{
			name:    "empty",
			input:   nil,
			wantLen: 0,
		},
		{
			name:    "exact duplicate dropped",
			input:   []RawConversation{first, same},
			wantLen: 1,
		},
		{
			name:    "same id with different content kept",
			input:   []RawConversation{first, edited},
			wantLen: 2,
		},
		{
			name:    "same content with different id kept",
			input:   []RawConversation{first, other, same},
			wantIDs: []string{"conv-1", "conv-2"},
			wantLen: 2,
		},
	}

	d := NewDeduplicator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Deduplicate(tt.input)
			if len(got) != tt.wantLen {
				t.Fatalf("Deduplicate() returned %d conversations, want %d", len(got), tt.wantLen)
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("Deduplicate()[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestDeduplicator_KeepsFirstOccurrence(t *testing.T) {
	a := MakeConversation("conv-1", []TimedText{{Time: 1, Text: "x"}})
	a.Index = 0
	b := MakeConversation("conv-1", []TimedText{{Time: 1, Text: "x"}})
	b.Index = 7

	got := NewDeduplicator().Deduplicate([]RawConversation{a, b})
	if len(got) != 1 || got[0].Index != 0 {
		t.Errorf("expected the first occurrence to survive, got %+v", got)
	}
}
