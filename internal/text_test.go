package internal

import (
	"math"
	"reflect"
	"testing"
)

func TestWordAndCharCount(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantWords int
		wantChars int
	}{
		{name: "empty", text: "", wantWords: 0, wantChars: 0},
		{name: "spaces only", text: " \t\n ", wantWords: 0, wantChars: 4},
		{name: "plain", text: "one two  three", wantWords: 3, wantChars: 14},
		{name: "unicode", text: "naïve café", wantWords: 2, wantChars: 10},
		{name: "no-break space", text: "a b", wantWords: 2, wantChars: 3},
		{name: "information separator", text: "a\x1fb", wantWords: 2, wantChars: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.text); got != tt.wantWords {
				t.Errorf("WordCount(%q) = %d, want %d", tt.text, got, tt.wantWords)
			}
			if got := CharCount(tt.text); got != tt.wantChars {
				t.Errorf("CharCount(%q) = %d, want %d", tt.text, got, tt.wantChars)
			}
		})
	}
}

func TestCodeDetection(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantCode  bool
		wantLangs []string
	}{
		{name: "no fence", text: "just `inline` code", wantCode: false, wantLangs: []string{}},
		{name: "untagged fence", text: "```\nx\n```", wantCode: true, wantLangs: []string{}},
		{name: "tagged fences in order", text: "```go\na\n```\n```python3\nb\n```\n```go\nc\n```", wantCode: true, wantLangs: []string{"go", "python3", "go"}},
		{name: "tag stops at punctuation", text: "```c++\n```", wantCode: true, wantLangs: []string{"c"}},
		{name: "unicode tag", text: "```données\n```", wantCode: true, wantLangs: []string{"données"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasCode(tt.text); got != tt.wantCode {
				t.Errorf("HasCode() = %v, want %v", got, tt.wantCode)
			}
			if got := CodeLanguages(tt.text); !reflect.DeepEqual(got, tt.wantLangs) {
				t.Errorf("CodeLanguages() = %v, want %v", got, tt.wantLangs)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{x: 1.234, places: 2, want: 1.23},
		{x: 0.125, places: 2, want: 0.12},
		{x: 0.375, places: 2, want: 0.38},
		{x: 2.675, places: 2, want: 2.67},
		{x: -1.005, places: 2, want: -1},
		{x: 2.5, places: 0, want: 2},
		{x: 12.3456, places: 1, want: 12.3},
	}

	for _, tt := range tests {
		if got := Round(tt.x, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.x, tt.places, got, tt.want)
		}
	}

	if !math.IsNaN(Round(math.NaN(), 2)) {
		t.Error("Round(NaN) should stay NaN")
	}
	if !math.IsInf(Round(math.Inf(1), 2), 1) {
		t.Error("Round(+Inf) should stay +Inf")
	}
}
