package analytics

import (
	"reflect"
	"testing"

	"github.com/jnspo1/chatgpt-stats/internal"
)

func TestTopDaysPerYear(t *testing.T) {
	records := []internal.DailyRecord{
		{Date: "2024-01-01", TotalChats: 9},
		{Date: "2023-01-01", TotalChats: 8},
		{Date: "2024-01-02", TotalChats: 7},
		{Date: "2024-01-03", TotalChats: 6},
		{Date: "2023-01-02", TotalChats: 5},
	}
	got := TopDaysPerYear(records, 2)

	var dates []string
	for _, r := range got {
		dates = append(dates, r.Date)
	}
	want := []string{"2024-01-01", "2023-01-01", "2024-01-02", "2023-01-02"}
	if !reflect.DeepEqual(dates, want) {
		t.Errorf("TopDaysPerYear() dates = %v, want %v", dates, want)
	}
}

func TestSortByChatsDesc_Stable(t *testing.T) {
	records := []internal.DailyRecord{
		{Date: "2024-01-01", TotalChats: 1},
		{Date: "2024-01-02", TotalChats: 3},
		{Date: "2024-01-03", TotalChats: 1},
		{Date: "2024-01-04", TotalChats: 3},
	}
	got := SortByChatsDesc(records)
	want := []string{"2024-01-02", "2024-01-04", "2024-01-01", "2024-01-03"}
	for i, r := range got {
		if r.Date != want[i] {
			t.Fatalf("index %d = %s, want %s", i, r.Date, want[i])
		}
	}
	if records[0].Date != "2024-01-01" {
		t.Error("SortByChatsDesc() modified its input")
	}
}

func TestTopGapsPerYear(t *testing.T) {
	gaps := []Gap{
		{StartTimestamp: "2023-05-01T00:00:00", LengthDays: 10},
		{StartTimestamp: "2024-05-01T00:00:00", LengthDays: 9},
		{StartTimestamp: "2023-06-01T00:00:00", LengthDays: 8},
		{StartTimestamp: "2023-07-01T00:00:00", LengthDays: 7},
		{StartTimestamp: "2024-06-01T00:00:00", LengthDays: 1},
	}
	got := TopGapsPerYear(gaps, 2)

	var lengths []float64
	for _, g := range got {
		lengths = append(lengths, g.LengthDays)
	}
	want := []float64{10, 9, 8, 1}
	if !reflect.DeepEqual(lengths, want) {
		t.Errorf("TopGapsPerYear() = %v, want %v", lengths, want)
	}
}

func TestComputeLengthDistribution(t *testing.T) {
	got := ComputeLengthDistribution([]int{1, 2, 5, 10, 15, 30, 75})

	wantBuckets := []string{"1-2", "3-5", "6-10", "11-20", "21-50", "50+"}
	wantCounts := []int{2, 1, 1, 1, 1, 1}
	if !reflect.DeepEqual(got.Buckets, wantBuckets) {
		t.Errorf("Buckets = %v, want %v", got.Buckets, wantBuckets)
	}
	if !reflect.DeepEqual(got.Counts, wantCounts) {
		t.Errorf("Counts = %v, want %v", got.Counts, wantCounts)
	}
}

func TestComputeLengthDistribution_OutOfRange(t *testing.T) {
	got := ComputeLengthDistribution([]int{0, -3, 50, 51})
	want := []int{0, 0, 0, 0, 1, 1}
	if !reflect.DeepEqual(got.Counts, want) {
		t.Errorf("Counts = %v, want %v", got.Counts, want)
	}
}

func TestComputeCodeStats(t *testing.T) {
	summaries := []internal.ConversationSummary{
		{CodeLanguages: []string{"python"}},
		{CodeLanguages: []string{"go", "python"}},
		{CodeLanguages: []string{}},
	}
	got := ComputeCodeStats(summaries)

	if got.TotalConversationsWithCode != 2 {
		t.Errorf("TotalConversationsWithCode = %d, want 2", got.TotalConversationsWithCode)
	}
	if got.PctWithCode != 66.7 {
		t.Errorf("PctWithCode = %v, want 66.7", got.PctWithCode)
	}
	want := []LanguageCount{{"python", 2}, {"go", 1}}
	if !reflect.DeepEqual(got.LanguageCounts, want) {
		t.Errorf("LanguageCounts = %v, want %v", got.LanguageCounts, want)
	}
}

func TestComputeCodeStats_Empty(t *testing.T) {
	got := ComputeCodeStats(nil)
	if got.PctWithCode != 0 || got.LanguageCounts == nil {
		t.Errorf("got %+v", got)
	}
}
