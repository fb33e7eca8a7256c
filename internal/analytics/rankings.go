package analytics

import (
	"math"
	"sort"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// TopDaysPerYear keeps at most perYear records per calendar year, in the
// order given. Records are expected sorted by the ranking field already.
func TopDaysPerYear(records []internal.DailyRecord, perYear int) []internal.DailyRecord {
	counts := make(map[string]int)
	out := []internal.DailyRecord{}
	for _, r := range records {
		year := YearKey(r.Date)
		if counts[year] < perYear {
			out = append(out, r)
			counts[year]++
		}
	}
	return out
}

// TopGapsPerYear caps each start year at perYear gaps, taking years in the
// order they first appear, and re-sorts the merged list longest first
func TopGapsPerYear(gaps []Gap, perYear int) []Gap {
	var order []string
	buckets := make(map[string][]Gap)
	for _, g := range gaps {
		year := YearKey(g.StartTimestamp)
		bucket, seen := buckets[year]
		if !seen {
			order = append(order, year)
		}
		if len(bucket) < perYear {
			bucket = append(bucket, g)
		}
		buckets[year] = bucket
	}
	merged := []Gap{}
	for _, year := range order {
		merged = append(merged, buckets[year]...)
	}
	sortGapsDesc(merged)
	return merged
}

// SortByChatsDesc orders records by total chats, highest first, keeping ties in input order
func SortByChatsDesc(records []internal.DailyRecord) []internal.DailyRecord {
	sorted := make([]internal.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalChats > sorted[j].TotalChats })
	return sorted
}

// SortByMessagesDesc orders records by total messages, highest first, keeping ties in input order
func SortByMessagesDesc(records []internal.DailyRecord) []internal.DailyRecord {
	sorted := make([]internal.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalMessages > sorted[j].TotalMessages })
	return sorted
}

type lengthBucket struct {
	label  string
	lo, hi float64
}

var lengthBuckets = []lengthBucket{
	{"1-2", 1, 2},
	{"3-5", 3, 5},
	{"6-10", 6, 10},
	{"11-20", 11, 20},
	{"21-50", 21, 50},
	{"50+", 51, math.Inf(1)},
}

// LengthDistribution counts conversations per message-count bucket
type LengthDistribution struct {
	Buckets []string `json:"buckets" yaml:"buckets"`
	Counts  []int    `json:"counts" yaml:"counts"`
}

// ComputeLengthDistribution buckets message counts; the first matching
// bucket wins and counts below 1 fall outside every bucket
func ComputeLengthDistribution(messageCounts []int) LengthDistribution {
	dist := LengthDistribution{
		Buckets: make([]string, len(lengthBuckets)),
		Counts:  make([]int, len(lengthBuckets)),
	}
	for i, b := range lengthBuckets {
		dist.Buckets[i] = b.label
	}
	for _, mc := range messageCounts {
		v := float64(mc)
		for i, b := range lengthBuckets {
			if b.lo <= v && v <= b.hi {
				dist.Counts[i]++
				break
			}
		}
	}
	return dist
}

// LanguageCount is how many conversations used a code fence language
type LanguageCount struct {
	Language string `json:"language" yaml:"language"`
	Count    int    `json:"count" yaml:"count"`
}

// CodeStats summarizes code usage across conversations
type CodeStats struct {
	TotalConversationsWithCode int             `json:"total_conversations_with_code" yaml:"total_conversations_with_code"`
	PctWithCode                float64         `json:"pct_with_code" yaml:"pct_with_code"`
	LanguageCounts             []LanguageCount `json:"language_counts" yaml:"language_counts"`
}

// ComputeCodeStats counts conversations with tagged code and tallies each
// language once per conversation, most used first
func ComputeCodeStats(summaries []internal.ConversationSummary) CodeStats {
	var order []string
	counts := make(map[string]int)
	withCode := 0
	for _, s := range summaries {
		if len(s.CodeLanguages) == 0 {
			continue
		}
		withCode++
		for _, lang := range s.CodeLanguages {
			if _, seen := counts[lang]; !seen {
				order = append(order, lang)
			}
			counts[lang]++
		}
	}

	stats := CodeStats{
		TotalConversationsWithCode: withCode,
		LanguageCounts:             make([]LanguageCount, 0, len(order)),
	}
	if n := len(summaries); n > 0 {
		stats.PctWithCode = internal.Round(float64(withCode)/float64(n)*100, 1)
	}
	for _, lang := range order {
		stats.LanguageCounts = append(stats.LanguageCounts, LanguageCount{Language: lang, Count: counts[lang]})
	}
	sort.SliceStable(stats.LanguageCounts, func(i, j int) bool {
		return stats.LanguageCounts[i].Count > stats.LanguageCounts[j].Count
	})
	return stats
}
