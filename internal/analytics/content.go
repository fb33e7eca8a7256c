package analytics

import (
	"github.com/jnspo1/chatgpt-stats/internal"
)

// ContentMetrics are the per-period word and code metrics, each wrapped with
// 7 and 28 period rolling averages
type ContentMetrics struct {
	AvgUserWords  MetricSeries `json:"avg_user_words" yaml:"avg_user_words"`
	AvgAsstWords  MetricSeries `json:"avg_asst_words" yaml:"avg_asst_words"`
	ResponseRatio MetricSeries `json:"response_ratio" yaml:"response_ratio"`
	CodePctUser   MetricSeries `json:"code_pct_user" yaml:"code_pct_user"`
	CodePctAsst   MetricSeries `json:"code_pct_asst" yaml:"code_pct_asst"`
}

// ContentChartData is the daily content series
type ContentChartData struct {
	Dates []string `json:"dates" yaml:"dates"`
	ContentMetrics
}

// ContentWeeklyData is the content series by ISO week, keyed on Mondays
type ContentWeeklyData struct {
	Weeks []string `json:"weeks" yaml:"weeks"`
	ContentMetrics
}

// ContentMonthlyData is the content series by calendar month
type ContentMonthlyData struct {
	Months []string `json:"months" yaml:"months"`
	ContentMetrics
}

func newContentMetrics(periods []Totals) ContentMetrics {
	n := len(periods)
	userWords := make([]float64, n)
	asstWords := make([]float64, n)
	ratio := make([]float64, n)
	codeUser := make([]float64, n)
	codeAsst := make([]float64, n)
	for i, t := range periods {
		userWords[i] = SafeDiv(float64(t.UserWords), float64(t.UserMsgs), 0)
		asstWords[i] = SafeDiv(float64(t.AsstWords), float64(t.AsstMsgs), 0)
		ratio[i] = SafeDiv(float64(t.AsstWords), float64(t.UserWords), 0)
		codeUser[i] = SafeDiv(float64(t.UserCodeMsgs*100), float64(t.UserMsgs), 0)
		codeAsst[i] = SafeDiv(float64(t.AsstCodeMsgs*100), float64(t.AsstMsgs), 0)
	}
	return ContentMetrics{
		AvgUserWords:  NewMetricSeries(userWords),
		AvgAsstWords:  NewMetricSeries(asstWords),
		ResponseRatio: NewMetricSeries(ratio),
		CodePctUser:   NewMetricSeries(codeUser),
		CodePctAsst:   NewMetricSeries(codeAsst),
	}
}

// ComputeContentCharts derives content metrics for each day
func ComputeContentCharts(records []internal.DailyRecord) ContentChartData {
	sorted := SortByDate(records)
	dates := make([]string, len(sorted))
	periods := make([]Totals, len(sorted))
	for i, r := range sorted {
		dates[i] = r.Date
		periods[i].Add(r)
	}
	return ContentChartData{Dates: dates, ContentMetrics: newContentMetrics(periods)}
}

// ComputeContentWeekly derives content metrics for each ISO week
func ComputeContentWeekly(records []internal.DailyRecord) ContentWeeklyData {
	buckets := BucketByWeek(records)
	weeks := make([]string, len(buckets))
	periods := make([]Totals, len(buckets))
	for i, b := range buckets {
		weeks[i] = b.Anchor
		periods[i] = b.Totals
	}
	return ContentWeeklyData{Weeks: weeks, ContentMetrics: newContentMetrics(periods)}
}

// ComputeContentMonthly derives content metrics for each calendar month
func ComputeContentMonthly(records []internal.DailyRecord) ContentMonthlyData {
	buckets := BucketByMonth(records)
	months := make([]string, len(buckets))
	periods := make([]Totals, len(buckets))
	for i, b := range buckets {
		months[i] = b.Key
		periods[i] = b.Totals
	}
	return ContentMonthlyData{Months: months, ContentMetrics: newContentMetrics(periods)}
}

// ContentSummary holds corpus-wide averages per conversation
type ContentSummary struct {
	AvgUserWords             float64 `json:"avg_user_words" yaml:"avg_user_words"`
	AvgAsstWords             float64 `json:"avg_asst_words" yaml:"avg_asst_words"`
	AvgResponseRatio         float64 `json:"avg_response_ratio" yaml:"avg_response_ratio"`
	PctConversationsWithCode float64 `json:"pct_conversations_with_code" yaml:"pct_conversations_with_code"`
}

// ComputeContentSummary averages word counts over conversations and copies
// the code percentage from code stats
func ComputeContentSummary(summaries []internal.ConversationSummary, code CodeStats) ContentSummary {
	var userWords, asstWords int
	for _, s := range summaries {
		userWords += s.UserWords
		asstWords += s.AsstWords
	}
	cs := ContentSummary{PctConversationsWithCode: code.PctWithCode}
	if n := len(summaries); n > 0 {
		cs.AvgUserWords = internal.Round(float64(userWords)/float64(n), 1)
		cs.AvgAsstWords = internal.Round(float64(asstWords)/float64(n), 1)
	}
	if userWords != 0 {
		cs.AvgResponseRatio = internal.Round(float64(asstWords)/float64(userWords), 2)
	}
	return cs
}
