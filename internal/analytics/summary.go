package analytics

import (
	"github.com/jnspo1/chatgpt-stats/internal"
)

// DefaultTopDaysPerYear caps the top-day rankings per calendar year
const DefaultTopDaysPerYear = 10

// DefaultTopGapsPerYear caps the gap list per start year
const DefaultTopGapsPerYear = 25

// Summary holds the headline totals and top-day rankings
type Summary struct {
	TotalMessages     int                    `json:"total_messages" yaml:"total_messages"`
	TotalChats        int                    `json:"total_chats" yaml:"total_chats"`
	FirstDate         *string                `json:"first_date" yaml:"first_date"`
	LastDate          *string                `json:"last_date" yaml:"last_date"`
	YearsSpan         float64                `json:"years_span" yaml:"years_span"`
	TopDaysByChats    []internal.DailyRecord `json:"top_days_by_chats" yaml:"top_days_by_chats"`
	TopDaysByMessages []internal.DailyRecord `json:"top_days_by_messages" yaml:"top_days_by_messages"`
}

// ComputeSummary totals messages over daily records, counts conversations,
// and ranks the busiest days keeping at most perYear per calendar year
func ComputeSummary(summaries []internal.ConversationSummary, records []internal.DailyRecord, perYear int) Summary {
	if perYear <= 0 {
		perYear = DefaultTopDaysPerYear
	}
	s := Summary{TotalChats: len(summaries)}
	for _, r := range records {
		s.TotalMessages += r.TotalMessages
	}

	if len(summaries) > 0 {
		lo, hi := summaries[0].Start, summaries[0].Start
		for _, cs := range summaries[1:] {
			if cs.Start.Before(lo) {
				lo = cs.Start
			}
			if cs.Start.After(hi) {
				hi = cs.Start
			}
		}
		first, last := internal.FormatDate(lo), internal.FormatDate(hi)
		s.FirstDate, s.LastDate = &first, &last
		s.YearsSpan = internal.Round(float64(internal.DaysBetween(lo, hi))/365.25, 2)
	}

	s.TopDaysByChats = TopDaysPerYear(SortByChatsDesc(records), perYear)
	s.TopDaysByMessages = TopDaysPerYear(SortByMessagesDesc(records), perYear)
	return s
}
