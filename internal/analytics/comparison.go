package analytics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// PeriodStats are chat and message totals for one comparison period. The
// projection fields are only set for the current month and year.
type PeriodStats struct {
	Chats             int      `json:"chats" yaml:"chats"`
	Messages          int      `json:"messages" yaml:"messages"`
	AvgMessages       float64  `json:"avg_messages" yaml:"avg_messages"`
	ElapsedDays       *int     `json:"elapsed_days,omitempty" yaml:"elapsed_days,omitempty"`
	TotalDays         *int     `json:"total_days,omitempty" yaml:"total_days,omitempty"`
	ProjectedChats    *float64 `json:"projected_chats,omitempty" yaml:"projected_chats,omitempty"`
	ProjectedMessages *float64 `json:"projected_messages,omitempty" yaml:"projected_messages,omitempty"`
}

// Comparison contrasts the current month and year with the previous ones
type Comparison struct {
	ThisMonth PeriodStats `json:"this_month" yaml:"this_month"`
	LastMonth PeriodStats `json:"last_month" yaml:"last_month"`
	ThisYear  PeriodStats `json:"this_year" yaml:"this_year"`
	LastYear  PeriodStats `json:"last_year" yaml:"last_year"`
}

func periodStats(records []internal.DailyRecord, prefix string) PeriodStats {
	var t Totals
	for _, r := range records {
		if strings.HasPrefix(r.Date, prefix) {
			t.Add(r)
		}
	}
	return PeriodStats{Chats: t.Chats, Messages: t.Messages, AvgMessages: t.AvgMessages()}
}

// project scales the period totals by total/elapsed days, or by 1 when no
// days have elapsed
func (p *PeriodStats) project(elapsed, total int) {
	factor := 1.0
	if elapsed > 0 {
		factor = float64(total) / float64(elapsed)
	}
	chats := internal.Round(float64(p.Chats)*factor, 2)
	messages := internal.Round(float64(p.Messages)*factor, 2)
	p.ElapsedDays = &elapsed
	p.TotalDays = &total
	p.ProjectedChats = &chats
	p.ProjectedMessages = &messages
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysInYear(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 366
	}
	return 365
}

// ComputeComparison buckets records into this/last month and year relative
// to ref, projecting the current periods to full length
func ComputeComparison(records []internal.DailyRecord, ref time.Time) Comparison {
	year, month := ref.Year(), ref.Month()
	thisMonth := fmt.Sprintf("%04d-%02d", year, int(month))
	lastMonth := fmt.Sprintf("%04d-%02d", year, int(month)-1)
	if month == time.January {
		lastMonth = fmt.Sprintf("%04d-12", year-1)
	}

	cmp := Comparison{
		ThisMonth: periodStats(records, thisMonth),
		LastMonth: periodStats(records, lastMonth),
		ThisYear:  periodStats(records, strconv.Itoa(year)),
		LastYear:  periodStats(records, strconv.Itoa(year-1)),
	}
	cmp.ThisMonth.project(ref.Day(), daysInMonth(year, month))
	cmp.ThisYear.project(ref.YearDay(), daysInYear(year))
	return cmp
}
