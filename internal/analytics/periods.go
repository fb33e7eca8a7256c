package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// Totals holds the summable fields of a daily record
type Totals struct {
	Chats        int
	Messages     int
	UserWords    int
	UserChars    int
	UserMsgs     int
	UserCodeMsgs int
	AsstWords    int
	AsstChars    int
	AsstMsgs     int
	AsstCodeMsgs int
}

// Add folds one daily record into the totals
func (t *Totals) Add(r internal.DailyRecord) {
	t.Chats += r.TotalChats
	t.Messages += r.TotalMessages
	t.UserWords += r.UserWords
	t.UserChars += r.UserChars
	t.UserMsgs += r.UserMsgs
	t.UserCodeMsgs += r.UserCodeMsgs
	t.AsstWords += r.AsstWords
	t.AsstChars += r.AsstChars
	t.AsstMsgs += r.AsstMsgs
	t.AsstCodeMsgs += r.AsstCodeMsgs
}

// AvgMessages is messages per chat rounded to 2 decimals, or 0 with no chats
func (t Totals) AvgMessages() float64 {
	if t.Chats <= 0 {
		return 0
	}
	return internal.Round(float64(t.Messages)/float64(t.Chats), 2)
}

// PeriodBucket is the rollup of the daily records sharing a period key
type PeriodBucket struct {
	Key    string
	Anchor string // Monday for weeks, the key itself for months
	Totals
}

// WeekKey is the ISO year-week key of a date, e.g. 2024-W03
func WeekKey(d time.Time) string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekMonday returns the Monday of the ISO week containing d
func WeekMonday(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return internal.TruncateDay(d).AddDate(0, 0, -offset)
}

// MonthKey is the YYYY-MM prefix of a date key
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// YearKey is the YYYY prefix of a date or timestamp key
func YearKey(s string) string {
	if len(s) < 4 {
		return s
	}
	return s[:4]
}

// SortByDate returns a copy of records ordered by date
func SortByDate(records []internal.DailyRecord) []internal.DailyRecord {
	sorted := make([]internal.DailyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })
	return sorted
}

// BucketByWeek groups records by ISO week, ordered by week key
func BucketByWeek(records []internal.DailyRecord) []PeriodBucket {
	return bucketBy(SortByDate(records), func(r internal.DailyRecord) (string, string, bool) {
		d, err := internal.ParseDate(r.Date)
		if err != nil {
			internal.LogWarn("skipping daily record with bad date %q: %v", r.Date, err)
			return "", "", false
		}
		return WeekKey(d), internal.FormatDate(WeekMonday(d)), true
	})
}

// BucketByMonth groups records by YYYY-MM, ordered by month key
func BucketByMonth(records []internal.DailyRecord) []PeriodBucket {
	return bucketBy(SortByDate(records), func(r internal.DailyRecord) (string, string, bool) {
		m := MonthKey(r.Date)
		return m, m, true
	})
}

func bucketBy(sorted []internal.DailyRecord, keyFn func(internal.DailyRecord) (string, string, bool)) []PeriodBucket {
	index := make(map[string]int)
	var buckets []PeriodBucket
	for _, r := range sorted {
		key, anchor, ok := keyFn(r)
		if !ok {
			continue
		}
		i, seen := index[key]
		if !seen {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, PeriodBucket{Key: key, Anchor: anchor})
		}
		buckets[i].Add(r)
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

// MonthlyData is the monthly activity rollup
type MonthlyData struct {
	Months        []string  `json:"months" yaml:"months"`
	Chats         []int     `json:"chats" yaml:"chats"`
	Messages      []int     `json:"messages" yaml:"messages"`
	AvgMessages   []float64 `json:"avg_messages" yaml:"avg_messages"`
	ChatsAvg3m    []float64 `json:"chats_avg_3m" yaml:"chats_avg_3m"`
	MessagesAvg3m []float64 `json:"messages_avg_3m" yaml:"messages_avg_3m"`
}

// ComputeMonthly rolls daily records up by calendar month
func ComputeMonthly(records []internal.DailyRecord) MonthlyData {
	buckets := BucketByMonth(records)
	data := MonthlyData{
		Months:      make([]string, 0, len(buckets)),
		Chats:       make([]int, 0, len(buckets)),
		Messages:    make([]int, 0, len(buckets)),
		AvgMessages: make([]float64, 0, len(buckets)),
	}
	for _, b := range buckets {
		data.Months = append(data.Months, b.Key)
		data.Chats = append(data.Chats, b.Chats)
		data.Messages = append(data.Messages, b.Messages)
		data.AvgMessages = append(data.AvgMessages, b.AvgMessages())
	}
	data.ChatsAvg3m = RollingAverage(ints(data.Chats), 3)
	data.MessagesAvg3m = RollingAverage(ints(data.Messages), 3)
	return data
}

// WeeklyData is the weekly activity rollup, anchored on Mondays
type WeeklyData struct {
	Weeks             []string  `json:"weeks" yaml:"weeks"`
	Chats             []int     `json:"chats" yaml:"chats"`
	Messages          []int     `json:"messages" yaml:"messages"`
	AvgMessages       []float64 `json:"avg_messages" yaml:"avg_messages"`
	ChatsAvg4w        []float64 `json:"chats_avg_4w" yaml:"chats_avg_4w"`
	ChatsAvg12w       []float64 `json:"chats_avg_12w" yaml:"chats_avg_12w"`
	MessagesAvg4w     []float64 `json:"messages_avg_4w" yaml:"messages_avg_4w"`
	MessagesAvg12w    []float64 `json:"messages_avg_12w" yaml:"messages_avg_12w"`
	AvgMessagesAvg4w  []float64 `json:"avg_messages_avg_4w" yaml:"avg_messages_avg_4w"`
	AvgMessagesAvg12w []float64 `json:"avg_messages_avg_12w" yaml:"avg_messages_avg_12w"`
}

// ComputeWeekly rolls daily records up by ISO week
func ComputeWeekly(records []internal.DailyRecord) WeeklyData {
	buckets := BucketByWeek(records)
	data := WeeklyData{
		Weeks:       make([]string, 0, len(buckets)),
		Chats:       make([]int, 0, len(buckets)),
		Messages:    make([]int, 0, len(buckets)),
		AvgMessages: make([]float64, 0, len(buckets)),
	}
	for _, b := range buckets {
		data.Weeks = append(data.Weeks, b.Anchor)
		data.Chats = append(data.Chats, b.Chats)
		data.Messages = append(data.Messages, b.Messages)
		data.AvgMessages = append(data.AvgMessages, b.AvgMessages())
	}
	chats, messages := ints(data.Chats), ints(data.Messages)
	data.ChatsAvg4w = RollingAverage(chats, 4)
	data.ChatsAvg12w = RollingAverage(chats, 12)
	data.MessagesAvg4w = RollingAverage(messages, 4)
	data.MessagesAvg12w = RollingAverage(messages, 12)
	data.AvgMessagesAvg4w = RollingAverage(data.AvgMessages, 4)
	data.AvgMessagesAvg12w = RollingAverage(data.AvgMessages, 12)
	return data
}

// ChartData holds the daily series shown on the main charts
type ChartData struct {
	Dates         []string    `json:"dates" yaml:"dates"`
	Chats         ChartSeries `json:"chats" yaml:"chats"`
	AvgMessages   ChartSeries `json:"avg_messages" yaml:"avg_messages"`
	TotalMessages ChartSeries `json:"total_messages" yaml:"total_messages"`
}

// ComputeCharts builds the date-ordered daily series
func ComputeCharts(records []internal.DailyRecord) ChartData {
	sorted := SortByDate(records)
	dates := make([]string, len(sorted))
	chats := make([]float64, len(sorted))
	avg := make([]float64, len(sorted))
	total := make([]float64, len(sorted))
	for i, r := range sorted {
		dates[i] = r.Date
		chats[i] = float64(r.TotalChats)
		avg[i] = r.AvgMessagesPerChat
		total[i] = float64(r.TotalMessages)
	}
	return ChartData{
		Dates:         dates,
		Chats:         NewChartSeries(chats),
		AvgMessages:   NewChartSeries(avg),
		TotalMessages: NewChartSeries(total),
	}
}
