package analytics

import (
	"fmt"
	"time"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// Options tune payload construction
type Options struct {
	TopDaysPerYear int
	TopGapsPerYear int
	// ReferenceDate anchors the period comparison; zero means today in Location
	ReferenceDate time.Time
	// Now stamps generated_at; nil means time.Now
	Now      func() time.Time
	Location *time.Location
	// Dedupe drops repeated conversations before processing
	Dedupe bool
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// wallClock returns the naive wall-clock time of now in loc
func (o Options) wallClock() time.Time {
	t := o.now().In(o.location())
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func (o Options) referenceDate() time.Time {
	if !o.ReferenceDate.IsZero() {
		return internal.TruncateDay(o.ReferenceDate)
	}
	return internal.TruncateDay(o.wallClock())
}

// Payload is the complete dashboard document
type Payload struct {
	GeneratedAt        string             `json:"generated_at" yaml:"generated_at"`
	Summary            Summary            `json:"summary" yaml:"summary"`
	Charts             ChartData          `json:"charts" yaml:"charts"`
	Gaps               []Gap              `json:"gaps" yaml:"gaps"`
	GapStats           GapStats           `json:"gap_stats" yaml:"gap_stats"`
	Monthly            MonthlyData        `json:"monthly" yaml:"monthly"`
	Weekly             WeeklyData         `json:"weekly" yaml:"weekly"`
	Hourly             HourlyData         `json:"hourly" yaml:"hourly"`
	LengthDistribution LengthDistribution `json:"length_distribution" yaml:"length_distribution"`
	Comparison         Comparison         `json:"comparison" yaml:"comparison"`
	ActivityByYear     []YearActivity     `json:"activity_by_year" yaml:"activity_by_year"`
	ContentCharts      ContentChartData   `json:"content_charts" yaml:"content_charts"`
	ContentWeekly      ContentWeeklyData  `json:"content_weekly" yaml:"content_weekly"`
	ContentMonthly     ContentMonthlyData `json:"content_monthly" yaml:"content_monthly"`
	CodeStats          CodeStats          `json:"code_stats" yaml:"code_stats"`
	ContentSummary     ContentSummary     `json:"content_summary" yaml:"content_summary"`
}

// Build derives every dashboard statistic from a processed corpus. The
// gap list is capped per year; GapAnalysis on the corpus gives the full list.
func Build(corpus *internal.Corpus, opts Options) *Payload {
	gapsPerYear := opts.TopGapsPerYear
	if gapsPerYear <= 0 {
		gapsPerYear = DefaultTopGapsPerYear
	}

	gapData := ComputeGapAnalysis(corpus.Timestamps)
	code := ComputeCodeStats(corpus.Summaries)
	counts := make([]int, len(corpus.Summaries))
	for i, s := range corpus.Summaries {
		counts[i] = s.MessageCount
	}

	return &Payload{
		GeneratedAt:        internal.FormatISO(opts.wallClock()),
		Summary:            ComputeSummary(corpus.Summaries, corpus.Daily, opts.TopDaysPerYear),
		Charts:             ComputeCharts(corpus.Daily),
		Gaps:               TopGapsPerYear(gapData.Gaps, gapsPerYear),
		GapStats:           gapData.Stats(),
		Monthly:            ComputeMonthly(corpus.Daily),
		Weekly:             ComputeWeekly(corpus.Daily),
		Hourly:             ComputeHourly(corpus.Timestamps),
		LengthDistribution: ComputeLengthDistribution(counts),
		Comparison:         ComputeComparison(corpus.Daily, opts.referenceDate()),
		ActivityByYear:     ComputeActivityByYear(corpus.Timestamps),
		ContentCharts:      ComputeContentCharts(corpus.Daily),
		ContentWeekly:      ComputeContentWeekly(corpus.Daily),
		ContentMonthly:     ComputeContentMonthly(corpus.Daily),
		CodeStats:          code,
		ContentSummary:     ComputeContentSummary(corpus.Summaries, code),
	}
}

// LoadCorpus reads an export and runs the ingestion pass over it
func LoadCorpus(path string, opts Options) (*internal.Corpus, error) {
	convs, err := internal.LoadConversations(path)
	if err != nil {
		return nil, err
	}
	if opts.Dedupe {
		before := len(convs)
		convs = internal.NewDeduplicator().Deduplicate(convs)
		if dropped := before - len(convs); dropped > 0 {
			internal.LogInfo("dropped %d duplicate conversations", dropped)
		}
	}
	internal.LogDebug("loaded %d conversations from %s", len(convs), path)
	return internal.NewProcessor(opts.location()).Process(convs), nil
}

// BuildFromFile loads, processes and builds the payload in one call
func BuildFromFile(path string, opts Options) (*Payload, error) {
	corpus, err := LoadCorpus(path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}
	return Build(corpus, opts), nil
}
