package internal

import (
	"sort"
	"time"
)

// Processor turns raw conversations into summaries and daily buckets
type Processor struct {
	loc *time.Location
}

// NewProcessor creates a processor that buckets by wall-clock time in loc.
// A nil location means the process's local zone.
func NewProcessor(loc *time.Location) *Processor {
	if loc == nil {
		loc = time.Local
	}
	return &Processor{loc: loc}
}

// Location returns the zone used for bucketing
func (p *Processor) Location() *time.Location {
	return p.loc
}

// Process runs one full ingestion pass over the export
func (p *Processor) Process(conversations []RawConversation) *Corpus {
	acc := NewDailyAccumulator()
	corpus := &Corpus{
		Conversations: len(conversations),
		Summaries:     []ConversationSummary{},
		Timestamps:    []time.Time{},
	}

	for i := range conversations {
		msgs := ExtractConversation(&conversations[i])
		if len(msgs) == 0 {
			continue
		}
		summary := p.ProcessConversation(msgs, acc, &corpus.Timestamps)
		if summary == nil {
			continue
		}
		summary.ConversationID = conversations[i].ID
		corpus.Summaries = append(corpus.Summaries, *summary)
	}

	if len(conversations) > 0 && len(corpus.Summaries) == 0 {
		LogWarn("Loaded %d conversations but none produced valid summaries. The OpenAI export format may have changed.", len(conversations))
	}

	corpus.Daily = acc.Records()
	return corpus
}

// ProcessConversation folds one conversation's messages into acc and
// appends its timed user messages to timestamps. It returns nil when the
// conversation has no user message with a usable timestamp.
func (p *Processor) ProcessConversation(msgs []ExtractedMessage, acc *DailyAccumulator, timestamps *[]time.Time) *ConversationSummary {
	var (
		start, end  time.Time
		hasStart    bool
		count       int
		userWords   int
		asstWords   int
		languageSet = make(map[string]struct{})
	)

	for _, m := range msgs {
		for _, lang := range m.CodeLanguages {
			languageSet[lang] = struct{}{}
		}

		switch {
		case m.Role == RoleUser && m.CreateTime != nil:
			t, err := LocalTime(*m.CreateTime, p.loc)
			if err != nil {
				LogDebug("skipping user message %s: %v", m.NodeID, err)
				continue
			}
			count++
			userWords += m.WordCount
			*timestamps = append(*timestamps, t)
			if !hasStart {
				start, end, hasStart = t, t, true
			} else {
				if t.Before(start) {
					start = t
				}
				if t.After(end) {
					end = t
				}
			}
			acc.AddUserMessage(FormatDate(t), m)

		case m.Role == RoleAssistant:
			asstWords += m.WordCount
			if hasStart {
				acc.AddAssistantMessage(FormatDate(start), m)
			}
		}
	}

	if count == 0 {
		return nil
	}

	ratio := 0.0
	if userWords > 0 {
		ratio = Round(float64(asstWords)/float64(userWords), 2)
	}

	languages := make([]string, 0, len(languageSet))
	for lang := range languageSet {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	date := FormatDate(start)
	acc.AddChat(date, count)

	return &ConversationSummary{
		Date:            date,
		StartTime:       FormatISO(start),
		EndTime:         FormatISO(end),
		MessageCount:    count,
		DurationMinutes: Round(SecondsBetween(start, end)/60, 2),
		UserWords:       userWords,
		AsstWords:       asstWords,
		ResponseRatio:   ratio,
		CodeLanguages:   languages,
		Start:           start,
		End:             end,
	}
}
