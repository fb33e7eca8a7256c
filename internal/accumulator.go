package internal

// DailyBucket accumulates one calendar day of activity
type DailyBucket struct {
	Date            string
	TotalMessages   int
	TotalChats      int
	MessagesPerChat []int
	UserWords       int
	UserChars       int
	UserMsgs        int
	UserCodeMsgs    int
	AsstWords       int
	AsstChars       int
	AsstMsgs        int
	AsstCodeMsgs    int
}

// DailyAccumulator maps dates to buckets and remembers first-insertion order.
// One accumulator belongs to a single ingestion pass.
type DailyAccumulator struct {
	order   []string
	buckets map[string]*DailyBucket
}

// NewDailyAccumulator creates an empty accumulator
func NewDailyAccumulator() *DailyAccumulator {
	return &DailyAccumulator{buckets: make(map[string]*DailyBucket)}
}

// Bucket returns the bucket for date, creating it if needed
func (a *DailyAccumulator) Bucket(date string) *DailyBucket {
	if b, ok := a.buckets[date]; ok {
		return b
	}
	b := &DailyBucket{Date: date}
	a.buckets[date] = b
	a.order = append(a.order, date)
	return b
}

// Lookup returns the bucket for date without creating it
func (a *DailyAccumulator) Lookup(date string) (*DailyBucket, bool) {
	b, ok := a.buckets[date]
	return b, ok
}

// Len returns the number of buckets
func (a *DailyAccumulator) Len() int {
	return len(a.order)
}

// AddUserMessage records a timed user message on its own date
func (a *DailyAccumulator) AddUserMessage(date string, m ExtractedMessage) {
	b := a.Bucket(date)
	b.TotalMessages++
	b.UserWords += m.WordCount
	b.UserChars += m.CharCount
	b.UserMsgs++
	if m.HasCode {
		b.UserCodeMsgs++
	}
}

// AddAssistantMessage records an assistant message against an existing
// bucket. It reports false and records nothing when no bucket exists.
func (a *DailyAccumulator) AddAssistantMessage(date string, m ExtractedMessage) bool {
	b, ok := a.Lookup(date)
	if !ok {
		return false
	}
	b.AsstWords += m.WordCount
	b.AsstChars += m.CharCount
	b.AsstMsgs++
	if m.HasCode {
		b.AsstCodeMsgs++
	}
	return true
}

// AddChat counts a finished conversation on its start date
func (a *DailyAccumulator) AddChat(date string, messageCount int) {
	b := a.Bucket(date)
	b.TotalChats++
	b.MessagesPerChat = append(b.MessagesPerChat, messageCount)
}

// Records finalizes every bucket in insertion order
func (a *DailyAccumulator) Records() []DailyRecord {
	records := make([]DailyRecord, 0, len(a.order))
	for _, date := range a.order {
		records = append(records, a.buckets[date].Record())
	}
	return records
}

// Record finalizes the bucket
func (b *DailyBucket) Record() DailyRecord {
	avg, peak := 0.0, 0
	if n := len(b.MessagesPerChat); n > 0 {
		sum := 0
		for _, c := range b.MessagesPerChat {
			sum += c
			if c > peak {
				peak = c
			}
		}
		avg = Round(float64(sum)/float64(n), 2)
	}
	return DailyRecord{
		Date:               b.Date,
		TotalMessages:      b.TotalMessages,
		TotalChats:         b.TotalChats,
		AvgMessagesPerChat: avg,
		MaxMessagesInChat:  peak,
		UserWords:          b.UserWords,
		UserChars:          b.UserChars,
		UserMsgs:           b.UserMsgs,
		UserCodeMsgs:       b.UserCodeMsgs,
		AsstWords:          b.AsstWords,
		AsstChars:          b.AsstChars,
		AsstMsgs:           b.AsstMsgs,
		AsstCodeMsgs:       b.AsstCodeMsgs,
	}
}
