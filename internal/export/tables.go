package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/analytics"
)

// Table names shared by every flat-file writer
const (
	ChatSummariesTable = "chat_summaries"
	DailyStatsTable    = "daily_stats"
	MessageGapsTable   = "message_gaps"
)

// ColumnKind is the storage class of a column
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindReal
)

// SQLType is the SQLite column type for the kind
func (k ColumnKind) SQLType() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Column names one table column
type Column struct {
	Name string
	Kind ColumnKind
}

// Table is one flat output table. Rows hold typed cells in column order;
// Records holds the same rows as the typed slice for JSON and YAML.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
	Records interface{}
}

// Chat summary and daily stats column subsets written by SaveAnalyticsFiles
var (
	SummaryCSVColumns = []string{"date", "start_time", "end_time", "message_count", "duration_minutes"}
	DailyCSVColumns   = []string{"date", "total_messages", "total_chats", "avg_messages_per_chat", "max_messages_in_chat"}
)

// BuildTables lays out conversation summaries, daily records and gaps as tables
func BuildTables(summaries []internal.ConversationSummary, records []internal.DailyRecord, gaps []analytics.Gap) []Table {
	if summaries == nil {
		summaries = []internal.ConversationSummary{}
	}
	if records == nil {
		records = []internal.DailyRecord{}
	}
	if gaps == nil {
		gaps = []analytics.Gap{}
	}

	chats := Table{
		Name: ChatSummariesTable,
		Columns: []Column{
			{"conversation_id", KindText}, {"date", KindText}, {"start_time", KindText}, {"end_time", KindText},
			{"message_count", KindInteger}, {"duration_minutes", KindReal}, {"user_words", KindInteger},
			{"asst_words", KindInteger}, {"response_ratio", KindReal}, {"code_languages", KindText},
		},
		Records: summaries,
	}
	for _, s := range summaries {
		chats.Rows = append(chats.Rows, []interface{}{
			s.ConversationID, s.Date, s.StartTime, s.EndTime, s.MessageCount, s.DurationMinutes,
			s.UserWords, s.AsstWords, s.ResponseRatio, s.CodeLanguages,
		})
	}

	daily := Table{
		Name: DailyStatsTable,
		Columns: []Column{
			{"date", KindText}, {"total_messages", KindInteger}, {"total_chats", KindInteger},
			{"avg_messages_per_chat", KindReal}, {"max_messages_in_chat", KindInteger},
			{"user_words", KindInteger}, {"user_chars", KindInteger}, {"user_msgs", KindInteger},
			{"user_code_msgs", KindInteger}, {"asst_words", KindInteger}, {"asst_chars", KindInteger},
			{"asst_msgs", KindInteger}, {"asst_code_msgs", KindInteger},
		},
		Records: records,
	}
	for _, r := range records {
		daily.Rows = append(daily.Rows, []interface{}{
			r.Date, r.TotalMessages, r.TotalChats, r.AvgMessagesPerChat, r.MaxMessagesInChat,
			r.UserWords, r.UserChars, r.UserMsgs, r.UserCodeMsgs,
			r.AsstWords, r.AsstChars, r.AsstMsgs, r.AsstCodeMsgs,
		})
	}

	gapTable := Table{
		Name:    MessageGapsTable,
		Columns: []Column{{"start_timestamp", KindText}, {"end_timestamp", KindText}, {"length_days", KindReal}},
		Records: gaps,
	}
	for _, g := range gaps {
		gapTable.Rows = append(gapTable.Rows, []interface{}{g.StartTimestamp, g.EndTimestamp, g.LengthDays})
	}

	return []Table{chats, daily, gapTable}
}

// columnIndexes resolves names to positions; no names means every column
func (t Table) columnIndexes(names []string) ([]int, error) {
	if len(names) == 0 {
		idx := make([]int, len(t.Columns))
		for i := range idx {
			idx[i] = i
		}
		return idx, nil
	}
	idx := make([]int, 0, len(names))
	for _, name := range names {
		found := -1
		for i, c := range t.Columns {
			if c.Name == name {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("table %s has no column %q", t.Name, name)
		}
		idx = append(idx, found)
	}
	return idx, nil
}

// WriteTableCSV writes a header and every row, restricted to columns when given
func WriteTableCSV(w io.Writer, t Table, columns ...string) error {
	idx, err := t.columnIndexes(columns)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(idx))
	for i, c := range idx {
		header[i] = t.Columns[c].Name
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		record := make([]string, len(idx))
		for i, c := range idx {
			record[i] = FormatCell(row[c])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTableJSON writes the typed records as an indented JSON array
func WriteTableJSON(w io.Writer, t Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Records)
}

// WriteTableYAML writes the typed records as a YAML sequence
func WriteTableYAML(w io.Writer, t Table) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(t.Records)
}

// FormatCell renders a cell for CSV output. Integral floats keep a
// trailing ".0" and string lists are joined with ";".
func FormatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return FormatFloat(x)
	case []string:
		return strings.Join(x, ";")
	case bool:
		if x {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(x)
	}
}

// FormatFloat prints the shortest round-tripping form of f, switching to
// exponent notation below 1e-4 and from 1e16 up
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// SaveAnalyticsFiles writes chat_summaries and daily_stats as JSON and CSV
// into dir, plus message_gaps when gaps is non-empty. It returns the paths
// written.
func SaveAnalyticsFiles(dir string, summaries []internal.ConversationSummary, records []internal.DailyRecord, gaps []analytics.Gap) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &internal.ExportError{Format: "analytics", Path: dir, Err: err}
	}

	tables := BuildTables(summaries, records, gaps)
	type output struct {
		file  string
		table Table
		write func(io.Writer, Table) error
	}
	outputs := []output{
		{"chat_summaries.json", tables[0], WriteTableJSON},
		{"daily_stats.json", tables[1], WriteTableJSON},
		{"chat_summaries.csv", tables[0], csvColumns(SummaryCSVColumns)},
		{"daily_stats.csv", tables[1], csvColumns(DailyCSVColumns)},
	}
	if len(gaps) > 0 {
		outputs = append(outputs,
			output{"message_gaps.json", tables[2], WriteTableJSON},
			output{"message_gaps.csv", tables[2], csvColumns(nil)},
		)
	}

	var written []string
	for _, o := range outputs {
		path := filepath.Join(dir, o.file)
		if err := writeFile(path, func(w io.Writer) error { return o.write(w, o.table) }); err != nil {
			return written, &internal.ExportError{Format: filepath.Ext(o.file)[1:], Path: path, Err: err}
		}
		internal.LogDebug("wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}

// WriteTables writes every table into dir in the given format: csv, json,
// yaml, or sqlite (a single chatgpt_stats.db file)
func WriteTables(dir, format string, tables []Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &internal.ExportError{Format: format, Path: dir, Err: err}
	}

	if format == "sqlite" {
		path := filepath.Join(dir, SQLiteFileName)
		if err := WriteSQLite(path, tables); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var write func(io.Writer, Table) error
	switch format {
	case "csv":
		write = csvColumns(nil)
	case "json":
		write = WriteTableJSON
	case "yaml":
		write = WriteTableYAML
	default:
		return nil, fmt.Errorf("unsupported table format: %s (supported: csv, json, yaml, sqlite)", format)
	}

	var written []string
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+"."+format)
		if err := writeFile(path, func(w io.Writer) error { return write(w, t) }); err != nil {
			return written, &internal.ExportError{Format: format, Path: path, Err: err}
		}
		written = append(written, path)
	}
	return written, nil
}

func csvColumns(columns []string) func(io.Writer, Table) error {
	return func(w io.Writer, t Table) error {
		return WriteTableCSV(w, t, columns...)
	}
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
