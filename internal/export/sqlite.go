package export

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jnspo1/chatgpt-stats/internal"
)

// SQLiteFileName is the database written by WriteTables in sqlite format
const SQLiteFileName = "chatgpt_stats.db"

// WriteSQLite writes every table into a fresh SQLite database at path
func WriteSQLite(path string, tables []Table) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &internal.ExportError{Format: "sqlite", Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &internal.ExportError{Format: "sqlite", Path: path, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return &internal.ExportError{Format: "sqlite", Path: path, Err: err}
	}
	for _, t := range tables {
		if err := insertTable(tx, t); err != nil {
			_ = tx.Rollback()
			return &internal.ExportError{Format: "sqlite", Path: path, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &internal.ExportError{Format: "sqlite", Path: path, Err: err}
	}
	return nil
}

func insertTable(tx *sql.Tx, t Table) error {
	defs := make([]string, len(t.Columns))
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = fmt.Sprintf("%q %s", c.Name, c.Kind.SQLType())
		names[i] = fmt.Sprintf("%q", c.Name)
		marks[i] = "?"
	}

	create := fmt.Sprintf("CREATE TABLE %q (%s)", t.Name, strings.Join(defs, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("create table %s: %w", t.Name, err)
	}

	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)",
		t.Name, strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", t.Name, err)
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]interface{}, len(row))
		for i, cell := range row {
			if list, ok := cell.([]string); ok {
				args[i] = strings.Join(list, ";")
				continue
			}
			args[i] = cell
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert into %s: %w", t.Name, err)
		}
	}
	return nil
}

// TableInfo describes one table found in a SQLite file
type TableInfo struct {
	Name    string
	Columns []Column
	Types   []string
	Rows    int
	Sample  [][]string
}

// InspectSQLite lists every table in the database at path with its schema,
// row count and up to sample rows rendered as text
func InspectSQLite(path string, sample int) ([]TableInfo, error) {
	db, err := openReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return nil, err
		}
		names = append(names, name)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	infos := make([]TableInfo, 0, len(names))
	for _, name := range names {
		info, err := inspectTable(db, name, sample)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// openReadOnly opens an existing database without the driver creating it
func openReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

func inspectTable(db *sql.DB, name string, sample int) (TableInfo, error) {
	info := TableInfo{Name: name}
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", name)).Scan(&info.Rows); err != nil {
		return info, fmt.Errorf("failed to count rows: %w", err)
	}

	cols, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", name))
	if err != nil {
		return info, fmt.Errorf("failed to read schema: %w", err)
	}
	defer cols.Close()
	for cols.Next() {
		var (
			cid, notNull, pk int
			colName, colType string
			dflt             sql.NullString
		)
		if err := cols.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return info, err
		}
		info.Columns = append(info.Columns, Column{Name: colName, Kind: kindOf(colType)})
		info.Types = append(info.Types, colType)
	}
	if err := cols.Err(); err != nil {
		return info, err
	}
	if sample <= 0 || len(info.Columns) == 0 {
		return info, nil
	}

	data, err := db.Query(fmt.Sprintf("SELECT * FROM %q LIMIT %d", name, sample))
	if err != nil {
		return info, fmt.Errorf("failed to sample rows: %w", err)
	}
	defer data.Close()
	for data.Next() {
		values := make([]interface{}, len(info.Columns))
		ptrs := make([]interface{}, len(values))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := data.Scan(ptrs...); err != nil {
			return info, err
		}
		row := make([]string, len(values))
		for i, v := range values {
			switch x := v.(type) {
			case nil:
				row[i] = "<NULL>"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = FormatCell(x)
			}
		}
		info.Sample = append(info.Sample, row)
	}
	return info, data.Err()
}

func kindOf(sqlType string) ColumnKind {
	switch strings.ToUpper(sqlType) {
	case "INTEGER":
		return KindInteger
	case "REAL":
		return KindReal
	default:
		return KindText
	}
}
