package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/haskel/irisd/internal/features"
)

// Sink receives the merged output table of a batch run. A sink either
// stores the whole table or nothing.
type Sink interface {
	Write(ctx context.Context, t *Table) error
	String() string
}

// CSVSink writes the table to a CSV file via a temp file and rename.
type CSVSink struct {
	Path string
}

func (s *CSVSink) Write(_ context.Context, t *Table) error {
	return WriteTable(s.Path, t)
}

func (s *CSVSink) String() string {
	return "csv:" + s.Path
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTableName reports whether name can be used as an SQLite table name
// without quoting surprises.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// SQLiteSink replaces a table in an SQLite database with the output rows.
// The drop, create and inserts share one transaction.
type SQLiteSink struct {
	Path  string
	Table string
}

func (s *SQLiteSink) String() string {
	return "sqlite:" + s.Path + "#" + s.Table
}

func (s *SQLiteSink) Write(ctx context.Context, t *Table) error {
	if !ValidTableName(s.Table) {
		return fmt.Errorf("invalid table name %q", s.Table)
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", s.Path+"?_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open database failed: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.Table); err != nil {
		return fmt.Errorf("drop table failed: %w", err)
	}

	if _, err := tx.ExecContext(ctx, createStatement(s.Table, t.Header)); err != nil {
		return fmt.Errorf("create table failed: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertStatement(s.Table, t.Header))
	if err != nil {
		return fmt.Errorf("prepare insert failed: %w", err)
	}
	defer stmt.Close()

	kinds := columnKinds(t.Header)
	args := make([]any, len(t.Header))
	for r, row := range t.Rows {
		for i, cell := range row {
			args[i] = cellValue(cell, kinds[i])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d failed: %w", r+1, err)
		}
	}

	return tx.Commit()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnKinds(header []string) []string {
	kinds := make([]string, len(header))
	for i, name := range header {
		switch {
		case slices.Contains(features.RawNames[:], name):
			kinds[i] = "REAL"
		case name == PredictionColumn:
			kinds[i] = "INTEGER"
		default:
			kinds[i] = "TEXT"
		}
	}
	return kinds
}

func createStatement(table string, header []string) string {
	kinds := columnKinds(header)
	cols := make([]string, len(header))
	for i, name := range header {
		cols[i] = quoteIdent(name) + " " + kinds[i]
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
}

func insertStatement(table string, header []string) string {
	cols := make([]string, len(header))
	marks := make([]string, len(header))
	for i, name := range header {
		cols[i] = quoteIdent(name)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

// cellValue stores empty cells as NULL and leaves the rest to SQLite type
// affinity.
func cellValue(cell, kind string) any {
	if strings.TrimSpace(cell) == "" && kind != "TEXT" {
		return nil
	}
	return cell
}
