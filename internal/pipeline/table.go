package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/haskel/irisd/internal/features"
	"github.com/haskel/irisd/internal/storage"
)

const (
	PredictionColumn = "prediction"
	ClassNameColumn  = "prediction_class_name"
)

// Table is a delimited file held in memory. Cells keep their original text
// so the input columns are written back unchanged.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// ReadTable loads a CSV file. A file with no content at all yields a table
// without header or rows.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	return DecodeTable(file)
}

// DecodeTable parses CSV from r.
func DecodeTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	return &Table{Header: header, Rows: rows}, nil
}

// MissingColumns returns the required raw feature columns absent from the
// header.
func (t *Table) MissingColumns() []string {
	var missing []string
	for _, name := range features.RawNames {
		if !slices.Contains(t.Header, name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ReservedColumns lists input columns that clash with the appended
// prediction columns.
func (t *Table) ReservedColumns() []string {
	var reserved []string
	for _, name := range []string{PredictionColumn, ClassNameColumn} {
		if slices.Contains(t.Header, name) {
			reserved = append(reserved, name)
		}
	}
	return reserved
}

// Measurements parses the four raw feature columns of every row. Empty
// cells become NaN; any other unparsable cell is an error.
func (t *Table) Measurements() ([]features.Measurements, error) {
	var index [features.NumRaw]int
	for i, name := range features.RawNames {
		index[i] = slices.Index(t.Header, name)
		if index[i] < 0 {
			return nil, fmt.Errorf("input is missing column %q", name)
		}
	}

	out := make([]features.Measurements, len(t.Rows))
	for r, row := range t.Rows {
		for i, col := range index {
			v, err := parseCell(row[col])
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", r+1, features.RawNames[i], err)
			}
			out[r][i] = v
		}
	}
	return out, nil
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nan, nil
	}
	return strconv.ParseFloat(s, 64)
}

// OutputHeader returns header with the prediction columns appended. An
// input without any header falls back to the raw feature names.
func OutputHeader(header []string) []string {
	if len(header) == 0 {
		header = features.RawNames[:]
	}
	out := make([]string, 0, len(header)+2)
	out = append(out, header...)
	return append(out, PredictionColumn, ClassNameColumn)
}

// WriteTable writes t as CSV to path atomically.
func WriteTable(path string, t *Table) error {
	return storage.WriteAtomic(path, func(w io.Writer) error {
		return EncodeTable(w, t)
	})
}

// EncodeTable writes t as CSV to w.
func EncodeTable(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return err
	}
	return writer.Error()
}
