// Package document turns uploaded spreadsheets and CSV files into the
// structured, column-keyed form the widget pipeline consumes.
package document

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const previewRows = 5

// Row maps a column name to a cell value: string, float64, bool or nil.
type Row = map[string]any

// Structured is the parsed form of one uploaded document. Built once per
// upload and never mutated afterwards.
type Structured struct {
	Fields   []string `json:"fields"`
	RowCount int      `json:"rowCount"`
	Preview  []Row    `json:"preview"`
	FullData []Row    `json:"fullData"`
}

// Empty reports whether nothing usable was extracted. Callers must check
// this after FromUpload: unsupported mime types produce an empty document
// rather than an error.
func (s *Structured) Empty() bool { return len(s.Fields) == 0 }

func emptyDoc() *Structured {
	return &Structured{Fields: []string{}, Preview: []Row{}, FullData: []Row{}}
}

// FromUpload dispatches on the declared mime type. Spreadsheets and CSV are
// parsed; anything else yields an empty document.
func FromUpload(data []byte, mimeType string) (*Structured, error) {
	switch {
	case strings.Contains(mimeType, "excel"), strings.Contains(mimeType, "spreadsheet"):
		return FromXLSX(data)
	case strings.HasSuffix(mimeType, "csv"):
		return FromCSV(data)
	default:
		return emptyDoc(), nil
	}
}

// FromXLSX parses the first worksheet of a binary workbook. The header row
// is the first row with more than 2 non-empty cells, which skips banner and
// title rows above the real header.
func FromXLSX(data []byte) (*Structured, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("document: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return emptyDoc(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("document: read sheet %q: %w", sheets[0], err)
	}

	headerIdx := -1
	for i, row := range rows {
		nonEmpty := 0
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				nonEmpty++
			}
		}
		if nonEmpty > 2 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return emptyDoc(), nil
	}

	fields := make([]string, len(rows[headerIdx]))
	for i, h := range rows[headerIdx] {
		fields[i] = strings.TrimSpace(h)
	}
	return build(fields, rows[headerIdx+1:]), nil
}

// FromCSV parses UTF-8 comma-separated text. The first line is the header.
func FromCSV(data []byte) (*Structured, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimSpace(data)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return emptyDoc(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("document: read csv header: %w", err)
	}
	fields := make([]string, len(header))
	for i, h := range header {
		fields[i] = strings.TrimSpace(h)
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document: read csv row: %w", err)
		}
		records = append(records, rec)
	}
	return build(fields, records), nil
}

func build(fields []string, records [][]string) *Structured {
	fields = dedupeFields(fields)
	doc := &Structured{Fields: fields, RowCount: len(records), Preview: []Row{}, FullData: []Row{}}
	for i, rec := range records {
		row := Row{}
		for j, field := range fields {
			if j < len(rec) {
				row[field] = cellValue(rec[j])
			} else {
				row[field] = nil
			}
		}
		doc.FullData = append(doc.FullData, row)
		if i < previewRows {
			doc.Preview = append(doc.Preview, row)
		}
	}
	return doc
}

// dedupeFields suffixes repeated column names so a later column cannot
// shadow an earlier one in the row maps.
func dedupeFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, len(fields))
	for i, f := range fields {
		name := f
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", f, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}

// cellValue keeps numeric cells numeric so aggregation does not have to
// guess; everything else stays a string, empty cells become nil.
func cellValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return s
}
