// Package file reads the alumni table from a local CSV or Excel workbook.
package file

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"alumni/internal/core"
	"alumni/internal/log"
	"alumni/internal/sources"
)

// Reader loads records from a .csv or .xlsx file chosen by extension.
type Reader struct {
	path     string
	fileType string // "csv" or "xlsx"
	sheet    string
	logger   *log.Logger
}

var _ sources.RecordReader = (*Reader)(nil)

// New creates a reader for path. sheet selects the worksheet of an Excel
// file; empty means the first sheet. It is ignored for CSV. A nil logger
// discards output.
func New(path, sheet string, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.Discard()
	}
	ext := strings.ToLower(filepath.Ext(path))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xlsm" {
		fileType = "xlsx"
	}
	return &Reader{path: path, fileType: fileType, sheet: sheet, logger: logger.WithComponent(log.ComponentSource)}
}

// Describe implements sources.Describer
func (r *Reader) Describe() string {
	return r.fileType + ":" + r.path
}

// ReadRecords implements sources.RecordReader
func (r *Reader) ReadRecords(ctx context.Context) ([]core.AlumniRecord, error) {
	if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.path)
	}

	start := time.Now()
	var (
		records []core.AlumniRecord
		err     error
	)
	switch r.fileType {
	case "xlsx":
		records, err = r.readExcel()
	default:
		records, err = r.readCSV()
	}
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "Records loaded from file",
		"path", r.path,
		"type", r.fileType,
		log.FieldRecords, len(records),
		log.FieldDuration, time.Since(start).Milliseconds())
	return records, nil
}

func (r *Reader) readCSV() ([]core.AlumniRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// ParseCSV reads a header row followed by data rows. Rows may have a varying
// number of fields; fully blank rows are skipped.
func ParseCSV(in io.Reader) ([]core.AlumniRecord, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, core.ErrEmptyHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	schema, err := core.NewSchema(header)
	if err != nil {
		return nil, err
	}

	var records []core.AlumniRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if core.IsBlank(row) {
			continue
		}
		records = append(records, schema.Record(row))
	}
	return records, nil
}

func (r *Reader) readExcel() ([]core.AlumniRecord, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("excel file has no sheets: %s", r.path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return ParseRows(rows)
}

// ParseRows converts a matrix whose first row is the header.
func ParseRows(rows [][]string) ([]core.AlumniRecord, error) {
	if len(rows) == 0 {
		return nil, core.ErrEmptyHeader
	}
	schema, err := core.NewSchema(rows[0])
	if err != nil {
		return nil, err
	}
	records := make([]core.AlumniRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if core.IsBlank(row) {
			continue
		}
		records = append(records, schema.Record(row))
	}
	return records, nil
}
