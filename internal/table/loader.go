package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amishk599/execsum/internal/model"
)

// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format (want .xlsx, .csv or .tsv)")

// LoadFile opens path and reads it according to its extension.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.InputError{Source: filepath.Base(path), Err: err}
	}
	defer f.Close()
	return Load(f, filepath.Base(path))
}

// Load reads a spreadsheet from r. name is used to pick the format and in errors.
// Every failure is returned as a *model.InputError.
func Load(r io.Reader, name string) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(r)
	case ".csv":
		t, err = ReadDelimited(r, ',')
	case ".tsv":
		t, err = ReadDelimited(r, '\t')
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		var inErr *model.InputError
		if errors.As(err, &inErr) {
			return nil, err
		}
		return nil, &model.InputError{Source: name, Err: err}
	}
	return t, nil
}

// ReadXLSX reads the first worksheet of an Excel workbook. The first row is the header.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return New(rows[0], rows[1:])
}

// ReadDelimited reads a CSV/TSV stream with a header row. A UTF-8 byte-order
// mark on the first header cell is dropped.
func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	return New(rows[0], rows[1:])
}
