// Package spreadsheet reads import files (.csv, .xls, .xlsx) into raw rows.
package spreadsheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// maxLegacyRows caps how many rows are read from a legacy .xls workbook.
const maxLegacyRows = 100000

// ErrEmptySheet is returned when a file has no rows at all.
var ErrEmptySheet = errors.New("worksheet is empty")

// Reader implements secondary.RowSource for local files.
type Reader struct{}

var _ secondary.RowSource = (*Reader)(nil)

// NewReader creates a new spreadsheet reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadRows reads every row of the first sheet of the file at path. The
// format is chosen by extension; anything that is not .xls or .xlsx is read
// as CSV.
func (r *Reader) ReadRows(ctx context.Context, path string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rows, err := ReadRowsFrom(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rows, nil
}

// ReadRowsFrom parses an already opened file; filename selects the format.
func ReadRowsFrom(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		rows, err = readLegacy(data)
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(data)
	default:
		rows, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}
	return rows, nil
}

func readLegacy(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}
	return workbook.ReadAllCells(maxLegacyRows), nil
}

func readWorkbook(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}
	return file.GetRows(sheetName)
}

func readCSV(data []byte) ([][]string, error) {
	// Spreadsheet exports often start with a UTF-8 byte order mark.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.Comma = sniffDelimiter(data)
	return r.ReadAll()
}

// sniffDelimiter picks ';' when the header line has more semicolons than
// commas, as locales with decimal commas export that way.
func sniffDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}
