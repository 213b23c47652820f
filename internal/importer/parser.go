package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/money"
)

// separators are tried in order until one yields a header row.
var separators = []rune{';', ',', '\t'}

// Parse reads a CSV export in any common charset. Preamble lines before the
// header row are skipped, as are blank rows after it.
func Parse(r io.Reader) ([]Row, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	for _, sep := range separators {
		rows, err := readAll(data, sep)
		if err != nil {
			continue
		}

		for i, row := range rows {
			if l, ok := matchHeader(row); ok {
				return parseRows(l, rows[i+1:], i+1)
			}
		}
	}

	return nil, ErrNoHeader
}

func readAll(data []byte, sep rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	return reader.ReadAll()
}

// parseRows converts data rows. headerRow is the 0-based index of the header, for error messages.
func parseRows(l layout, rows [][]string, headerRow int) ([]Row, error) {
	var out []Row

	for i, row := range rows {
		line := headerRow + i + 2

		barcode := l.cell(row, colBarcode)
		name := l.cell(row, colName)

		if barcode == "" && name == "" {
			continue
		}

		if barcode == "" {
			return nil, fmt.Errorf("row %d: missing barcode", line)
		}

		if name == "" {
			return nil, fmt.Errorf("row %d: missing name", line)
		}

		parsed := Row{Barcode: barcode, Name: name}

		if s := l.cell(row, colPrice); s != "" {
			price, err := money.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}

			parsed.Price = &price
		}

		out = append(out, parsed)
	}

	return out, nil
}
