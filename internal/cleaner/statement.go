package cleaner

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fjacquet/rabbit/internal/models"
)

const utf8BOM = "\ufeff"

// Statement is a parsed CSV export: its header and one raw row per record.
type Statement struct {
	// Source is the file the statement was read from, if any.
	Source string
	Header []string
	Rows   []models.RawTransaction
}

// HasColumn reports whether the header contains column.
func (s *Statement) HasColumn(column string) bool {
	for _, h := range s.Header {
		if h == column {
			return true
		}
	}
	return false
}

// ReadStatement parses a UTF-8 CSV export. The first record is the header.
// Short records are tolerated: their missing cells are absent from the row.
func ReadStatement(r io.Reader) (*Statement, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Statement{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading statement header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	stmt := &Statement{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading statement row %d: %w", len(stmt.Rows)+1, err)
		}
		row := make(models.RawTransaction, len(header))
		for i, column := range header {
			if i >= len(record) {
				break
			}
			// first occurrence of a duplicated column wins
			if _, seen := row[column]; !seen {
				row[column] = record[i]
			}
		}
		stmt.Rows = append(stmt.Rows, row)
	}
	return stmt, nil
}

// ReadStatementFile opens and parses the statement at path.
func ReadStatementFile(path string) (*Statement, error) {
	f, err := os.Open(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("error opening statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	stmt, err := ReadStatement(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	stmt.Source = path
	return stmt, nil
}
