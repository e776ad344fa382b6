package trades

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/tradeops/traderecon/pkg/errors"
)

// ReadCSV reads a raw table from CSV. The first row is the header; column
// order is free as long as the required columns are present, which
// Normalize verifies.
func ReadCSV(r io.Reader, name string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &errors.SchemaError{Dataset: name, Message: "empty input, header row required"}
	}
	if err != nil {
		return nil, errors.WrapParse(name, "", "header", "", err)
	}

	table := &Table{Name: name, Columns: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WrapParse(name, "", "row", "", err)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// LoadCSV reads and normalizes a CSV file in one step.
func LoadCSV(path, name string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	table, err := ReadCSV(f, name)
	if err != nil {
		return nil, err
	}

	return Normalize(table)
}
