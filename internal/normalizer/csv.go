package normalizer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/praveensiddu/rentledger/internal/fsutil"
	"github.com/praveensiddu/rentledger/internal/model"
)

// Header is the CSV header for normalized row files.
const Header = "date,description,amount"

const (
	numFields = 3
	colDate   = 0
	colDesc   = 1
	colAmount = 2
)

// ReadNormalized reads an account's normalized row file. A missing file is an
// empty result.
func ReadNormalized(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening normalized file %s: %w", path, err)
	}
	defer f.Close()

	return readRows(f)
}

func readRows(r io.Reader) ([]model.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading normalized CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []model.Row
	for _, rec := range records[1:] {
		rows = append(rows, model.Row{
			Date:        rec[colDate],
			Description: rec[colDesc],
			Amount:      rec[colAmount],
		})
	}
	return rows, nil
}

// WriteNormalized replaces an account's normalized row file as a whole.
func WriteNormalized(path string, rows []model.Row) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		rec := make([]string, numFields)
		rec[colDate] = row.Date
		rec[colDesc] = row.Description
		rec[colAmount] = row.Amount
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644)
}
