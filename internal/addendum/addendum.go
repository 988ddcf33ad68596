// Package addendum stores manually entered transactions that have no bank
// statement line, one append-only CSV per account.
package addendum

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/praveensiddu/rentledger/internal/fsutil"
	"github.com/praveensiddu/rentledger/internal/id"
	"github.com/praveensiddu/rentledger/internal/model"
	"github.com/praveensiddu/rentledger/internal/normalizer"
)

// Header is the CSV header for addendum files.
const Header = "tr_id,date,description,amount"

const (
	numFields = 4
	colTrID   = 0
	colDate   = 1
	colDesc   = 2
	colAmount = 3
)

// ErrDuplicate means the entry's content hash already exists in the file, so
// the same transaction was entered twice.
var ErrDuplicate = errors.New("addendum: duplicate transaction")

// Store appends and reads per-account addendum files.
type Store struct {
	log zerolog.Logger
}

// NewStore creates an addendum Store.
func NewStore(log zerolog.Logger) *Store {
	return &Store{log: log}
}

// Append adds one manually entered transaction. The amount is normalized the
// same way statement amounts are, and the id is derived from the content, so
// re-entering identical data is detected and rejected.
func (s *Store) Append(path, account, date, description, amount string) (model.Row, error) {
	date = strings.TrimSpace(date)
	description = strings.TrimSpace(description)
	if date == "" || description == "" {
		return model.Row{}, fmt.Errorf("addendum: date and description are required")
	}

	amt := ""
	if v, ok := normalizer.ParseAmount(amount); ok {
		amt = normalizer.RenderAmount(v)
	}

	row := model.Row{Date: date, Description: description, Amount: amt}
	row.TrID = id.TransactionID(account, row.Date, row.Description, row.Amount)

	existing, err := Read(path)
	if err != nil {
		return model.Row{}, err
	}
	for _, e := range existing {
		if e.TrID == row.TrID {
			return model.Row{}, fmt.Errorf("%w: %s", ErrDuplicate, row.TrID)
		}
	}

	existing = append(existing, row)
	if err := write(path, existing); err != nil {
		return model.Row{}, err
	}
	s.log.Info().Str("path", path).Str("tr_id", row.TrID).Msg("added addendum transaction")
	return row, nil
}

// Read returns the account's addendum rows. A missing file is an empty
// result.
func Read(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening addendum file %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = numFields
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading addendum CSV %s: %w", path, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []model.Row
	for _, rec := range records[1:] {
		rows = append(rows, model.Row{
			TrID:        rec[colTrID],
			Date:        rec[colDate],
			Description: rec[colDesc],
			Amount:      rec[colAmount],
		})
	}
	return rows, nil
}

func write(path string, rows []model.Row) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		rec := make([]string, numFields)
		rec[colTrID] = row.TrID
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
