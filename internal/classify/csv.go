package classify

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

// Header is the CSV header for processed row files.
const Header = "tr_id,date,description,amount,rule_id,comment,transaction_type,tax_category,property,group,company,otherentity,override"

const (
	numFields = 13

	colTrID = iota - 1
	colDate
	colDesc
	colAmount
	colRuleID
	colComment
	colTType
	colTaxCat
	colProperty
	colGroup
	colCompany
	colOtherEntity
	colOverride
)

// ReadProcessed reads an account's processed row file. A missing file is an
// empty result.
func ReadProcessed(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening processed file %s: %w", path, err)
	}
	defer f.Close()

	return readRows(f)
}

func readRows(r io.Reader) ([]model.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading processed CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []model.Row
	for _, rec := range records[1:] {
		rows = append(rows, model.Row{
			TrID:            rec[colTrID],
			Date:            rec[colDate],
			Description:     rec[colDesc],
			Amount:          rec[colAmount],
			RuleID:          rec[colRuleID],
			Comment:         rec[colComment],
			TransactionType: rec[colTType],
			TaxCategory:     rec[colTaxCat],
			Property:        rec[colProperty],
			Group:           rec[colGroup],
			Company:         rec[colCompany],
			OtherEntity:     rec[colOtherEntity],
			Override:        rec[colOverride],
		})
	}
	return rows, nil
}

// WriteProcessed replaces an account's processed row file as a whole.
func WriteProcessed(path string, rows []model.Row) error {
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
		rec[colRuleID] = row.RuleID
		rec[colComment] = row.Comment
		rec[colTType] = row.TransactionType
		rec[colTaxCat] = row.TaxCategory
		rec[colProperty] = row.Property
		rec[colGroup] = row.Group
		rec[colCompany] = row.Company
		rec[colOtherEntity] = row.OtherEntity
		rec[colOverride] = row.Override
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
