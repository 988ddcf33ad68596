package model

import "github.com/shopspring/decimal"

// Row is one transaction row flowing through the pipeline. Date and Amount
// are carried as strings: an unparsable statement date is passed through
// verbatim and an unparsable amount is left empty, so neither field can be a
// typed value without losing information.
type Row struct {
	TrID            string
	Date            string // "2006-01-02" when parsed, verbatim otherwise
	Description     string
	Amount          string // signed decimal rendering, empty when unparsable
	RuleID          string // matched rule's order, empty when unmatched
	Comment         string
	TransactionType string
	TaxCategory     string
	Property        string
	Group           string
	Company         string
	OtherEntity     string
	Override        string // non-empty = classification pinned by a human
}

// AmountValue returns the numeric amount, or zero when the field is empty or
// unparsable.
func (r Row) AmountValue() decimal.Decimal {
	d, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ClearClassification resets every rule-derived field.
func (r *Row) ClearClassification() {
	r.RuleID = ""
	r.TransactionType = ""
	r.TaxCategory = ""
	r.Property = ""
	r.Group = ""
	r.Company = ""
	r.OtherEntity = ""
}
