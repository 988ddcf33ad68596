package rollup

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/praveensiddu/rentledger/internal/model"
)

// companyProfitKeys are the categories summed into a company's profit, each
// at its stored sign. The list mirrors the ledger's chart of company
// categories, misspellings included.
var companyProfitKeys = []string{
	"income", "rentpassedtoowners", "bankfees",
	"c_auto", "c_donate", "c_entertainment", "c_internet", "c_license",
	"c_mobile", "c_off_exp", "c_parktoll", "c_phone", "c_website",
	"ignore", "insurane", "insurance", "proffees", "utilities",
}

type companyRollup struct {
	totals map[string]map[string]decimal.Decimal
}

func newCompanyRollup() *companyRollup {
	return &companyRollup{totals: map[string]map[string]decimal.Decimal{}}
}

// fold adds one processed row. Any row carrying a company and a transaction
// type participates, regardless of tax category.
func (cr *companyRollup) fold(row model.Row) {
	comp := strings.ToLower(strings.TrimSpace(row.Company))
	if comp == "" {
		return
	}
	ttype := strings.ToLower(strings.TrimSpace(row.TransactionType))
	if ttype == "" {
		return
	}
	cr.add(comp, ttype, row.AmountValue())
}

func (cr *companyRollup) add(company, key string, v decimal.Decimal) {
	if cr.totals[company] == nil {
		cr.totals[company] = map[string]decimal.Decimal{}
	}
	cr.totals[company][key] = cr.totals[company][key].Add(v)
}

// finalize derives rentpassedtoowners and income from the already-computed
// property rollup, then profit. Must run after the property pass: the rent
// figures it reads are the adjusted per-property values.
func (cr *companyRollup) finalize(e *Engine, props *propertyRollup) {
	hundred := decimal.NewFromInt(100)

	for name := range e.ents.Companies {
		if cr.totals[name] == nil {
			cr.totals[name] = map[string]decimal.Decimal{}
		}
		cr.totals[name]["rentpassedtoowners"] = decimal.Zero
		cr.totals[name]["income"] = decimal.Zero
	}

	for propName, prop := range e.ents.Properties {
		comp := prop.ManagementCompany
		if comp == "" {
			continue
		}
		totals := props.totals[propName]
		if totals == nil {
			continue
		}
		cr.add(comp, "rentpassedtoowners", totals["rent"].Neg())
	}

	for name, totals := range cr.totals {
		comp, ok := e.ents.Companies[name]
		if !ok {
			continue
		}
		pct := decimal.NewFromInt(int64(comp.RentPercentage))
		if pct.GreaterThanOrEqual(hundred) {
			totals["income"] = decimal.Zero
			continue
		}
		totals["income"] = totals["rentpassedtoowners"].Mul(hundred).Div(hundred.Sub(pct)).Round(2)
	}

	for _, totals := range cr.totals {
		profit := decimal.Zero
		for _, key := range companyProfitKeys {
			profit = profit.Add(totals[key])
		}
		totals["profit"] = profit.Round(2)
	}
}
