package rollup

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/praveensiddu/rentledger/internal/model"
)

// Annual depreciation rate applied to cost basis, percent.
var depreciationRate = decimal.RequireFromString("3.64")

// propertyExpenseKeys are the categories that count against rental profit.
// Each contributes as a negative magnitude regardless of stored sign.
var propertyExpenseKeys = []string{
	"commissions", "insurance", "proffees", "mortgageinterest",
	"repairs", "tax", "utilities", "depreciation", "hoa",
}

// ReverseEntry traces one contributing row in a property rollup cell.
type ReverseEntry struct {
	Account     string `yaml:"account"`
	Description string `yaml:"description"`
	Amount      string `yaml:"amount"`
}

type propertyRollup struct {
	totals  map[string]map[string]decimal.Decimal
	reverse map[string]map[string][]ReverseEntry
}

func newPropertyRollup() *propertyRollup {
	return &propertyRollup{
		totals:  map[string]map[string]decimal.Decimal{},
		reverse: map[string]map[string][]ReverseEntry{},
	}
}

// fold adds one processed row into the rollup. Only rental rows with a
// transaction type participate; group rows fan out to every member property
// at the full amount.
func (pr *propertyRollup) fold(e *Engine, account string, row model.Row) {
	if strings.ToLower(strings.TrimSpace(row.TaxCategory)) != "rental" {
		return
	}
	ttype := strings.ToLower(strings.TrimSpace(row.TransactionType))
	if ttype == "" {
		return
	}

	props := e.resolveProperties(row)
	if len(props) == 0 {
		return
	}
	amt := row.AmountValue()
	for _, p := range props {
		pr.add(p, ttype, amt)
		if pr.reverse[p] == nil {
			pr.reverse[p] = map[string][]ReverseEntry{}
		}
		pr.reverse[p][ttype] = append(pr.reverse[p][ttype], ReverseEntry{
			Account:     account,
			Description: row.Description,
			Amount:      row.Amount,
		})
	}
}

func (pr *propertyRollup) add(property, key string, v decimal.Decimal) {
	if pr.totals[property] == nil {
		pr.totals[property] = map[string]decimal.Decimal{}
	}
	pr.totals[property][key] = pr.totals[property][key].Add(v)
}

// finalize applies the derived figures: the management company's rent share,
// depreciation, then profit. Every reference property gets the rent
// adjustment and a depreciation figure even if no row touched it.
func (pr *propertyRollup) finalize(e *Engine) {
	hundred := decimal.NewFromInt(100)

	for name, prop := range e.ents.Properties {
		comp, ok := e.ents.Companies[prop.ManagementCompany]
		if !ok {
			continue
		}
		pct := decimal.NewFromInt(int64(comp.RentPercentage))
		rent := decimal.Zero
		if t := pr.totals[name]; t != nil {
			rent = t["rent"]
		}
		pr.add(name, "rent", rent.Mul(hundred.Sub(pct)).Div(hundred).Sub(rent))

		pr.add(name, "depreciation", depreciation(prop, e.cfg.YearInt()))
	}

	for _, totals := range pr.totals {
		profit := totals["rent"]
		for _, key := range propertyExpenseKeys {
			profit = profit.Sub(totals[key].Abs())
		}
		totals["profit"] = profit.Round(2)
	}
}

// depreciation computes the annual depreciation for a property, negative,
// prorated by days owned when the property was purchased in the working
// year.
func depreciation(prop model.Property, year int) decimal.Decimal {
	base := decimal.NewFromInt(int64(prop.Cost + prop.Renovation))
	raw := base.Mul(depreciationRate).Div(decimal.NewFromInt(100)).Round(2)

	if pd, ok := parsePurchaseDate(prop.PurchaseDate); ok && pd.Year() == year {
		yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
		days := int(yearEnd.Sub(pd).Hours()/24) + 1
		if days < 0 {
			days = 0
		}
		raw = raw.Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(365)).Round(2)
	}
	return raw.Neg()
}

var purchaseDateLayouts = []string{
	"2006-01-02", "2006/01/02", "2006.01.02", "1/2/2006", "2-1-2006",
}

func parsePurchaseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
