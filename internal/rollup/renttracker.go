package rollup

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/praveensiddu/rentledger/internal/model"
)

// MonthlyRent is one property's rent income bucketed by calendar month.
type MonthlyRent struct {
	Property string  `yaml:"property"`
	Jan      float64 `yaml:"jan"`
	Feb      float64 `yaml:"feb"`
	Mar      float64 `yaml:"mar"`
	Apr      float64 `yaml:"apr"`
	May      float64 `yaml:"may"`
	Jun      float64 `yaml:"jun"`
	Jul      float64 `yaml:"jul"`
	Aug      float64 `yaml:"aug"`
	Sep      float64 `yaml:"sep"`
	Oct      float64 `yaml:"oct"`
	Nov      float64 `yaml:"nov"`
	Dec      float64 `yaml:"dec"`
}

type rentTracker struct {
	// property -> month (1..12) -> total
	months map[string]map[int]decimal.Decimal
}

func newRentTracker() *rentTracker {
	return &rentTracker{months: map[string]map[int]decimal.Decimal{}}
}

// fold adds one processed row. Only rental rent/tenantfees rows with a
// parsable month and a non-zero amount participate; group rows split the
// amount evenly across the member properties.
func (rt *rentTracker) fold(e *Engine, row model.Row) {
	if strings.ToLower(strings.TrimSpace(row.TaxCategory)) != "rental" {
		return
	}
	ttype := strings.ToLower(strings.TrimSpace(row.TransactionType))
	if ttype != "rent" && ttype != "tenantfees" {
		return
	}
	month, ok := monthOf(row.Date)
	if !ok {
		return
	}
	amt := row.AmountValue()
	if amt.IsZero() {
		return
	}

	props := e.resolveProperties(row)
	if len(props) == 0 {
		return
	}
	share := amt.Div(decimal.NewFromInt(int64(len(props))))
	for _, p := range props {
		if rt.months[p] == nil {
			rt.months[p] = map[int]decimal.Decimal{}
		}
		rt.months[p][month] = rt.months[p][month].Add(share)
	}
}

// monthOf extracts the 1..12 month from an ISO date string.
func monthOf(date string) (int, bool) {
	date = strings.TrimSpace(date)
	if len(date) < 7 || date[4] != '-' {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimPrefix(date[5:7], "0"))
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}

// rows renders the tracker as one record per property, sorted by name.
func (rt *rentTracker) rows() []MonthlyRent {
	names := make([]string, 0, len(rt.months))
	for name := range rt.months {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]MonthlyRent, 0, len(names))
	for _, name := range names {
		m := rt.months[name]
		val := func(i int) float64 { return m[i].Round(2).InexactFloat64() }
		out = append(out, MonthlyRent{
			Property: name,
			Jan:      val(1), Feb: val(2), Mar: val(3), Apr: val(4),
			May: val(5), Jun: val(6), Jul: val(7), Aug: val(8),
			Sep: val(9), Oct: val(10), Nov: val(11), Dec: val(12),
		})
	}
	return out
}

func marshalRentTracker(rows []MonthlyRent) ([]byte, error) {
	data, err := yaml.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshaling rent tracker: %w", err)
	}
	return data, nil
}
