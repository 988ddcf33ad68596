// Package normalizer converts raw bank statement exports into the canonical
// normalized row shape, driven by a per-bank format config.
package normalizer

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/praveensiddu/rentledger/internal/config"
	"github.com/praveensiddu/rentledger/internal/model"
)

const isoDate = "2006-01-02"

// dateFallbacks are tried after the bank's own template.
var dateFallbacks = []string{"1/2/2006", "2006-1-2"}

// Service normalizes statements and persists the per-account row sets.
type Service struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewService creates a normalizer Service.
func NewService(cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// NormalizeAccount parses the account's raw statement export and replaces its
// normalized row set. A missing or unreadable statement yields an empty
// result, never an error: statement files are optional inputs.
func (s *Service) NormalizeAccount(acct model.BankAccount, format model.BankFormat) ([]model.Row, error) {
	path := acct.StatementPath(s.cfg.Year)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug().Str("account", acct.Name).Str("path", path).Msg("no statement file")
		return nil, nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("account", acct.Name).Msg("failed reading statement")
		return nil, nil
	}
	defer f.Close()

	rows := ParseStatement(f, format)
	if len(rows) == 0 {
		s.log.Info().Str("account", acct.Name).Msg("statement produced no rows")
		return nil, nil
	}

	if err := WriteNormalized(s.cfg.NormalizedPath(acct.Name), rows); err != nil {
		return nil, err
	}
	s.log.Info().Str("account", acct.Name).Int("rows", len(rows)).Msg("wrote normalized rows")
	return rows, nil
}

// ParseStatement converts one raw statement into normalized rows. Pure
// function of the input text and the bank format.
func ParseStatement(r io.Reader, format model.BankFormat) []model.Row {
	colmap := format.ColumnMap()
	dateIdx := colmap["date"]
	descIdx := colmap["description"]
	debitIdx := colmap["debit"]
	creditIdx := colmap["credit"]
	if dateIdx == 0 || descIdx == 0 || (debitIdx == 0 && creditIdx == 0) {
		return nil
	}

	var rows []model.Row
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if excluded(line, format) {
			continue
		}

		parts := strings.Split(line, format.Delimiter())
		field := func(idx int) string {
			if idx <= 0 || idx > len(parts) {
				return ""
			}
			return strings.TrimSpace(parts[idx-1])
		}

		date := normalizeDate(field(dateIdx), format.DateFormat)
		desc := field(descIdx)
		if date == "" || desc == "" {
			continue
		}

		amount := ""
		if v, ok := ParseAmount(field(debitIdx)); ok {
			amount = RenderAmount(v.Abs().Neg())
		} else if v, ok := ParseAmount(field(creditIdx)); ok {
			amount = RenderAmount(v.Abs())
		}

		rows = append(rows, model.Row{Date: date, Description: desc, Amount: amount})
	}
	return rows
}

func excluded(line string, format model.BankFormat) bool {
	for _, p := range format.IgnoreLinesStartswith {
		if p != "" && strings.HasPrefix(line, p) {
			return true
		}
	}
	for _, p := range format.IgnoreLinesContains {
		if p != "" && strings.Contains(line, p) {
			return true
		}
	}
	return false
}

// normalizeDate renders a statement date as ISO-8601, trying the bank's own
// template first, then M/D/YYYY, then YYYY-M-D. Unparsable values pass
// through verbatim rather than failing the row.
func normalizeDate(s, bankFormat string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	layouts := make([]string, 0, 3)
	if l := goLayout(bankFormat); l != "" {
		layouts = append(layouts, l)
	}
	layouts = append(layouts, dateFallbacks...)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(isoDate)
		}
	}
	return s
}

// goLayout converts a "M/d/yyyy"-style template to a Go time layout.
func goLayout(f string) string {
	if f == "" {
		return ""
	}
	r := strings.NewReplacer(
		"yyyy", "2006",
		"yy", "06",
		"MM", "01",
		"M", "1",
		"dd", "02",
		"d", "2",
	)
	return r.Replace(strings.TrimSpace(f))
}

// ParseAmount parses a statement amount, stripping currency symbols,
// thousands separators and accounting-style parentheses (which denote a
// negative value).
func ParseAmount(s string) (decimal.Decimal, bool) {
	txt := strings.TrimSpace(s)
	if txt == "" {
		return decimal.Zero, false
	}
	neg := false
	if strings.HasPrefix(txt, "(") && strings.HasSuffix(txt, ")") {
		neg = true
		txt = txt[1 : len(txt)-1]
	}
	txt = strings.NewReplacer("$", "", ",", "", " ", "").Replace(txt)
	d, err := decimal.NewFromString(txt)
	if err != nil {
		return decimal.Zero, false
	}
	if neg {
		d = d.Neg()
	}
	return d, true
}

// RenderAmount formats an amount the way normalized files store it: no
// trailing fractional part for whole values ("100", not "100.00").
func RenderAmount(d decimal.Decimal) string {
	return d.String()
}
