// Package classify applies an account's ordered rule list to its normalized
// and addendum rows and persists the processed result.
package classify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/praveensiddu/rentledger/internal/addendum"
	"github.com/praveensiddu/rentledger/internal/config"
	"github.com/praveensiddu/rentledger/internal/id"
	"github.com/praveensiddu/rentledger/internal/model"
	"github.com/praveensiddu/rentledger/internal/normalizer"
	"github.com/praveensiddu/rentledger/internal/rules"
)

// Service classifies one account at a time. The processed file is re-derived
// in full on every run; human-entered comments and overrides are the only
// state carried across runs.
type Service struct {
	cfg   *config.Config
	rules *rules.Store
	log   zerolog.Logger
}

// NewService creates a classifier Service.
func NewService(cfg *config.Config, ruleStore *rules.Store, log zerolog.Logger) *Service {
	return &Service{cfg: cfg, rules: ruleStore, log: log}
}

// ClassifyAccount rebuilds the account's processed row set: normalized rows
// plus addendum rows, each run through the rule list (first match by
// ascending order wins), sorted and persisted as a whole.
func (s *Service) ClassifyAccount(acct model.BankAccount) error {
	normRows, err := normalizer.ReadNormalized(s.cfg.NormalizedPath(acct.Name))
	if err != nil {
		return err
	}

	prev, err := ReadProcessed(s.cfg.ProcessedPath(acct.Name))
	if err != nil {
		return err
	}
	prevByID := make(map[string]model.Row, len(prev))
	for _, r := range prev {
		prevByID[r.TrID] = r
	}

	rows := make([]model.Row, 0, len(normRows))
	for _, r := range normRows {
		r.TrID = id.TransactionID(acct.Name, r.Date, r.Description, r.Amount)
		rows = append(rows, r)
	}

	addRows, err := addendum.Read(acct.AddendumPath(s.cfg.Year))
	if err != nil {
		s.log.Warn().Err(err).Str("account", acct.Name).Msg("skipping unreadable addendum file")
	} else {
		rows = append(rows, addRows...)
	}

	ruleList, err := s.rules.List(acct.RulesPath(s.cfg.Year))
	if err != nil {
		return err
	}

	for i := range rows {
		if prevRow, ok := prevByID[rows[i].TrID]; ok {
			rows[i].Comment = prevRow.Comment
			rows[i].Override = prevRow.Override
			if prevRow.Override != "" {
				// Pinned by a human; keep the prior classification untouched.
				rows[i].RuleID = prevRow.RuleID
				rows[i].TransactionType = prevRow.TransactionType
				rows[i].TaxCategory = prevRow.TaxCategory
				rows[i].Property = prevRow.Property
				rows[i].Group = prevRow.Group
				rows[i].Company = prevRow.Company
				rows[i].OtherEntity = prevRow.OtherEntity
				continue
			}
		}
		applyRules(&rows[i], ruleList)
	}

	sortRows(rows)

	if err := s.checkNoDrops(acct.Name, normRows, rows); err != nil {
		return err
	}
	if err := WriteProcessed(s.cfg.ProcessedPath(acct.Name), rows); err != nil {
		return err
	}
	s.log.Info().Str("account", acct.Name).Int("rows", len(rows)).Msg("classified account")
	return nil
}

func applyRules(row *model.Row, ruleList []model.Rule) {
	row.ClearClassification()
	for _, rule := range ruleList {
		if !Matches(rule, *row) {
			continue
		}
		row.RuleID = strconv.Itoa(rule.Order)
		row.TransactionType = rule.TransactionType
		row.TaxCategory = rule.TaxCategory
		row.Property = rule.Property
		row.Group = rule.Group
		row.Company = rule.Company
		row.OtherEntity = rule.OtherEntity
		return
	}
}

// sortRows orders by date, then description, then numeric amount. Unparsable
// amounts compare as zero.
func sortRows(rows []model.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if c := strings.Compare(rows[i].Description, rows[j].Description); c != 0 {
			return c < 0
		}
		return rows[i].AmountValue().LessThan(rows[j].AmountValue())
	})
}

// checkNoDrops rejects a save that would lose a normalized row. The
// normalized set is the source of truth; a processed file missing one of its
// ids must never hit disk.
func (s *Service) checkNoDrops(account string, normRows, out []model.Row) error {
	present := make(map[string]bool, len(out))
	for _, r := range out {
		present[r.TrID] = true
	}
	for _, r := range normRows {
		trID := id.TransactionID(account, r.Date, r.Description, r.Amount)
		if !present[trID] {
			return fmt.Errorf("classify: refusing to drop transaction %s (%s %q) for account %s",
				trID, r.Date, r.Description, account)
		}
	}
	return nil
}
