// Package rules owns the ordered, per-account classification rule files and
// enforces their two invariants: order is a dense 1..n sequence, and a
// normalized pattern appears at most once per account.
package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/praveensiddu/rentledger/internal/fsutil"
	"github.com/praveensiddu/rentledger/internal/model"
)

// ErrRuleNotFound is returned by Delete and Reorder when no rule matches.
var ErrRuleNotFound = errors.New("rules: rule not found")

// Store reads and mutates per-account rule files.
type Store struct {
	log zerolog.Logger
}

// NewStore creates a rule Store.
func NewStore(log zerolog.Logger) *Store {
	return &Store{log: log}
}

// List returns the account's rules sorted by order. A missing file is an
// empty list.
func (s *Store) List(path string) ([]model.Rule, error) {
	items, err := readRules(path)
	if err != nil {
		return nil, err
	}
	sortByOrder(items)
	return items, nil
}

// Upsert inserts or replaces a rule. If an existing rule in the file has the
// same normalized pattern, its field values are replaced in place and its
// original order kept (the requested order is ignored); multiple pre-existing
// duplicates collapse to the earliest order. Otherwise the rule is inserted
// at the requested order, clamped to [1, n+1]. The file is renumbered to a
// dense 1..n sequence afterwards.
func (s *Store) Upsert(path string, r model.Rule) (model.Rule, error) {
	r = canonical(r)
	if err := validateRule(r); err != nil {
		return model.Rule{}, err
	}

	items, err := readRules(path)
	if err != nil {
		return model.Rule{}, err
	}

	pattNorm := model.NormalizePattern(r.Pattern)
	var kept []model.Rule
	keepOrder := 0
	for _, it := range items {
		if model.NormalizePattern(it.Pattern) == pattNorm {
			if it.Order > 0 && (keepOrder == 0 || it.Order < keepOrder) {
				keepOrder = it.Order
			}
			continue
		}
		kept = append(kept, it)
	}

	if keepOrder > 0 || len(kept) < len(items) {
		// Replacement: the pattern already existed.
		if keepOrder == 0 {
			keepOrder = 1
		}
		r.Order = keepOrder
		kept = append(kept, r)
		renumber(kept)
		if err := writeRules(path, kept); err != nil {
			return model.Rule{}, err
		}
		return r, nil
	}

	// Insert: clamp the requested position and shift the tail.
	n := len(items)
	pos := r.Order
	if pos < 1 {
		pos = 1
	}
	if pos > n+1 {
		pos = n + 1
	}
	for i := range items {
		if items[i].Order >= pos {
			items[i].Order++
		}
	}
	r.Order = pos
	items = append(items, r)
	renumber(items)
	if err := writeRules(path, items); err != nil {
		return model.Rule{}, err
	}
	return r, nil
}

// Delete removes the rule matching key (compared on every field except
// order) and renumbers.
func (s *Store) Delete(path string, key model.Rule) error {
	items, err := readRules(path)
	if err != nil {
		return err
	}

	target := canonical(key).Key()
	var remaining []model.Rule
	for _, it := range items {
		if canonical(it).Key() == target {
			continue
		}
		remaining = append(remaining, it)
	}
	if len(remaining) == len(items) {
		return ErrRuleNotFound
	}
	renumber(remaining)
	return writeRules(path, remaining)
}

// Reorder moves the rule at currentOrder to newOrder (a 1-based position in
// the remaining list) and renumbers.
func (s *Store) Reorder(path string, currentOrder, newOrder int) error {
	if currentOrder < 1 || newOrder < 1 {
		return fmt.Errorf("rules: orders must be >= 1")
	}
	items, err := readRules(path)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrRuleNotFound
	}
	maxOrder := 0
	for _, it := range items {
		if it.Order > maxOrder {
			maxOrder = it.Order
		}
	}
	if newOrder > maxOrder {
		return fmt.Errorf("rules: new order must be between 1 and %d", maxOrder)
	}

	sortByOrder(items)
	idx := -1
	for i, it := range items {
		if it.Order == currentOrder {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRuleNotFound
	}

	target := items[idx]
	items = append(items[:idx], items[idx+1:]...)
	at := newOrder - 1
	if at > len(items) {
		at = len(items)
	}
	items = append(items[:at], append([]model.Rule{target}, items[at:]...)...)
	for i := range items {
		items[i].Order = i + 1
	}
	return writeRules(path, items)
}

// Dedup collapses rules that share a normalized pattern, keeping the smallest
// valid order among the duplicates, then renumbers and rewrites the file. It
// returns the number of rules removed. The result is the authoritative
// on-disk state from that point on.
func (s *Store) Dedup(path string) (int, error) {
	items, err := readRules(path)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	best := map[string]model.Rule{}
	var patternOrder []string
	for _, it := range items {
		key := model.NormalizePattern(it.Pattern)
		cur, seen := best[key]
		if !seen {
			best[key] = it
			patternOrder = append(patternOrder, key)
			continue
		}
		if it.Order > 0 && (cur.Order <= 0 || it.Order < cur.Order) {
			best[key] = it
		}
	}

	merged := make([]model.Rule, 0, len(best))
	for _, key := range patternOrder {
		merged = append(merged, best[key])
	}
	renumber(merged)

	removed := len(items) - len(merged)
	if removed > 0 {
		s.log.Warn().Str("path", path).Int("removed", removed).
			Msg("removed duplicate rule patterns")
	}
	if err := writeRules(path, merged); err != nil {
		return 0, err
	}
	return removed, nil
}

// Validate rejects a rule file in which two rules share a normalized
// pattern. This is a read-only precondition check; a failure must abort the
// run rather than proceed with an ambiguous rule set.
func (s *Store) Validate(path string) error {
	items, err := readRules(path)
	if err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, it := range items {
		key := model.NormalizePattern(it.Pattern)
		if seen[key] {
			return fmt.Errorf("rules: duplicate pattern %q in %s", key, path)
		}
		seen[key] = true
	}
	return nil
}

// canonical lower-cases and trims the identity fields the way the loader
// does, leaving the pattern text and otherentity as entered.
func canonical(r model.Rule) model.Rule {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	r.BankAccount = norm(r.BankAccount)
	r.TransactionType = norm(r.TransactionType)
	r.TaxCategory = norm(r.TaxCategory)
	r.Property = norm(r.Property)
	r.Group = norm(r.Group)
	r.Company = norm(r.Company)
	r.Pattern = strings.TrimSpace(r.Pattern)
	r.OtherEntity = strings.TrimSpace(r.OtherEntity)
	return r
}

func validateRule(r model.Rule) error {
	if r.BankAccount == "" || r.TransactionType == "" || r.Pattern == "" {
		return fmt.Errorf("rules: bankaccountname, transaction_type and pattern_match_logic are required")
	}
	if r.TaxCategory == "" {
		return fmt.Errorf("rules: tax_category is required")
	}
	if r.Property != "" && r.Group != "" {
		return fmt.Errorf("rules: only one of property or group may be set")
	}
	return nil
}

func sortByOrder(items []model.Rule) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
}

func renumber(items []model.Rule) {
	sortByOrder(items)
	for i := range items {
		items[i].Order = i + 1
	}
}

func readRules(path string) ([]model.Rule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules %s: %w", path, err)
	}
	var items []model.Rule
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	return items, nil
}

func writeRules(path string, items []model.Rule) error {
	sortByOrder(items)
	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}
