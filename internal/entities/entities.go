// Package entities loads the reference-data YAML files (banks, accounts,
// properties, companies, groups, owners, catalogs) into repository sets that
// the pipeline stages take by reference.
package entities

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/praveensiddu/rentledger/internal/model"
)

var (
	alnumLowerRE           = regexp.MustCompile(`^[a-z0-9]+$`)
	alnumUnderscoreLowerRE = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Set is the loaded reference data for one working year.
type Set struct {
	Properties       map[string]model.Property
	Companies        map[string]model.Company
	BankAccounts     map[string]model.BankAccount
	Groups           map[string]model.Group
	Owners           map[string]model.Owner
	BankFormats      map[string]model.BankFormat
	TaxCategories    map[string]model.TaxCategory
	TransactionTypes map[string]model.TransactionType
}

// Load reads every entity file under dir. A missing file yields an empty map;
// a malformed file is an error (corrupt input is not the same as absence).
func Load(dir string, log zerolog.Logger) (*Set, error) {
	s := &Set{
		Properties:       map[string]model.Property{},
		Companies:        map[string]model.Company{},
		BankAccounts:     map[string]model.BankAccount{},
		Groups:           map[string]model.Group{},
		Owners:           map[string]model.Owner{},
		BankFormats:      map[string]model.BankFormat{},
		TaxCategories:    map[string]model.TaxCategory{},
		TransactionTypes: map[string]model.TransactionType{},
	}

	if err := s.loadCompanies(filepath.Join(dir, "companies.yaml")); err != nil {
		return nil, err
	}
	if err := s.loadProperties(filepath.Join(dir, "properties.yaml"), log); err != nil {
		return nil, err
	}
	if err := s.loadBankAccounts(filepath.Join(dir, "bankaccounts.yaml")); err != nil {
		return nil, err
	}
	if err := s.loadGroups(filepath.Join(dir, "groups.yaml")); err != nil {
		return nil, err
	}
	if err := s.loadOwners(filepath.Join(dir, "owners.yaml")); err != nil {
		return nil, err
	}
	if err := s.loadBankFormats(filepath.Join(dir, "banks.yaml")); err != nil {
		return nil, err
	}
	if err := s.loadTaxCategories(filepath.Join(dir, "tax_category.yaml")); err != nil {
		return nil, err
	}
	if err := s.loadTransactionTypes(filepath.Join(dir, "transaction_types.yaml")); err != nil {
		return nil, err
	}

	log.Info().
		Int("properties", len(s.Properties)).
		Int("companies", len(s.Companies)).
		Int("bank_accounts", len(s.BankAccounts)).
		Int("groups", len(s.Groups)).
		Int("bank_formats", len(s.BankFormats)).
		Msg("loaded entities")
	return s, nil
}

// FormatFor returns the statement format config for an account's bank brand.
func (s *Set) FormatFor(acct model.BankAccount) (model.BankFormat, bool) {
	f, ok := s.BankFormats[strings.ToLower(acct.BankName)]
	return f, ok
}

// AccountNames returns the bank account names in sorted order, so every pass
// over the accounts is deterministic.
func (s *Set) AccountNames() []string {
	names := make([]string, 0, len(s.BankAccounts))
	for name := range s.BankAccounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupProperties expands a group to its member properties, sorted and
// de-duplicated. Unknown groups expand to nothing.
func (s *Set) GroupProperties(group string) []string {
	g, ok := s.Groups[strings.ToLower(strings.TrimSpace(group))]
	if !ok {
		return nil
	}
	return g.Properties
}

// readYAMLList unmarshals path into out. Absence is not an error.
func readYAMLList(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return true, nil
}

func (s *Set) loadCompanies(path string) error {
	var items []model.Company
	if _, err := readYAMLList(path, &items); err != nil {
		return err
	}
	for _, c := range items {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" || !alnumLowerRE.MatchString(name) {
			continue
		}
		c.Name = name
		s.Companies[name] = c
	}
	return nil
}

func (s *Set) loadProperties(path string, log zerolog.Logger) error {
	var items []model.Property
	if _, err := readYAMLList(path, &items); err != nil {
		return err
	}
	for _, p := range items {
		name := strings.ToLower(strings.TrimSpace(p.Name))
		if name == "" || !alnumUnderscoreLowerRE.MatchString(name) {
			continue
		}
		comp := strings.ToLower(strings.TrimSpace(p.ManagementCompany))
		if _, ok := s.Companies[comp]; !ok {
			log.Warn().Str("property", name).Str("company", comp).
				Msg("skipping property with unknown management company")
			continue
		}
		p.Name = name
		p.ManagementCompany = comp
		p.PurchaseDate = strings.TrimSpace(p.PurchaseDate)
		s.Properties[name] = p
	}
	return nil
}

func (s *Set) loadBankAccounts(path string) error {
	var items []model.BankAccount
	if _, err := readYAMLList(path, &items); err != nil {
		return err
	}
	for _, b := range items {
		name := strings.ToLower(strings.TrimSpace(b.Name))
		if name == "" || !alnumUnderscoreLowerRE.MatchString(name) {
			continue
		}
		bank := strings.ToLower(strings.TrimSpace(b.BankName))
		if bank == "" {
			continue
		}
		b.Name = name
		b.BankName = bank
		b.StatementLocation = strings.TrimSpace(b.StatementLocation)
		s.BankAccounts[name] = b
	}
	return nil
}

func (s *Set) loadGroups(path string) error {
	var items []model.Group
	if _, err := readYAMLList(path, &items); err != nil {
		return err
	}
	for _, g := range items {
		name := strings.ToLower(strings.TrimSpace(g.Name))
		if name == "" || !alnumUnderscoreLowerRE.MatchString(name) {
			continue
		}
		g.Name = name
		g.Properties = normalizeList(g.Properties)
		s.Groups[name] = g
	}
	return nil
}

func (s *Set) loadOwners(path string) error {
	var items []model.Owner
	if _, err := readYAMLList(path, &items); err != nil {
		return err
	}
	for _, o := range items {
		name := strings.ToLower(strings.TrimSpace(o.Name))
		if name == "" || !alnumUnderscoreLowerRE.MatchString(name) {
			continue
		}
		o.Name = name
		o.BankAccounts = normalizeList(o.BankAccounts)
		o.Properties = normalizeList(o.Properties)
		o.Companies = normalizeList(o.Companies)
		s.Owners[name] = o
	}
	return nil
}

func (s *Set) loadBankFormats(path string) error {
	var items []model.BankFormat
	found, err := readYAMLList(path, &items)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	for _, f := range items {
		name := strings.ToLower(strings.TrimSpace(f.Name))
		if name == "" {
			continue
		}
		f.Name = name
		s.BankFormats[name] = f
	}
	return nil
}

func (s *Set) loadTaxCategories(path string) error {
	var items []model.TaxCategory
	if _, err := readYAMLList(path, &items); err != nil {
		return err
	}
	for _, t := range items {
		name := strings.ToLower(strings.TrimSpace(t.Category))
		if name == "" || !alnumUnderscoreLowerRE.MatchString(name) {
			continue
		}
		s.TaxCategories[name] = model.TaxCategory{Category: name}
	}
	return nil
}

func (s *Set) loadTransactionTypes(path string) error {
	var items []model.TransactionType
	if _, err := readYAMLList(path, &items); err != nil {
		return err
	}
	for _, t := range items {
		name := strings.ToLower(strings.TrimSpace(t.Name))
		if name == "" || !alnumUnderscoreLowerRE.MatchString(name) {
			continue
		}
		s.TransactionTypes[name] = model.TransactionType{Name: name}
	}
	return nil
}

func normalizeList(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
