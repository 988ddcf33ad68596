package model

import "strings"

// Rule is one classification rule in a bank account's ordered rule file.
type Rule struct {
	BankAccount     string `yaml:"bankaccountname"`
	TransactionType string `yaml:"transaction_type"`
	Pattern         string `yaml:"pattern_match_logic"`
	TaxCategory     string `yaml:"tax_category"`
	Property        string `yaml:"property,omitempty"`
	Group           string `yaml:"group,omitempty"`
	Company         string `yaml:"company,omitempty"`
	OtherEntity     string `yaml:"otherentity,omitempty"`
	Order           int    `yaml:"order"`
}

// NormalizePattern collapses runs of whitespace and lower-cases a pattern
// expression. Two rules with the same normalized pattern are the same rule.
func NormalizePattern(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Key returns the composite identity of a rule, excluding Order. Upserts and
// deletes match on this key.
func (r Rule) Key() string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return strings.Join([]string{
		norm(r.BankAccount),
		norm(r.TransactionType),
		norm(r.Property),
		norm(r.Group),
		norm(r.Company),
		NormalizePattern(r.Pattern),
		norm(r.TaxCategory),
		strings.TrimSpace(r.OtherEntity),
	}, "|")
}
