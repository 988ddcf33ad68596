package model

import "path/filepath"

// Property is reference data for one rental property.
type Property struct {
	Name              string `yaml:"property"`
	Cost              int    `yaml:"cost"`
	LandValue         int    `yaml:"landValue"`
	Renovation        int    `yaml:"renovation"`
	LoanClosingCost   int    `yaml:"loanClosingCost"`
	OwnerCount        int    `yaml:"ownerCount"`
	PurchaseDate      string `yaml:"purchaseDate"`
	ManagementCompany string `yaml:"propMgmtComp"`
}

// Company is a management company and the share of rent it retains.
type Company struct {
	Name           string `yaml:"companyname"`
	RentPercentage int    `yaml:"rentPercentage"`
}

// BankAccount ties an account name to its bank brand and the directory tree
// holding its statements, rules and addendum rows.
type BankAccount struct {
	Name              string `yaml:"bankaccountname"`
	BankName          string `yaml:"bankname"`
	StatementLocation string `yaml:"statement_location"`
	Abbreviation      string `yaml:"abbreviation,omitempty"`
}

// StatementPath returns the raw statement export for a year.
func (b BankAccount) StatementPath(year string) string {
	return filepath.Join(b.StatementLocation, year, "bank_stmts", b.Name+".csv")
}

// RulesPath returns the classification rule file for a year.
func (b BankAccount) RulesPath(year string) string {
	return filepath.Join(b.StatementLocation, year, "bank_rules", b.Name+".yaml")
}

// AddendumPath returns the manually entered transaction file for a year.
func (b BankAccount) AddendumPath(year string) string {
	return filepath.Join(b.StatementLocation, year, "addendum", b.Name+".csv")
}

// Group names a set of properties that rules may target collectively.
type Group struct {
	Name       string   `yaml:"groupname"`
	Properties []string `yaml:"propertylist"`
}

// Owner links an owner to the accounts, properties and companies they hold.
type Owner struct {
	Name         string   `yaml:"name"`
	BankAccounts []string `yaml:"bankaccounts"`
	Properties   []string `yaml:"properties"`
	Companies    []string `yaml:"companies"`
	ExportDir    string   `yaml:"export_dir,omitempty"`
}

// TaxCategory is a classification axis value (e.g. "rental").
type TaxCategory struct {
	Category string `yaml:"category"`
}

// TransactionType is a catalog entry for the transaction_type axis.
type TransactionType struct {
	Name string `yaml:"transactiontype"`
}

// BankFormat describes how one bank brand's statement export is laid out.
// Column values are 1-based indices; zero or absent means "not present".
type BankFormat struct {
	Name                  string           `yaml:"name"`
	Delim                 string           `yaml:"delim,omitempty"`
	IgnoreLinesStartswith []string         `yaml:"ignore_lines_startswith,omitempty"`
	IgnoreLinesContains   []string         `yaml:"ignore_lines_contains,omitempty"`
	DateFormat            string           `yaml:"date_format"`
	Columns               []map[string]int `yaml:"columns"`
}

// ColumnMap returns the first non-empty column mapping.
func (f BankFormat) ColumnMap() map[string]int {
	for _, m := range f.Columns {
		if len(m) > 0 {
			return m
		}
	}
	return nil
}

// Delimiter returns the configured field delimiter, defaulting to ",".
func (f BankFormat) Delimiter() string {
	if f.Delim == "" {
		return ","
	}
	return f.Delim
}
