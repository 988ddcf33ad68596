// Package config resolves the working-set directories from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config locates the per-year working set. ACCOUNTS_DIR and CURRENT_YEAR are
// mandatory; a missing value aborts startup.
type Config struct {
	AccountsDir string
	Year        string
}

// Load reads .env (if present) and the mandatory environment variables.
func Load() (*Config, error) {
	// Absence of .env is fine; the variables may come from the environment.
	_ = godotenv.Load()

	dir := strings.TrimSpace(os.Getenv("ACCOUNTS_DIR"))
	if dir == "" {
		return nil, fmt.Errorf("missing mandatory environment variable: ACCOUNTS_DIR")
	}
	year := strings.TrimSpace(os.Getenv("CURRENT_YEAR"))
	if year == "" {
		return nil, fmt.Errorf("missing mandatory environment variable: CURRENT_YEAR")
	}
	if _, err := strconv.Atoi(year); err != nil {
		return nil, fmt.Errorf("CURRENT_YEAR %q is not a year", year)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving ACCOUNTS_DIR: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("ACCOUNTS_DIR is not a directory: %s", abs)
	}

	return &Config{AccountsDir: abs, Year: year}, nil
}

// YearInt returns the working year as an integer.
func (c *Config) YearInt() int {
	y, _ := strconv.Atoi(c.Year)
	return y
}

func (c *Config) yearDir() string { return filepath.Join(c.AccountsDir, c.Year) }

// EntitiesDir holds the reference-data YAML files.
func (c *Config) EntitiesDir() string { return filepath.Join(c.yearDir(), "entities") }

// NormalizedDir holds one normalized row file per account.
func (c *Config) NormalizedDir() string { return filepath.Join(c.yearDir(), "normalized") }

// ProcessedDir holds one classified row file per account.
func (c *Config) ProcessedDir() string { return filepath.Join(c.yearDir(), "processed") }

// RentalSummaryDir holds one rollup file per property.
func (c *Config) RentalSummaryDir() string { return filepath.Join(c.yearDir(), "rentalsummary") }

// RentalReverseDir holds the per-property audit index for the rental rollup.
func (c *Config) RentalReverseDir() string {
	return filepath.Join(c.yearDir(), "rentalsummary_reverse")
}

// CompanySummaryDir holds one rollup file per company.
func (c *Config) CompanySummaryDir() string { return filepath.Join(c.yearDir(), "companysummary") }

// RentTrackerPath is the per-property monthly rent table.
func (c *Config) RentTrackerPath() string { return filepath.Join(c.yearDir(), "renttracker.yaml") }

// NormalizedPath returns an account's normalized row file.
func (c *Config) NormalizedPath(account string) string {
	return filepath.Join(c.NormalizedDir(), account+".csv")
}

// ProcessedPath returns an account's processed row file.
func (c *Config) ProcessedPath(account string) string {
	return filepath.Join(c.ProcessedDir(), account+".csv")
}

// EnsureDirs creates the stage output directories.
func (c *Config) EnsureDirs() error {
	for _, d := range []string{c.NormalizedDir(), c.ProcessedDir()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}
	return nil
}
