package rollup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/praveensiddu/rentledger/internal/classify"
	"github.com/praveensiddu/rentledger/internal/config"
	"github.com/praveensiddu/rentledger/internal/entities"
	"github.com/praveensiddu/rentledger/internal/logging"
	"github.com/praveensiddu/rentledger/internal/model"
)

func testEngine(t *testing.T, ents *entities.Set) (*Engine, *config.Config) {
	t.Helper()
	cfg := &config.Config{AccountsDir: t.TempDir(), Year: "2024"}
	require.NoError(t, cfg.EnsureDirs())
	return NewEngine(cfg, ents, logging.NewWithWriter(os.Stderr)), cfg
}

func rentalEntities() *entities.Set {
	return &entities.Set{
		Properties: map[string]model.Property{
			"maple123": {
				Name:              "maple123",
				Cost:              100000,
				Renovation:        20000,
				PurchaseDate:      "2020-05-01",
				ManagementCompany: "acme",
			},
		},
		Companies: map[string]model.Company{
			"acme": {Name: "acme", RentPercentage: 10},
		},
		BankAccounts: map[string]model.BankAccount{
			"boa1": {Name: "boa1", BankName: "bankofamerica"},
		},
		Groups: map[string]model.Group{},
	}
}

func writeProcessed(t *testing.T, cfg *config.Config, account string, rows []model.Row) {
	t.Helper()
	require.NoError(t, classify.WriteProcessed(cfg.ProcessedPath(account), rows))
}

func readTotals(t *testing.T, path string) map[string]float64 {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]float64
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestRecompute_PropertyAndCompany(t *testing.T) {
	e, cfg := testEngine(t, rentalEntities())
	writeProcessed(t, cfg, "boa1", []model.Row{
		{Date: "2024-03-01", Description: "RENT DEPOSIT", Amount: "-10000",
			TransactionType: "rent", TaxCategory: "rental", Property: "maple123"},
		{Date: "2024-03-12", Description: "ROOF PATCH", Amount: "-500",
			TransactionType: "repairs", TaxCategory: "rental", Property: "maple123"},
		{Date: "2024-04-02", Description: "MONTHLY FEE", Amount: "-25",
			TransactionType: "bankfees", Company: "acme"},
	})

	require.NoError(t, e.Recompute())

	prop := readTotals(t, filepath.Join(cfg.RentalSummaryDir(), "maple123.yaml"))
	// Management company keeps 10%, so -10000 of collected rent nets -9000.
	assert.InDelta(t, -9000, prop["rent"], 0.001)
	assert.InDelta(t, -500, prop["repairs"], 0.001)
	// (100000 + 20000) * 3.64% = 4368, stored negative, unprorated.
	assert.InDelta(t, -4368, prop["depreciation"], 0.001)
	assert.InDelta(t, -13868, prop["profit"], 0.001)

	comp := readTotals(t, filepath.Join(cfg.CompanySummaryDir(), "acme.yaml"))
	assert.InDelta(t, -25, comp["bankfees"], 0.001)
	assert.InDelta(t, 9000, comp["rentpassedtoowners"], 0.001)
	// Gross up by the retained share: 9000 * 100 / 90.
	assert.InDelta(t, 10000, comp["income"], 0.001)
	assert.InDelta(t, 18975, comp["profit"], 0.001)
}

func TestRecompute_ReverseIndex(t *testing.T) {
	e, cfg := testEngine(t, rentalEntities())
	writeProcessed(t, cfg, "boa1", []model.Row{
		{Date: "2024-03-01", Description: "RENT DEPOSIT", Amount: "-10000",
			TransactionType: "rent", TaxCategory: "rental", Property: "maple123"},
	})

	require.NoError(t, e.Recompute())

	data, err := os.ReadFile(filepath.Join(cfg.RentalReverseDir(), "maple123.yaml"))
	require.NoError(t, err)
	var rev map[string][]ReverseEntry
	require.NoError(t, yaml.Unmarshal(data, &rev))

	require.Len(t, rev["rent"], 1)
	assert.Equal(t, ReverseEntry{Account: "boa1", Description: "RENT DEPOSIT", Amount: "-10000"}, rev["rent"][0])
}

func TestRecompute_ProratedDepreciation(t *testing.T) {
	ents := rentalEntities()
	p := ents.Properties["maple123"]
	p.PurchaseDate = "2024-07-01"
	ents.Properties["maple123"] = p

	e, cfg := testEngine(t, ents)
	require.NoError(t, e.Recompute())

	prop := readTotals(t, filepath.Join(cfg.RentalSummaryDir(), "maple123.yaml"))
	// Jul 1 through Dec 31 inclusive is 184 days: 4368 * 184/365 = 2201.95.
	assert.InDelta(t, -2201.95, prop["depreciation"], 0.001)
}

func TestRecompute_GroupFanOutAndRentTracker(t *testing.T) {
	ents := rentalEntities()
	ents.Properties["oak9"] = model.Property{Name: "oak9", ManagementCompany: "acme"}
	ents.Groups["pair"] = model.Group{Name: "pair", Properties: []string{"maple123", "oak9"}}

	e, cfg := testEngine(t, ents)
	writeProcessed(t, cfg, "boa1", []model.Row{
		{Date: "2024-03-01", Description: "COMBINED RENT", Amount: "-1000",
			TransactionType: "rent", TaxCategory: "rental", Group: "pair"},
	})

	require.NoError(t, e.Recompute())

	// The property rollup fans the full amount out to every member.
	maple := readTotals(t, filepath.Join(cfg.RentalSummaryDir(), "maple123.yaml"))
	oak := readTotals(t, filepath.Join(cfg.RentalSummaryDir(), "oak9.yaml"))
	assert.InDelta(t, -900, maple["rent"], 0.001)
	assert.InDelta(t, -900, oak["rent"], 0.001)

	// The rent tracker splits the amount evenly instead.
	data, err := os.ReadFile(cfg.RentTrackerPath())
	require.NoError(t, err)
	var tracker []MonthlyRent
	require.NoError(t, yaml.Unmarshal(data, &tracker))
	require.Len(t, tracker, 2)
	assert.Equal(t, "maple123", tracker[0].Property)
	assert.InDelta(t, -500, tracker[0].Mar, 0.001)
	assert.InDelta(t, -500, tracker[1].Mar, 0.001)
	assert.Zero(t, tracker[0].Apr)
}

func TestRecompute_Idempotent(t *testing.T) {
	e, cfg := testEngine(t, rentalEntities())
	writeProcessed(t, cfg, "boa1", []model.Row{
		{Date: "2024-03-01", Description: "RENT DEPOSIT", Amount: "-10000",
			TransactionType: "rent", TaxCategory: "rental", Property: "maple123"},
	})

	require.NoError(t, e.Recompute())
	first, err := os.ReadFile(filepath.Join(cfg.RentalSummaryDir(), "maple123.yaml"))
	require.NoError(t, err)

	require.NoError(t, e.Recompute())
	second, err := os.ReadFile(filepath.Join(cfg.RentalSummaryDir(), "maple123.yaml"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecompute_RentAdjustmentAppliesWithoutRows(t *testing.T) {
	e, cfg := testEngine(t, rentalEntities())

	require.NoError(t, e.Recompute())

	// No processed rows at all: the property still gets rent, depreciation
	// and profit entries from the reference data alone.
	prop := readTotals(t, filepath.Join(cfg.RentalSummaryDir(), "maple123.yaml"))
	assert.InDelta(t, 0, prop["rent"], 0.001)
	assert.InDelta(t, -4368, prop["depreciation"], 0.001)
	assert.InDelta(t, -4368, prop["profit"], 0.001)
}
