package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveensiddu/rentledger/internal/addendum"
	"github.com/praveensiddu/rentledger/internal/config"
	"github.com/praveensiddu/rentledger/internal/id"
	"github.com/praveensiddu/rentledger/internal/logging"
	"github.com/praveensiddu/rentledger/internal/model"
	"github.com/praveensiddu/rentledger/internal/normalizer"
	"github.com/praveensiddu/rentledger/internal/rules"
)

func testService(t *testing.T) (*Service, *config.Config, model.BankAccount) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{AccountsDir: dir, Year: "2024"}
	require.NoError(t, cfg.EnsureDirs())

	acct := model.BankAccount{
		Name:              "boa1",
		BankName:          "bankofamerica",
		StatementLocation: filepath.Join(dir, "statements"),
	}
	log := logging.NewWithWriter(os.Stderr)
	return NewService(cfg, rules.NewStore(log), log), cfg, acct
}

func writeNormalized(t *testing.T, cfg *config.Config, account string, rows []model.Row) {
	t.Helper()
	require.NoError(t, normalizer.WriteNormalized(cfg.NormalizedPath(account), rows))
}

func writeRules(t *testing.T, acct model.BankAccount, cfg *config.Config, items []model.Rule) {
	t.Helper()
	store := rules.NewStore(logging.NewWithWriter(os.Stderr))
	for _, r := range items {
		r.BankAccount = acct.Name
		_, err := store.Upsert(acct.RulesPath(cfg.Year), r)
		require.NoError(t, err)
	}
}

func TestClassifyAccount_FirstMatchWins(t *testing.T) {
	svc, cfg, acct := testService(t)
	writeNormalized(t, cfg, acct.Name, []model.Row{
		{Date: "2024-03-05", Description: "STARBUCKS #123", Amount: "-5.75"},
		{Date: "2024-03-01", Description: "ZELLE FROM TENANT", Amount: "1200"},
	})
	writeRules(t, acct, cfg, []model.Rule{
		{TransactionType: "dining", Pattern: "desc_contains=STARBUCKS", TaxCategory: "personal", Order: 1},
		{TransactionType: "ignore", Pattern: "desc_contains=STARBUCKS #123", TaxCategory: "personal", Order: 2},
		{TransactionType: "rent", Pattern: "desc_contains=ZELLE", TaxCategory: "rental", Property: "maple123", Order: 3},
	})

	require.NoError(t, svc.ClassifyAccount(acct))

	rows, err := ReadProcessed(cfg.ProcessedPath(acct.Name))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Sorted by date: the rent row first.
	assert.Equal(t, "rent", rows[0].TransactionType)
	assert.Equal(t, "maple123", rows[0].Property)
	assert.Equal(t, "3", rows[0].RuleID)

	// Order 1 shadows the more specific order-2 rule.
	assert.Equal(t, "dining", rows[1].TransactionType)
	assert.Equal(t, "1", rows[1].RuleID)
	assert.NotEmpty(t, rows[1].TrID)
}

func TestClassifyAccount_Idempotent(t *testing.T) {
	svc, cfg, acct := testService(t)
	writeNormalized(t, cfg, acct.Name, []model.Row{
		{Date: "2024-03-05", Description: "STARBUCKS #123", Amount: "-5.75"},
		{Date: "2024-03-05", Description: "STARBUCKS #123", Amount: "-9.25"},
	})
	writeRules(t, acct, cfg, []model.Rule{
		{TransactionType: "dining", Pattern: "desc_contains=STARBUCKS", TaxCategory: "personal", Order: 1},
	})

	require.NoError(t, svc.ClassifyAccount(acct))
	first, err := os.ReadFile(cfg.ProcessedPath(acct.Name))
	require.NoError(t, err)

	require.NoError(t, svc.ClassifyAccount(acct))
	second, err := os.ReadFile(cfg.ProcessedPath(acct.Name))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestClassifyAccount_MergesAddendum(t *testing.T) {
	svc, cfg, acct := testService(t)
	writeNormalized(t, cfg, acct.Name, []model.Row{
		{Date: "2024-03-01", Description: "ZELLE FROM TENANT", Amount: "1200"},
	})

	store := addendum.NewStore(logging.NewWithWriter(os.Stderr))
	_, err := store.Append(acct.AddendumPath(cfg.Year), acct.Name, "2024-06-15", "CASH RENT", "600")
	require.NoError(t, err)

	require.NoError(t, svc.ClassifyAccount(acct))

	rows, err := ReadProcessed(cfg.ProcessedPath(acct.Name))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CASH RENT", rows[1].Description)
}

func TestClassifyAccount_OverrideSurvivesReclassify(t *testing.T) {
	svc, cfg, acct := testService(t)
	norm := []model.Row{
		{Date: "2024-03-05", Description: "STARBUCKS #123", Amount: "-5.75"},
	}
	writeNormalized(t, cfg, acct.Name, norm)
	writeRules(t, acct, cfg, []model.Rule{
		{TransactionType: "dining", Pattern: "desc_contains=STARBUCKS", TaxCategory: "personal", Order: 1},
	})

	require.NoError(t, svc.ClassifyAccount(acct))
	rows, err := ReadProcessed(cfg.ProcessedPath(acct.Name))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// A human pins the row to a different classification.
	rows[0].TransactionType = "c_off_exp"
	rows[0].Comment = "office supplies, not coffee"
	rows[0].Override = "yes"
	require.NoError(t, WriteProcessed(cfg.ProcessedPath(acct.Name), rows))

	require.NoError(t, svc.ClassifyAccount(acct))
	rows, err = ReadProcessed(cfg.ProcessedPath(acct.Name))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c_off_exp", rows[0].TransactionType)
	assert.Equal(t, "office supplies, not coffee", rows[0].Comment)
	assert.Equal(t, "yes", rows[0].Override)
}

func TestCheckNoDrops(t *testing.T) {
	svc, _, _ := testService(t)
	norm := []model.Row{{Date: "2024-03-01", Description: "RENT", Amount: "1200"}}

	withID := norm[0]
	withID.TrID = id.TransactionID("boa1", withID.Date, withID.Description, withID.Amount)
	require.NoError(t, svc.checkNoDrops("boa1", norm, []model.Row{withID}))

	err := svc.checkNoDrops("boa1", norm, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to drop")
}
