package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePattern(t *testing.T) {
	assert.Equal(t, "desc_contains=rent a", NormalizePattern("  DESC_CONTAINS=RENT   A "))
	assert.Equal(t, NormalizePattern("desc_contains=x"), NormalizePattern("Desc_Contains=X"))
}

func TestRuleKey_IgnoresOrder(t *testing.T) {
	a := Rule{BankAccount: "boa1", TransactionType: "rent", Pattern: "desc_contains=X", TaxCategory: "rental", Order: 1}
	b := a
	b.Order = 9
	assert.Equal(t, a.Key(), b.Key())

	b.TaxCategory = "personal"
	assert.NotEqual(t, a.Key(), b.Key())
}
