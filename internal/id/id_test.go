package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionID_Stable(t *testing.T) {
	a := TransactionID("boa1", "2024-03-01", "RENT PAYMENT", "-1200")
	b := TransactionID("boa1", "2024-03-01", "RENT PAYMENT", "-1200")
	assert.Equal(t, a, b)
	assert.Len(t, a, 10)
}

func TestTransactionID_IgnoresCaseAndWhitespace(t *testing.T) {
	a := TransactionID("boa1", "2024-03-01", "RENT  PAYMENT", "-1200")
	b := TransactionID("BOA1", "2024-03-01", "rent payment", "-1200")
	assert.Equal(t, a, b)
}

func TestTransactionID_DistinctContent(t *testing.T) {
	a := TransactionID("boa1", "2024-03-01", "RENT PAYMENT", "-1200")
	b := TransactionID("boa1", "2024-03-02", "RENT PAYMENT", "-1200")
	c := TransactionID("boa2", "2024-03-01", "RENT PAYMENT", "-1200")
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}
