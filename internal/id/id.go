// Package id derives stable short identifiers for transaction rows.
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// trIDLen is the number of hex characters kept from the content hash.
const trIDLen = 10

// TransactionID returns the content-derived id for a transaction row.
// The same account, date, description and amount always hash to the same
// id, which is what makes manual re-entry of a row detectable.
func TransactionID(account, date, description, amount string) string {
	s := strings.ToLower(account + date + description + amount)
	s = strings.Join(strings.Fields(s), "")
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:trIDLen]
}
