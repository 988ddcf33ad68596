package addendum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveensiddu/rentledger/internal/logging"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	return NewStore(logging.NewWithWriter(os.Stderr)), filepath.Join(t.TempDir(), "boa1.csv")
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	s, path := testStore(t)

	row, err := s.Append(path, "boa1", "2024-06-15", "CASH RENT", "$600.00")
	require.NoError(t, err)
	assert.Len(t, row.TrID, 10)
	assert.Equal(t, "600", row.Amount)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), Header)

	rows, err := Read(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, row, rows[0])
}

func TestAppend_RejectsDuplicate(t *testing.T) {
	s, path := testStore(t)

	_, err := s.Append(path, "boa1", "2024-06-15", "CASH RENT", "600")
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// Identical content hashes to the same id, regardless of formatting.
	_, err = s.Append(path, "boa1", "2024-06-15", "cash  rent", "$600")
	assert.ErrorIs(t, err, ErrDuplicate)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAppend_RequiresDateAndDescription(t *testing.T) {
	s, path := testStore(t)

	_, err := s.Append(path, "boa1", "", "CASH RENT", "600")
	assert.Error(t, err)
	_, err = s.Append(path, "boa1", "2024-06-15", "  ", "600")
	assert.Error(t, err)
}

func TestAppend_UnparsableAmountStoredEmpty(t *testing.T) {
	s, path := testStore(t)

	row, err := s.Append(path, "boa1", "2024-06-15", "BARTER", "two chickens")
	require.NoError(t, err)
	assert.Equal(t, "", row.Amount)
}

func TestRead_Missing(t *testing.T) {
	_, path := testStore(t)
	rows, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
