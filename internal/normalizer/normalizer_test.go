package normalizer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveensiddu/rentledger/internal/model"
)

func boaFormat() model.BankFormat {
	return model.BankFormat{
		Name:                  "bankofamerica",
		DateFormat:            "M/d/yyyy",
		IgnoreLinesStartswith: []string{"Description,"},
		IgnoreLinesContains:   []string{"Beginning balance"},
		Columns: []map[string]int{
			{"date": 1, "description": 2, "debit": 3, "credit": 4},
		},
	}
}

func TestParseAmount(t *testing.T) {
	v, ok := ParseAmount("(1,234.50)")
	require.True(t, ok)
	assert.Equal(t, "-1234.5", RenderAmount(v))

	v, ok = ParseAmount("100")
	require.True(t, ok)
	assert.Equal(t, "100", RenderAmount(v))

	v, ok = ParseAmount("$2,500.00")
	require.True(t, ok)
	assert.Equal(t, "2500", RenderAmount(v))

	_, ok = ParseAmount("")
	assert.False(t, ok)
	_, ok = ParseAmount("n/a")
	assert.False(t, ok)
}

func TestParseStatement(t *testing.T) {
	input := strings.Join([]string{
		"Description,of the export",
		"3/1/2024,RENT PAYMENT UNIT A,,1200.00",
		"3/2/2024,HOME DEPOT #442,85.17,",
		"Beginning balance,ignored,,",
		"3/3/2024,,12.00,",
		",MISSING DATE,5.00,",
		"3/4/2024,FEE REFUND,,(25.00)",
	}, "\n")

	rows := ParseStatement(strings.NewReader(input), boaFormat())
	require.Len(t, rows, 3)

	assert.Equal(t, model.Row{Date: "2024-03-01", Description: "RENT PAYMENT UNIT A", Amount: "1200"}, rows[0])
	// Debit columns always yield negative amounts.
	assert.Equal(t, "-85.17", rows[1].Amount)
	// Parenthesized credit: magnitude taken, sign forced positive.
	assert.Equal(t, "25", rows[2].Amount)
}

func TestParseStatement_UnparsableValuesPassThrough(t *testing.T) {
	input := "sometime in March,COFFEE,not-a-number,\n"
	rows := ParseStatement(strings.NewReader(input), boaFormat())
	require.Len(t, rows, 1)

	assert.Equal(t, "sometime in March", rows[0].Date)
	assert.Equal(t, "", rows[0].Amount)
}

func TestParseStatement_DateFallbacks(t *testing.T) {
	format := boaFormat()
	format.DateFormat = "yyyy.MM.dd"

	input := "2024-3-9,ISO STYLE,,10\n3/10/2024,US STYLE,,10\n"
	rows := ParseStatement(strings.NewReader(input), format)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-03-09", rows[0].Date)
	assert.Equal(t, "2024-03-10", rows[1].Date)
}

func TestParseStatement_MissingColumnConfig(t *testing.T) {
	format := boaFormat()
	format.Columns = []map[string]int{{"date": 1}}

	rows := ParseStatement(strings.NewReader("3/1/2024,X,,10\n"), format)
	assert.Empty(t, rows)
}

func TestReadWriteNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boa1.csv")
	in := []model.Row{
		{Date: "2024-03-01", Description: "RENT, UNIT A", Amount: "1200"},
		{Date: "2024-03-02", Description: "HOME DEPOT", Amount: "-85.17"},
	}
	require.NoError(t, WriteNormalized(path, in))

	out, err := ReadNormalized(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadNormalized_Missing(t *testing.T) {
	rows, err := ReadNormalized(filepath.Join(t.TempDir(), "absent.csv"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
