package record

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# TestName nr transfers b/xfer duration
TwowaySgl   0  13107200  4  1.250e+01
TwowaySgl   1  13107200  4  1.300e+01   # slow run
OnewaySgl   0  13107200  4  2.5

OnewaySgl   1  13107200  4  2.75
TwowaySgl   2  13107200  4  12.0
`

func TestParse(t *testing.T) {
	table, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, table, 5)

	assert.Equal(t, Record{
		Name:             "TwowaySgl",
		Nr:               1,
		Transfers:        13107200,
		BytesPerTransfer: 4,
		TransferDuration: 13.0,
	}, table[1])
	assert.Equal(t, "OnewaySgl", table[3].Name)
	assert.Equal(t, 2.75, table[3].TransferDuration)
}

func TestParse_Empty(t *testing.T) {
	table, err := Parse(strings.NewReader("# only a header\n\n"))
	require.NoError(t, err)
	assert.Empty(t, table)
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column string
	}{
		{"too few fields", "a 0 1 2\n", 1, ""},
		{"too many fields", "# h\na 0 1 2 0.5 extra\n", 2, ""},
		{"float in integer column", "a 0 1.5 2 0.5\n", 1, ColTransfers},
		{"bad nr", "a x 1 2 0.5\n", 1, ColNr},
		{"bad size", "a 0 1 big 0.5\n", 1, ColBytesPerTransfer},
		{"bad duration", "a 0 1 2 fast\n", 1, ColTransferDuration},
		{"nan duration", "a 0 1 2 1\nb 0 1 2 NaN\n", 2, ColTransferDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed))

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, tt.column, perr.Column)
		})
	}
}

func TestParse_LongLines(t *testing.T) {
	name := strings.Repeat("n", 100*1024)
	table, err := Parse(strings.NewReader(name + " 0 1 2 0.5\n"))
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, name, table[0].Name)

	input := "a 0 1 2 0.5\n" + strings.Repeat("x", maxLineLength+1) + "\n"
	_, err = Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.dat"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.dat")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, table, 5)
}

func TestGroupByName_SingleName(t *testing.T) {
	var table Table
	for i := 0; i < 7; i++ {
		table = append(table, Record{Name: "only", Nr: i, TransferDuration: float64(i)})
	}

	groups := GroupByName(table)
	require.Len(t, groups, 1)
	assert.Equal(t, "only", groups[0].Name)
	assert.Len(t, groups[0].Records, 7)
}

func TestGroupByName_FirstAppearanceOrder(t *testing.T) {
	table, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	groups := GroupByName(table)
	require.Len(t, groups, 2)
	assert.Equal(t, "TwowaySgl", groups[0].Name)
	assert.Equal(t, "OnewaySgl", groups[1].Name)

	ex, err := Column(ColTransferDuration)
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, 13.0, 12.0}, groups[0].Values(ex))
	assert.Equal(t, []float64{2.5, 2.75}, groups[1].Values(ex))
}

func TestColumn(t *testing.T) {
	rec := Record{Name: "x", Nr: 3, Transfers: 10, BytesPerTransfer: 1024, TransferDuration: 0.25}

	for col, want := range map[string]float64{
		ColNr:               3,
		ColTransfers:        10,
		ColBytesPerTransfer: 1024,
		ColTransferDuration: 0.25,
	} {
		ex, err := Column(col)
		require.NoError(t, err, col)
		assert.Equal(t, want, ex(rec), col)
	}

	for _, col := range []string{ColName, "duration", ""} {
		_, err := Column(col)
		assert.True(t, errors.Is(err, ErrUnknownColumn), col)
	}
}

func TestWrite_ParsesBack(t *testing.T) {
	table := Table{
		{Name: "Sgl_4B", Nr: 0, Transfers: 262144, BytesPerTransfer: 4, TransferDuration: 1.234567891},
		{Name: "Sgl_4B", Nr: 1, Transfers: 262144, BytesPerTransfer: 4, TransferDuration: 0.000012},
		{Name: "Blk_1KiB", Nr: 0, Transfers: 1024, BytesPerTransfer: 1024, TransferDuration: 42},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, table))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(buf.String()), "#"))

	got, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, table, got)
}
