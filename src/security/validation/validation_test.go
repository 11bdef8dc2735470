package validation

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileName(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateFileName("history.csv"))
	assert.NoError(t, ValidateFileName("HISTORY.CSV"))
	assert.ErrorIs(t, ValidateFileName("history.xlsx"), ErrInvalidUpload)
	assert.ErrorIs(t, ValidateFileName("history"), ErrInvalidUpload)
}

func TestValidateClientContentType(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateClientContentType("text/csv"))
	assert.NoError(t, ValidateClientContentType("text/plain; charset=utf-8"))
	assert.NoError(t, ValidateClientContentType(""))
	assert.ErrorIs(t, ValidateClientContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"), ErrInvalidUpload)
	assert.ErrorIs(t, ValidateClientContentType("image/png"), ErrInvalidUpload)
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	t.Parallel()

	r := strings.NewReader("Date,Action,Symbol\n01/02/2024,Buy,AAPL\n")
	detected, err := ValidateFileContentByMagicBytes(r)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", detected)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(rest), "Date,"), "reader must be rewound")

	png := bytes.NewReader([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	_, err = ValidateFileContentByMagicBytes(png)
	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "'=SUM(A1)", SanitizeForFormulaInjection("=SUM(A1)"))
	assert.Equal(t, "' @cmd", SanitizeForFormulaInjection(" @cmd"))
	assert.Equal(t, "Buy to Open", SanitizeForFormulaInjection("Buy to Open"))
	assert.Equal(t, "", SanitizeForFormulaInjection(""))
}

func TestCleanQuery(t *testing.T) {
	t.Parallel()

	q, err := CleanQuery("  What is my win rate?\x00 ")
	require.NoError(t, err)
	assert.Equal(t, "What is my win rate?", q)

	_, err = CleanQuery("   ")
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = CleanQuery(strings.Repeat("a", MaxQueryLength+1))
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
