package common

import (
	"bytes"
	"testing"
	"time"

	"fjacquet/spendwise/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMappings(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "none", pairs: nil, want: nil},
		{name: "pairs", pairs: []string{"date=Booked On", "amount = Value"}, want: map[string]string{"date": "Booked On", "amount": " Value"}},
		{name: "missing separator", pairs: []string{"date"}, wantErr: true},
		{name: "empty header", pairs: []string{"date="}, wantErr: true},
		{name: "empty field", pairs: []string{"=Date"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMappings(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionalParsers(t *testing.T) {
	d, err := OptionalDecimal("")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = OptionalDecimal("12.5")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = OptionalDecimal("twelve")
	assert.Error(t, err)

	date, err := OptionalDate("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), *date)

	date, err = OptionalDate(" ")
	require.NoError(t, err)
	assert.Nil(t, date)

	_, err = OptionalDate("soon")
	assert.Error(t, err)
}

func TestSignedAndJSON(t *testing.T) {
	tx := models.Transaction{Amount: decimal.RequireFromString("4.5"), Direction: models.Debit}
	assert.Equal(t, "-4.50", Signed(tx))

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"imported": 2}))
	assert.Equal(t, "{\n  \"imported\": 2\n}\n", buf.String())

	assert.Equal(t, "", Deref(nil))
}
