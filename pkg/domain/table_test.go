package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputRow_Set(t *testing.T) {
	row := NewOutputRow()
	require.NoError(t, row.Set("Metadata_Plate", "P1"))
	require.NoError(t, row.Set("Metadata_Well", "A1"))

	err := row.Set("Metadata_Plate", "P2")
	assert.Error(t, err, "duplicate header must be rejected")

	assert.Equal(t, []string{"Metadata_Plate", "Metadata_Well"}, row.Columns())
	v, ok := row.Get("Metadata_Plate")
	assert.True(t, ok)
	assert.Equal(t, "P1", v)
}

func TestTable_AppendRow(t *testing.T) {
	tbl := NewTable("1", []string{"A", "B"})

	ok := NewOutputRow()
	_ = ok.Set("A", "1")
	_ = ok.Set("B", "2")
	require.NoError(t, tbl.AppendRow(ok))

	ragged := NewOutputRow()
	_ = ragged.Set("A", "1")
	assert.Error(t, tbl.AppendRow(ragged))

	swapped := NewOutputRow()
	_ = swapped.Set("B", "2")
	_ = swapped.Set("A", "1")
	assert.Error(t, tbl.AppendRow(swapped), "column order is part of the header")

	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, tbl.Row(0))
}

func TestTable_FilterAndClone(t *testing.T) {
	tbl := NewTable("5", []string{"Metadata_Well", "X"})
	tbl.Rows = [][]string{{"A1", "1"}, {"B2", "2"}, {"A1", "3"}}

	filtered := tbl.Filter(func(row map[string]string) bool {
		return row["Metadata_Well"] == "A1"
	})
	assert.Equal(t, 2, filtered.Len())
	assert.Equal(t, 3, tbl.Len(), "source table untouched")

	c := tbl.Clone()
	c.Rows[0][1] = "changed"
	assert.Equal(t, "1", tbl.Rows[0][1])
}
