package campaign

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckColumns(t *testing.T) {
	header := []string{"Country", "Description", "Date Start", "Date End", "Demand"}
	assert.NoError(t, CheckColumns(header, BaseColumns))

	err := CheckColumns([]string{"Country", "Description", "Date Start", "Date End"}, BaseColumns)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"Demand"}, se.Missing)
	assert.Contains(t, se.Error(), "Demand")

	// Missing names come back sorted regardless of the required order.
	err = CheckColumns([]string{"Description"}, []string{"Demand", "Country", "Description"})
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"Country", "Demand"}, se.Missing)
}

func TestRawKeyDistinguishesRows(t *testing.T) {
	a := Record{Country: "DE", Description: "x", DemandRaw: "1,5"}
	b := a
	assert.Equal(t, a.RawKey(), b.RawKey())
	b.DemandRaw = "2,5"
	assert.NotEqual(t, a.RawKey(), b.RawKey())
	// The ID is selection identity, not row content.
	b = a
	b.ID = 42
	assert.Equal(t, a.RawKey(), b.RawKey())
}

func TestDistinctValues(t *testing.T) {
	tbl := &Table{Records: []Record{
		{Country: "Germany", Category: "Electronics"},
		{Country: "France", Category: ""},
		{Country: "Germany", Category: "Home"},
		{Country: " ", Category: "Electronics"},
	}}
	assert.Equal(t, []string{"France", "Germany"}, tbl.Countries())
	assert.Equal(t, []string{"Electronics", "Home"}, tbl.Categories())
}
