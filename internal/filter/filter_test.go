package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandest/internal/campaign"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func window(start, end string) Window {
	return Window{Start: *day(start), End: *day(end)}
}

func sampleTable() *campaign.Table {
	dem := func(v float64) *float64 { return &v }
	return &campaign.Table{Records: []campaign.Record{
		{ID: 0, Country: "Germany", CampaignName: "Spring Push", Category: "Electronics",
			Description: "Summer SALE event", DateStart: day("2025-03-01"), DateEnd: day("2025-03-15"), Demand: dem(100)},
		{ID: 1, Country: "Germany", CampaignName: "Sale Blitz", Category: "Home & Garden",
			Description: "Garden furniture promo", DateStart: day("2025-03-05"), DateEnd: day("2025-03-20"), Demand: dem(200)},
		{ID: 2, Country: "France", CampaignName: "Été Promo", Category: "Electronics",
			Description: "Mid-season sale", DateStart: day("2025-03-01"), DateEnd: day("2025-03-10"), Demand: dem(300)},
		{ID: 3, Country: "Germany", CampaignName: "Broken Dates", Category: "Electronics",
			Description: "sale with unparsable dates", DateStart: nil, DateEnd: nil, Demand: dem(400)},
		{ID: 4, Country: "Germany", CampaignName: "Late Runner", Category: "electronics ",
			Description: "Clearance sale", DateStart: day("2025-06-01"), DateEnd: day("2025-06-30"), Demand: dem(500)},
	}}
}

func ids(rows []campaign.Record) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestFilterCountryIsExact(t *testing.T) {
	tbl := sampleTable()
	got := Filter(tbl, Query{Country: "Germany", Window: window("2025-01-01", "2025-12-31")}, Options{})
	for _, r := range got {
		assert.Equal(t, "Germany", r.Country)
	}
	assert.Empty(t, Filter(tbl, Query{Country: "germany", Window: window("2025-01-01", "2025-12-31")}, Options{}))
	assert.Empty(t, Filter(tbl, Query{Country: "Spain", Window: window("2025-01-01", "2025-12-31")}, Options{}))
}

func TestFilterKeywordCaseInsensitiveSubstring(t *testing.T) {
	tbl := sampleTable()
	got := Filter(tbl, Query{Country: "Germany", Keyword: "sale", Window: window("2025-01-01", "2025-12-31")}, Options{})
	// Row 0 matches in the description, row 1 only in the campaign name,
	// row 3 is out because its dates never parsed.
	assert.Equal(t, []int{0, 1, 4}, ids(got))
}

func TestFilterShortKeywordMatchesAll(t *testing.T) {
	tbl := sampleTable()
	got := Filter(tbl, Query{Country: "Germany", Keyword: "sa", Window: window("2025-01-01", "2025-12-31")}, Options{})
	assert.Equal(t, []int{0, 1, 4}, ids(got))
	got = Filter(tbl, Query{Country: "Germany", Keyword: "", Window: window("2025-01-01", "2025-12-31")}, Options{})
	assert.Equal(t, []int{0, 1, 4}, ids(got))

	// Two characters in three bytes is still below the threshold.
	got = Filter(tbl, Query{Country: "Germany", Keyword: "éa", Window: window("2025-01-01", "2025-12-31")}, Options{})
	assert.Equal(t, []int{0, 1, 4}, ids(got))
}

func TestValidKeywordColumn(t *testing.T) {
	for _, col := range []string{campaign.ColDescription, campaign.ColCampaignName, campaign.ColCategoryName, campaign.ColCountry} {
		assert.Truef(t, ValidKeywordColumn(col), "ValidKeywordColumn(%q)", col)
	}
	assert.False(t, ValidKeywordColumn("Descriptoin"))
	assert.False(t, ValidKeywordColumn(""))
}

func TestFilterKeywordCaseSensitiveOption(t *testing.T) {
	tbl := sampleTable()
	opts := Options{CaseSensitive: true, KeywordColumns: []string{campaign.ColDescription}}
	got := Filter(tbl, Query{Country: "Germany", Keyword: "SALE", Window: window("2025-01-01", "2025-12-31")}, opts)
	assert.Equal(t, []int{0}, ids(got))
}

func TestFilterCategoryModes(t *testing.T) {
	tbl := sampleTable()
	w := window("2025-01-01", "2025-12-31")

	// Substring mode (default) is case-insensitive containment.
	got := Filter(tbl, Query{Country: "Germany", Category: "electro", Window: w}, Options{})
	assert.Equal(t, []int{0, 4}, ids(got))

	// Exact mode ignores case and surrounding whitespace.
	got = Filter(tbl, Query{Country: "Germany", Category: "ELECTRONICS", Window: w}, Options{CategoryMode: CategoryExact})
	assert.Equal(t, []int{0, 4}, ids(got))

	// "All" and empty mean no category restriction.
	got = Filter(tbl, Query{Country: "Germany", Category: "All", Window: w}, Options{})
	assert.Equal(t, []int{0, 1, 4}, ids(got))
	got = Filter(tbl, Query{Country: "Germany", Category: "", Window: w}, Options{})
	assert.Equal(t, []int{0, 1, 4}, ids(got))
}

func TestFilterWindowContainmentInclusive(t *testing.T) {
	tbl := sampleTable()

	// Exact bounds are inside the window.
	got := Filter(tbl, Query{Country: "Germany", Window: window("2025-03-01", "2025-03-15")}, Options{})
	assert.Equal(t, []int{0}, ids(got))

	// A record straddling the window end is out: containment, not overlap.
	got = Filter(tbl, Query{Country: "Germany", Window: window("2025-03-01", "2025-03-18")}, Options{})
	assert.Equal(t, []int{0}, ids(got))

	got = Filter(tbl, Query{Country: "Germany", Window: window("2025-03-01", "2025-03-20")}, Options{})
	assert.Equal(t, []int{0, 1}, ids(got))
}

func TestFilterUnparsedDatesNeverMatch(t *testing.T) {
	tbl := sampleTable()
	got := Filter(tbl, Query{Country: "Germany", Window: window("2000-01-01", "2099-12-31")}, Options{})
	for _, r := range got {
		require.NotNil(t, r.DateStart)
		require.NotNil(t, r.DateEnd)
	}
	assert.NotContains(t, ids(got), 3)
}

func TestFilterDoesNotMutateSource(t *testing.T) {
	tbl := sampleTable()
	w := window("2025-01-01", "2025-12-31")
	got := Filter(tbl, Query{Country: "Germany", Window: w}, Options{})
	require.NotEmpty(t, got)
	got[0].Country = "Mutated"
	got[0].Demand = nil
	assert.Equal(t, "Germany", tbl.Records[0].Country)
	assert.NotNil(t, tbl.Records[0].Demand)

	// Two periods over the same table are independent subsets.
	again := Filter(tbl, Query{Country: "Germany", Window: w}, Options{})
	assert.Equal(t, "Germany", again[0].Country)
}

func TestFilterEmptyResultIsNotAnError(t *testing.T) {
	tbl := sampleTable()
	got := Filter(tbl, Query{Country: "Germany", Window: window("1999-01-01", "1999-12-31")}, Options{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
