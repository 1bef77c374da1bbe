// Package export covers the row-selection boundary and the delimited export
// of selected rows. Selection is an explicit set of retained record IDs; the
// engine never looks at UI state.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"demandest/internal/campaign"
)

// Retain returns the rows whose ID is in keep, preserving order. A nil set
// means everything stays selected, the default a caller gets without pruning.
func Retain(rows []campaign.Record, keep map[int]bool) []campaign.Record {
	if keep == nil {
		return append([]campaign.Record(nil), rows...)
	}
	out := []campaign.Record{}
	for _, r := range rows {
		if keep[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Union joins both periods' selections, dropping duplicates by full raw-row
// identity. First occurrence wins the position.
func Union(a, b []campaign.Record) []campaign.Record {
	seen := map[string]struct{}{}
	out := []campaign.Record{}
	for _, r := range append(append([]campaign.Record(nil), a...), b...) {
		key := r.RawKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

var exportHeader = []string{
	campaign.ColCountry, campaign.ColCampaignName, campaign.ColCategoryName,
	campaign.ColDescription, campaign.ColDateStart, campaign.ColDateEnd, campaign.ColDemand,
}

// WriteTSV writes rows as a tab-separated file with a UTF-8 BOM, so the
// export opens cleanly in spreadsheet tools. Dates are written in ISO form
// when they parsed, otherwise as the original text. Demand keeps the source
// locale's comma decimal (without currency or thousands separators), so a
// written file loads back to the same values.
func WriteTSV(w io.Writer, rows []campaign.Record) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Country, r.CampaignName, r.Category, r.Description,
			dateText(r.DateStart, r.DateStartRaw),
			dateText(r.DateEnd, r.DateEndRaw),
			demandText(r),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func dateText(t *time.Time, raw string) string {
	if t == nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func demandText(r campaign.Record) string {
	if r.Demand == nil {
		return r.DemandRaw
	}
	return strings.Replace(strconv.FormatFloat(*r.Demand, 'f', -1, 64), ".", ",", 1)
}
