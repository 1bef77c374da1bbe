// Package campaign holds the in-memory campaign table: one record per data
// row of the source file, with raw column values preserved alongside the
// derived demand and date fields computed at load time.
package campaign

import (
	"sort"
	"strings"
	"time"
)

// Canonical column names of the source table.
const (
	ColCountry      = "Country"
	ColDescription  = "Description"
	ColCampaignName = "Campaign name"
	ColCategoryName = "Category_name"
	ColDateStart    = "Date Start"
	ColDateEnd      = "Date End"
	ColDemand       = "Demand"
)

// BaseColumns are required in every variant of the source file.
var BaseColumns = []string{ColCountry, ColDescription, ColDateStart, ColDateEnd, ColDemand}

// Record is one row of the loaded table. Raw fields keep the file's original
// text; Demand, DateStart and DateEnd are derived once at load and are nil
// when the raw value does not parse. ID is the 0-based data row index and is
// the identity used for row selection.
type Record struct {
	ID           int
	Country      string
	CampaignName string
	Category     string
	Description  string
	DateStartRaw string
	DateEndRaw   string
	DemandRaw    string

	DateStart *time.Time
	DateEnd   *time.Time
	Demand    *float64
}

// RawKey is the full-row identity over the raw column values. Two records
// with the same key are duplicates of the same source row.
func (r Record) RawKey() string {
	return strings.Join([]string{
		r.Country, r.CampaignName, r.Category, r.Description,
		r.DateStartRaw, r.DateEndRaw, r.DemandRaw,
	}, "\x1f")
}

// Table is the campaign table, built once at ingestion. Records and their
// derived fields are never mutated after load; filters hand out copies.
type Table struct {
	Columns []string
	Records []Record
}

// Countries returns the distinct non-empty country values, sorted.
func (t *Table) Countries() []string {
	return t.distinct(func(r Record) string { return r.Country })
}

// Categories returns the distinct non-empty category values, sorted.
func (t *Table) Categories() []string {
	return t.distinct(func(r Record) string { return r.Category })
}

func (t *Table) distinct(field func(Record) string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t.Records {
		v := strings.TrimSpace(field(r))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
