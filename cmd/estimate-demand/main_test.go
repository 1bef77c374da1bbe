package main

import (
	"math"
	"path/filepath"
	"testing"

	"demandest/internal/campaign"
	"demandest/internal/config"
	"demandest/internal/filter"
	"demandest/internal/ingest"
)

func testdataPath(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9
}

func loadFixture(t *testing.T) *campaign.Table {
	t.Helper()
	table, err := ingest.LoadFile(testdataPath("campaigns_sample.tsv"), config.Default().LoadOptions())
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return table
}

func fixtureParams() estimateParams {
	return estimateParams{
		Country: "Germany",
		Keyword: "sale",
		Earlier: mustTestWindow("01.01.2025", "31.01.2025"),
		Later:   mustTestWindow("01.06.2025", "30.06.2025"),
		Growth:  10,
	}
}

func mustTestWindow(start, end string) filter.Window {
	s := ingest.ParseDate(start)
	e := ingest.ParseDate(end)
	if s == nil || e == nil {
		panic("bad test window " + start + ".." + end)
	}
	return filter.Window{Start: *s, End: *e}
}

func TestBuildReportBlendsPeriods(t *testing.T) {
	table := loadFixture(t)
	params := fixtureParams()
	params.DropEarlier = map[int]bool{7: true} // deselect the duplicate row

	report, earlierSel, laterSel := buildReport(table, filter.Options{}, params)

	if report.Earlier.MatchedRows != 4 {
		t.Fatalf("expected 4 earlier matches, got %d", report.Earlier.MatchedRows)
	}
	if report.Earlier.SelectedRows != 3 || len(earlierSel) != 3 {
		t.Fatalf("expected 3 selected earlier rows, got %d", report.Earlier.SelectedRows)
	}
	if report.Earlier.MissingDemand != 1 {
		t.Fatalf("expected 1 earlier row with missing demand, got %d", report.Earlier.MissingDemand)
	}
	if report.Earlier.MeanDemand == nil || !almostEqual(*report.Earlier.MeanDemand, 200) {
		t.Fatalf("expected earlier mean 200, got %v", report.Earlier.MeanDemand)
	}

	// Only the Summer SALE campaign falls inside the later window: the
	// garden promo misses the keyword and the bad-dates row never matches.
	if report.Later.MatchedRows != 1 || len(laterSel) != 1 {
		t.Fatalf("expected 1 later match, got %d", report.Later.MatchedRows)
	}
	if laterSel[0].ID != 3 {
		t.Fatalf("expected later row ID 3, got %d", laterSel[0].ID)
	}
	if report.Later.MeanDemand == nil || !almostEqual(*report.Later.MeanDemand, 200) {
		t.Fatalf("expected later mean 200, got %v", report.Later.MeanDemand)
	}

	if report.AdjustedEarlier == nil || !almostEqual(*report.AdjustedEarlier, 220) {
		t.Fatalf("expected adjusted earlier mean 220, got %v", report.AdjustedEarlier)
	}
	if report.Estimate == nil || !almostEqual(*report.Estimate, 210) {
		t.Fatalf("expected estimate 210, got %v", report.Estimate)
	}
	if report.Status != "ok" {
		t.Fatalf("expected status ok, got %q", report.Status)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", report.Warnings)
	}
}

func TestBuildReportCategoryFilter(t *testing.T) {
	table := loadFixture(t)
	params := fixtureParams()
	params.Keyword = ""
	params.Category = "Home"

	report, _, laterSel := buildReport(table, filter.Options{}, params)
	if report.Later.MatchedRows != 1 || laterSel[0].ID != 4 {
		t.Fatalf("expected only the garden promo, got %+v", report.Later)
	}
	if report.Later.MeanDemand == nil || !almostEqual(*report.Later.MeanDemand, 1234.56) {
		t.Fatalf("expected later mean 1234.56, got %v", report.Later.MeanDemand)
	}
	if report.Earlier.MatchedRows != 0 {
		t.Fatalf("expected no earlier matches, got %d", report.Earlier.MatchedRows)
	}
	if report.Status != "partial" {
		t.Fatalf("expected status partial, got %q", report.Status)
	}
}

func TestBuildReportLaterOnly(t *testing.T) {
	table := loadFixture(t)
	params := fixtureParams()
	params.Earlier = mustTestWindow("01.01.1999", "31.01.1999")

	report, _, _ := buildReport(table, filter.Options{}, params)
	if report.Status != "partial" {
		t.Fatalf("expected status partial, got %q", report.Status)
	}
	if report.AdjustedEarlier != nil {
		t.Fatalf("expected no adjusted earlier mean, got %v", *report.AdjustedEarlier)
	}
	// Absent propagates: the estimate is the later mean alone.
	if report.Estimate == nil || !almostEqual(*report.Estimate, 200) {
		t.Fatalf("expected estimate 200, got %v", report.Estimate)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", report.Warnings)
	}
}

func TestBuildReportUnestimable(t *testing.T) {
	table := loadFixture(t)
	params := fixtureParams()
	params.Earlier = mustTestWindow("01.01.1999", "31.01.1999")
	params.Later = mustTestWindow("01.06.1999", "30.06.1999")

	report, _, _ := buildReport(table, filter.Options{}, params)
	if report.Status != "unestimable" {
		t.Fatalf("expected status unestimable, got %q", report.Status)
	}
	if report.Estimate != nil {
		t.Fatalf("expected no estimate, got %v", *report.Estimate)
	}
	if len(report.Warnings) != 3 {
		t.Fatalf("expected three warnings, got %v", report.Warnings)
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList(" 3, 7 ,12")
	if err != nil {
		t.Fatalf("parseIDList error: %v", err)
	}
	if len(ids) != 3 || !ids[3] || !ids[7] || !ids[12] {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if ids, err := parseIDList(""); err != nil || ids != nil {
		t.Fatalf("expected nil for empty list, got %v, %v", ids, err)
	}
	if _, err := parseIDList("3,x"); err == nil {
		t.Fatal("expected error for non-numeric ID")
	}
}
