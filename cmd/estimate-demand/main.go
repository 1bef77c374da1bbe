package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"demandest/internal/campaign"
	"demandest/internal/config"
	"demandest/internal/demand"
	"demandest/internal/export"
	"demandest/internal/filter"
	"demandest/internal/ingest"
)

var (
	inputPath  = flag.String("input", "", "Raw campaign TSV file")
	sqlitePath = flag.String("sqlite", "", "Cleaned SQLite database (from process-campaigns)")
	configPath = flag.String("config", "", "Optional YAML options file")

	country  = flag.String("country", "", "Country (exact match, required)")
	keyword  = flag.String("keyword", "", "Campaign keyword (shorter than the minimum length means no keyword filter)")
	category = flag.String("category", "", "Category (empty or All means no category filter)")

	earlierStart = flag.String("earlier-start", "", "Earlier period start date (day-first)")
	earlierEnd   = flag.String("earlier-end", "", "Earlier period end date (day-first)")
	laterStart   = flag.String("later-start", "", "Later period start date (day-first)")
	laterEnd     = flag.String("later-end", "", "Later period end date (day-first)")
	growth       = flag.Float64("growth", 0, "Target growth from the earlier period, percent")

	dropEarlier = flag.String("drop-earlier", "", "Comma-separated row IDs to deselect from the earlier period")
	dropLater   = flag.String("drop-later", "", "Comma-separated row IDs to deselect from the later period")

	exportPath = flag.String("export", "", "Write the selected rows of both periods as TSV")
	jsonPath   = flag.String("json", "", "Write the full report as JSON")
	plotPath   = flag.String("plot", "", "Write a PNG chart of the selected demand per period")
)

type periodReport struct {
	WindowStart    string   `json:"window_start"`
	WindowEnd      string   `json:"window_end"`
	MatchedRows    int      `json:"matched_rows"`
	SelectedRows   int      `json:"selected_rows"`
	MissingDemand  int      `json:"missing_demand_rows"`
	MeanDemand     *float64 `json:"mean_demand"`
	SelectedRowIDs []int    `json:"selected_row_ids"`
}

type estimateReport struct {
	Country         string       `json:"country"`
	Keyword         string       `json:"keyword,omitempty"`
	Category        string       `json:"category,omitempty"`
	GrowthPercent   float64      `json:"growth_percent"`
	Earlier         periodReport `json:"earlier_period"`
	Later           periodReport `json:"later_period"`
	AdjustedEarlier *float64     `json:"adjusted_earlier_mean"`
	Estimate        *float64     `json:"estimated_demand"`
	Status          string       `json:"status"`
	Warnings        []string     `json:"warnings,omitempty"`
}

type estimateParams struct {
	Country     string
	Keyword     string
	Category    string
	Earlier     filter.Window
	Later       filter.Window
	Growth      float64
	DropEarlier map[int]bool
	DropLater   map[int]bool
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s -input <campaigns.tsv> -country <name> -earlier-start ... -later-end ... [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inputPath == "" && *sqlitePath == "" {
		fatalf("missing -input or -sqlite")
	}
	if *country == "" {
		fatalf("missing -country")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatalf("load config: %v", err)
		}
	}

	var table *campaign.Table
	var err error
	if *sqlitePath != "" {
		table, err = ingest.LoadSQLite(*sqlitePath)
	} else {
		table, err = ingest.LoadFile(*inputPath, cfg.LoadOptions())
	}
	if err != nil {
		fatalf("load campaigns: %v", err)
	}

	params := estimateParams{
		Country:  *country,
		Keyword:  *keyword,
		Category: *category,
		Earlier:  mustWindow("earlier", *earlierStart, *earlierEnd),
		Later:    mustWindow("later", *laterStart, *laterEnd),
		Growth:   *growth,
	}
	if params.DropEarlier, err = parseIDList(*dropEarlier); err != nil {
		fatalf("-drop-earlier: %v", err)
	}
	if params.DropLater, err = parseIDList(*dropLater); err != nil {
		fatalf("-drop-later: %v", err)
	}

	report, earlierSel, laterSel := buildReport(table, cfg.FilterOptions(), params)

	printSummary(os.Stdout, table, report)

	if *jsonPath != "" {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fatalf("encode report: %v", err)
		}
		if err := os.WriteFile(*jsonPath, append(b, '\n'), 0o644); err != nil {
			fatalf("write report: %v", err)
		}
	}
	if *exportPath != "" {
		f, err := os.Create(*exportPath)
		if err != nil {
			fatalf("create export: %v", err)
		}
		if err := export.WriteTSV(f, export.Union(earlierSel, laterSel)); err != nil {
			f.Close()
			fatalf("write export: %v", err)
		}
		if err := f.Close(); err != nil {
			fatalf("close export: %v", err)
		}
	}
	if *plotPath != "" {
		if err := writePlot(*plotPath, earlierSel, laterSel, report); err != nil {
			fatalf("write plot: %v", err)
		}
	}
}

// buildReport runs both period filters, applies the row selections and
// produces the estimate report plus the selected rows of each period.
func buildReport(table *campaign.Table, opts filter.Options, p estimateParams) (estimateReport, []campaign.Record, []campaign.Record) {
	earlierAll := filter.Filter(table, filter.Query{
		Country: p.Country, Keyword: p.Keyword, Category: p.Category, Window: p.Earlier,
	}, opts)
	laterAll := filter.Filter(table, filter.Query{
		Country: p.Country, Keyword: p.Keyword, Category: p.Category, Window: p.Later,
	}, opts)

	earlierSel := selectRows(earlierAll, p.DropEarlier)
	laterSel := selectRows(laterAll, p.DropLater)

	res := demand.Estimate(earlierSel, laterSel, p.Growth)

	report := estimateReport{
		Country:         p.Country,
		Keyword:         p.Keyword,
		Category:        p.Category,
		GrowthPercent:   p.Growth,
		Earlier:         periodSummary(p.Earlier, earlierAll, earlierSel, res.EarlierMean),
		Later:           periodSummary(p.Later, laterAll, laterSel, res.LaterMean),
		AdjustedEarlier: res.AdjustedEarlier,
		Estimate:        res.Estimate,
	}

	switch {
	case res.Unestimable():
		report.Status = "unestimable"
	case res.EarlierEmpty || res.LaterEmpty:
		report.Status = "partial"
	default:
		report.Status = "ok"
	}
	if res.EarlierEmpty {
		report.Warnings = append(report.Warnings, "no usable demand selected from the earlier period")
	}
	if res.LaterEmpty {
		report.Warnings = append(report.Warnings, "no usable demand selected from the later period")
	}
	if res.Unestimable() {
		report.Warnings = append(report.Warnings, "cannot estimate: both periods are empty")
	}
	return report, earlierSel, laterSel
}

func periodSummary(w filter.Window, matched, selected []campaign.Record, mean *float64) periodReport {
	pr := periodReport{
		WindowStart:  w.Start.Format("2006-01-02"),
		WindowEnd:    w.End.Format("2006-01-02"),
		MatchedRows:  len(matched),
		SelectedRows: len(selected),
		MeanDemand:   mean,
	}
	pr.SelectedRowIDs = make([]int, 0, len(selected))
	for _, r := range selected {
		pr.SelectedRowIDs = append(pr.SelectedRowIDs, r.ID)
		if r.Demand == nil {
			pr.MissingDemand++
		}
	}
	return pr
}

// selectRows converts a deselection list into the retained subset. With
// nothing dropped, everything stays selected.
func selectRows(rows []campaign.Record, drop map[int]bool) []campaign.Record {
	if len(drop) == 0 {
		return export.Retain(rows, nil)
	}
	keep := make(map[int]bool, len(rows))
	for _, r := range rows {
		if !drop[r.ID] {
			keep[r.ID] = true
		}
	}
	return export.Retain(rows, keep)
}

func parseIDList(s string) (map[int]bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	out := map[int]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid row ID %q", part)
		}
		out[id] = true
	}
	return out, nil
}

func mustWindow(label, start, end string) filter.Window {
	s := mustDate(label+" start", start)
	e := mustDate(label+" end", end)
	if e.Before(s) {
		fatalf("%s period: end date %s is before start date %s", label, end, start)
	}
	return filter.Window{Start: s, End: e}
}

func mustDate(label, s string) time.Time {
	if s == "" {
		fatalf("missing %s date", label)
	}
	t := ingest.ParseDate(s)
	if t == nil {
		fatalf("invalid %s date %q (expected day-first, e.g. 31.01.2025)", label, s)
	}
	return *t
}

func printSummary(w *os.File, table *campaign.Table, r estimateReport) {
	fmt.Fprintf(w, "Rows loaded: %d\n", len(table.Records))
	fmt.Fprintf(w, "Country: %s\n", r.Country)
	if r.Keyword != "" {
		fmt.Fprintf(w, "Keyword: %s\n", r.Keyword)
	}
	if r.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", r.Category)
	}
	fmt.Fprintf(w, "Earlier period %s..%s: matched %d, selected %d, mean %s\n",
		r.Earlier.WindowStart, r.Earlier.WindowEnd, r.Earlier.MatchedRows, r.Earlier.SelectedRows, fmtMean(r.Earlier.MeanDemand))
	fmt.Fprintf(w, "Later period   %s..%s: matched %d, selected %d, mean %s\n",
		r.Later.WindowStart, r.Later.WindowEnd, r.Later.MatchedRows, r.Later.SelectedRows, fmtMean(r.Later.MeanDemand))
	if r.AdjustedEarlier != nil {
		fmt.Fprintf(w, "Adjusted earlier mean (%+.1f%%): %.2f\n", r.GrowthPercent, *r.AdjustedEarlier)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	if r.Estimate != nil {
		fmt.Fprintf(w, "Estimated demand: %.2f EUR\n", *r.Estimate)
	} else {
		fmt.Fprintln(w, "Estimated demand: n/a")
	}
}

func fmtMean(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
