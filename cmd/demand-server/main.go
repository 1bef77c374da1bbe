package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"demandest/internal/campaign"
	"demandest/internal/config"
	"demandest/internal/demand"
	"demandest/internal/export"
	"demandest/internal/filter"
	"demandest/internal/ingest"
)

const defaultAddr = "127.0.0.1:8774"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -path <campaigns_cleaned.sqlite> | -input <campaigns.tsv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	dbPath := flag.String("path", "", "Cleaned SQLite database (from process-campaigns)")
	inputPath := flag.String("input", "", "Raw campaign TSV file")
	configPath := flag.String("config", "", "Optional YAML options file")
	addr := flag.String("addr", defaultAddr, "HTTP listen address")
	flag.Parse()

	if *dbPath == "" && *inputPath == "" {
		log.Fatal("missing -path or -input")
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	var table *campaign.Table
	var err error
	if *dbPath != "" {
		table, err = ingest.LoadSQLite(*dbPath)
	} else {
		table, err = ingest.LoadFile(*inputPath, cfg.LoadOptions())
	}
	if err != nil {
		log.Fatalf("load campaigns: %v", err)
	}

	srv := &server{table: table, opts: cfg.FilterOptions()}
	log.Printf("serving %d campaign rows on %s", len(table.Records), *addr)
	if err := http.ListenAndServe(*addr, srv.routes()); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// server answers every request from the read-only table loaded at startup;
// each call is a full recomputation, nothing is shared between requests.
type server struct {
	table *campaign.Table
	opts  filter.Options
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v0/countries", s.handleCountries)
	mux.HandleFunc("GET /api/v0/categories", s.handleCategories)
	mux.HandleFunc("POST /api/v0/filter", s.handleFilter)
	mux.HandleFunc("POST /api/v0/estimate", s.handleEstimate)
	mux.HandleFunc("POST /api/v0/export", s.handleExport)
	return mux
}

type periodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type filterRequest struct {
	Country  string `json:"country"`
	Keyword  string `json:"keyword"`
	Category string `json:"category"`
	periodRequest
}

type estimateRequest struct {
	Country         string        `json:"country"`
	Keyword         string        `json:"keyword"`
	Category        string        `json:"category"`
	GrowthPercent   float64       `json:"growth_percent"`
	Earlier         periodRequest `json:"earlier"`
	Later           periodRequest `json:"later"`
	SelectedEarlier []int         `json:"selected_earlier"` // omitted = all rows
	SelectedLater   []int         `json:"selected_later"`
}

type rowPayload struct {
	ID           int      `json:"id"`
	Country      string   `json:"country"`
	CampaignName string   `json:"campaign_name,omitempty"`
	Category     string   `json:"category,omitempty"`
	Description  string   `json:"description"`
	DateStart    string   `json:"date_start"`
	DateEnd      string   `json:"date_end"`
	Demand       *float64 `json:"demand"`
	DemandRaw    string   `json:"demand_raw"`
}

type periodPayload struct {
	MatchedRows  int      `json:"matched_rows"`
	SelectedRows int      `json:"selected_rows"`
	MeanDemand   *float64 `json:"mean_demand"`
}

type estimatePayload struct {
	Earlier         periodPayload `json:"earlier_period"`
	Later           periodPayload `json:"later_period"`
	AdjustedEarlier *float64      `json:"adjusted_earlier_mean"`
	Estimate        *float64      `json:"estimated_demand"`
	Warnings        []string      `json:"warnings,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "rows": len(s.table.Records)})
}

func (s *server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.table.Countries())
}

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.table.Categories())
}

func (s *server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	q, err := s.query(req.Country, req.Keyword, req.Category, req.periodRequest)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows := filter.Filter(s.table, q, s.opts)
	payload := make([]rowPayload, 0, len(rows))
	for _, rec := range rows {
		payload = append(payload, toRowPayload(rec))
	}
	writeJSON(w, payload)
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	earlierSel, laterSel, err := s.selectPeriods(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := demand.Estimate(earlierSel.selected, laterSel.selected, req.GrowthPercent)
	payload := estimatePayload{
		Earlier: periodPayload{
			MatchedRows:  len(earlierSel.matched),
			SelectedRows: len(earlierSel.selected),
			MeanDemand:   res.EarlierMean,
		},
		Later: periodPayload{
			MatchedRows:  len(laterSel.matched),
			SelectedRows: len(laterSel.selected),
			MeanDemand:   res.LaterMean,
		},
		AdjustedEarlier: res.AdjustedEarlier,
		Estimate:        res.Estimate,
	}
	if res.EarlierEmpty {
		payload.Warnings = append(payload.Warnings, "no usable demand selected from the earlier period")
	}
	if res.LaterEmpty {
		payload.Warnings = append(payload.Warnings, "no usable demand selected from the later period")
	}
	if res.Unestimable() {
		payload.Warnings = append(payload.Warnings, "cannot estimate: both periods are empty")
	}
	writeJSON(w, payload)
}

func (s *server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	earlierSel, laterSel, err := s.selectPeriods(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="selected_campaigns.tsv"`)
	if err := export.WriteTSV(w, export.Union(earlierSel.selected, laterSel.selected)); err != nil {
		log.Printf("export write error: %v", err)
	}
}

type periodSelection struct {
	matched  []campaign.Record
	selected []campaign.Record
}

func (s *server) selectPeriods(req estimateRequest) (periodSelection, periodSelection, error) {
	var earlier, later periodSelection
	qe, err := s.query(req.Country, req.Keyword, req.Category, req.Earlier)
	if err != nil {
		return earlier, later, fmt.Errorf("earlier period: %v", err)
	}
	ql, err := s.query(req.Country, req.Keyword, req.Category, req.Later)
	if err != nil {
		return earlier, later, fmt.Errorf("later period: %v", err)
	}
	earlier.matched = filter.Filter(s.table, qe, s.opts)
	later.matched = filter.Filter(s.table, ql, s.opts)
	earlier.selected = export.Retain(earlier.matched, toKeepSet(req.SelectedEarlier))
	later.selected = export.Retain(later.matched, toKeepSet(req.SelectedLater))
	return earlier, later, nil
}

func (s *server) query(country, keyword, category string, p periodRequest) (filter.Query, error) {
	if country == "" {
		return filter.Query{}, fmt.Errorf("missing country")
	}
	w, err := parseWindow(p)
	if err != nil {
		return filter.Query{}, err
	}
	return filter.Query{Country: country, Keyword: keyword, Category: category, Window: w}, nil
}

func parseWindow(p periodRequest) (filter.Window, error) {
	start := ingest.ParseDate(p.Start)
	if start == nil {
		return filter.Window{}, fmt.Errorf("invalid start date %q", p.Start)
	}
	end := ingest.ParseDate(p.End)
	if end == nil {
		return filter.Window{}, fmt.Errorf("invalid end date %q", p.End)
	}
	if end.Before(*start) {
		return filter.Window{}, fmt.Errorf("end date %q is before start date %q", p.End, p.Start)
	}
	return filter.Window{Start: *start, End: *end}, nil
}

// toKeepSet maps the request's retained-ID list onto the selection set. A
// missing list (nil) keeps every row, an explicit empty list keeps none.
func toKeepSet(ids []int) map[int]bool {
	if ids == nil {
		return nil
	}
	keep := make(map[int]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	return keep
}

func toRowPayload(r campaign.Record) rowPayload {
	return rowPayload{
		ID:           r.ID,
		Country:      r.Country,
		CampaignName: r.CampaignName,
		Category:     r.Category,
		Description:  r.Description,
		DateStart:    dateISO(r.DateStart, r.DateStartRaw),
		DateEnd:      dateISO(r.DateEnd, r.DateEndRaw),
		Demand:       r.Demand,
		DemandRaw:    r.DemandRaw,
	}
}

func dateISO(t *time.Time, raw string) string {
	if t == nil {
		return raw
	}
	return t.Format("2006-01-02")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("write json error: %v", err)
	}
}
