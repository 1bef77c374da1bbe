package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"demandest/internal/campaign"
	"demandest/internal/config"
	"demandest/internal/export"
	"demandest/internal/ingest"
)

var (
	inputPath   = flag.String("input", "campaigns.tsv", "Input campaign TSV file")
	outputDir   = flag.String("out-dir", "outputs", "Output directory")
	tsvPath     = flag.String("tsv", "", "Cleaned TSV output path (default outputs/campaigns_cleaned.tsv)")
	sqlitePath  = flag.String("sqlite", "", "SQLite output path (default outputs/campaigns_cleaned.sqlite)")
	profilePath = flag.String("profile", "", "Profile markdown output path (default outputs/campaigns_profile.md)")
	configPath  = flag.String("config", "", "Optional YAML options file")
	encName     = flag.String("encoding", "", "Force input encoding (default: guess from the bytes)")
	limitRows   = flag.Int("limit", 0, "Optional limit for testing (0 = all rows)")
)

func main() {
	flag.Parse()

	outTSV := *tsvPath
	outSQLite := *sqlitePath
	outProfile := *profilePath
	if outTSV == "" {
		outTSV = filepath.Join(*outputDir, "campaigns_cleaned.tsv")
	}
	if outSQLite == "" {
		outSQLite = filepath.Join(*outputDir, "campaigns_cleaned.sqlite")
	}
	if outProfile == "" {
		outProfile = filepath.Join(*outputDir, "campaigns_profile.md")
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fatalf("mkdir outputs: %v", err)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fatalf("load config: %v", err)
		}
	}
	opts := cfg.LoadOptions()
	if *encName != "" {
		opts.Encoding = *encName
	}
	opts.Limit = *limitRows

	table, err := ingest.LoadFile(*inputPath, opts)
	if err != nil {
		fatalf("load campaigns: %v", err)
	}
	sourceRows := len(table.Records)

	deduped := dedupeRows(table)

	profile := buildProfile(table, sourceRows, deduped)
	if err := os.WriteFile(outProfile, []byte(profile), 0o644); err != nil {
		fatalf("write profile: %v", err)
	}

	f, err := os.Create(outTSV)
	if err != nil {
		fatalf("create tsv: %v", err)
	}
	if err := export.WriteTSV(f, table.Records); err != nil {
		f.Close()
		fatalf("write tsv: %v", err)
	}
	if err := f.Close(); err != nil {
		fatalf("close tsv: %v", err)
	}

	if err := ingest.WriteSQLite(outSQLite, table); err != nil {
		fatalf("write sqlite: %v", err)
	}

	fmt.Printf("Rows read: %d\n", sourceRows)
	fmt.Printf("Duplicate rows dropped: %d\n", deduped)
	fmt.Printf("Rows written (cleaned): %d\n", len(table.Records))
	fmt.Printf("TSV: %s\n", outTSV)
	fmt.Printf("SQLite: %s\n", outSQLite)
	fmt.Printf("Profile: %s\n", outProfile)
}

// dedupeRows drops rows that are exact duplicates of an earlier row over the
// raw column values, keeping the first occurrence and its ID. Returns the
// number of rows dropped.
func dedupeRows(t *campaign.Table) int {
	seen := map[string]struct{}{}
	out := t.Records[:0]
	dropped := 0
	for _, r := range t.Records {
		key := r.RawKey()
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	t.Records = out
	return dropped
}

func buildProfile(t *campaign.Table, sourceRows, deduped int) string {
	rows := t.Records
	lines := []string{
		"# Campaign file profiling + cleaning report",
		"",
		"## Dataset shape",
		fmt.Sprintf("- Source rows read: %s", fmtInt(sourceRows)),
		fmt.Sprintf("- Duplicate rows dropped: %s", fmtInt(deduped)),
		fmt.Sprintf("- Clean rows written: %s", fmtInt(len(rows))),
		"",
		"## Missingness",
	}
	counts := map[string]int{}
	for _, r := range rows {
		if r.Demand == nil {
			counts["demand (unparsable or empty)"]++
		}
		if r.DateStart == nil {
			counts["date start (unparsable or empty)"]++
		}
		if r.DateEnd == nil {
			counts["date end (unparsable or empty)"]++
		}
		if strings.TrimSpace(r.CampaignName) == "" {
			counts["campaign name (empty)"]++
		}
		if strings.TrimSpace(r.Category) == "" {
			counts["category (empty)"]++
		}
	}
	for _, k := range sortedKeys(counts) {
		lines = append(lines, fmt.Sprintf("- %s: %s rows (%.1f%%)", k, fmtInt(counts[k]), safeDiv(float64(counts[k])*100, float64(len(rows)))))
	}
	lines = append(lines, "")

	var demands []float64
	for _, r := range rows {
		if r.Demand != nil {
			demands = append(demands, *r.Demand)
		}
	}
	sort.Float64s(demands)
	lines = append(lines, "## Demand summary")
	if len(demands) == 0 {
		lines = append(lines, "- no numeric demand values")
	} else {
		lines = append(lines, fmt.Sprintf("- count=%s, min=%s, median=%s, mean=%s, max=%s",
			fmtInt(len(demands)), fmt4g(demands[0]), fmt4g(median(demands)), fmt4g(mean(demands)), fmt4g(demands[len(demands)-1])))
	}
	lines = append(lines, "")

	lines = append(lines, valueCounts("Country", rows, func(r campaign.Record) string { return r.Country })...)
	lines = append(lines, valueCounts("Category", rows, func(r campaign.Record) string { return r.Category })...)

	lines = append(lines, "## Date coverage")
	minStart, maxEnd := "", ""
	for _, r := range rows {
		if r.DateStart != nil {
			s := r.DateStart.Format("2006-01-02")
			if minStart == "" || s < minStart {
				minStart = s
			}
		}
		if r.DateEnd != nil {
			e := r.DateEnd.Format("2006-01-02")
			if maxEnd == "" || e > maxEnd {
				maxEnd = e
			}
		}
	}
	if minStart == "" {
		lines = append(lines, "- no parsable dates")
	} else {
		lines = append(lines, fmt.Sprintf("- earliest start: %s", minStart))
		lines = append(lines, fmt.Sprintf("- latest end: %s", maxEnd))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func valueCounts(title string, rows []campaign.Record, field func(campaign.Record) string) []string {
	counts := map[string]int{}
	for _, r := range rows {
		k := strings.TrimSpace(field(r))
		if k == "" {
			k = "<NA>"
		}
		counts[k]++
	}
	type kv struct {
		k string
		v int
	}
	var items []kv
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].v == items[j].v {
			return items[i].k < items[j].k
		}
		return items[i].v > items[j].v
	})
	out := []string{fmt.Sprintf("## Value counts: %s (top 20)", title)}
	for i := 0; i < len(items) && i < 20; i++ {
		out = append(out, fmt.Sprintf("- %s: %s", items[i].k, fmtInt(items[i].v)))
	}
	out = append(out, "")
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fmtInt(v int) string {
	s := strconv.Itoa(v)
	n := len(s)
	if n <= 3 {
		return s
	}
	var parts []string
	for n > 3 {
		parts = append([]string{s[n-3:]}, parts...)
		s = s[:n-3]
		n = len(s)
	}
	if s != "" {
		parts = append([]string{s}, parts...)
	}
	return strings.Join(parts, ",")
}

func fmt4g(v float64) string { return strconv.FormatFloat(v, 'g', 4, 64) }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func fatalf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}
