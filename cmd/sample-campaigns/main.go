package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"demandest/internal/campaign"
)

const (
	defaultOutput = "outputs/campaigns_sample.tsv"
	defaultSeed   = int64(20260826)
)

var countries = []string{"Germany", "Germany", "Germany", "France", "Austria", "Netherlands"}

var categories = []string{"Electronics", "Home & Garden", "Fashion", "Toys", "Groceries"}

var campaignAdjectives = []string{"Spring", "Summer", "Autumn", "Winter", "Holiday", "Flash", "Weekend"}
var campaignNouns = []string{"Sale", "Push", "Clearance", "Promo", "Launch", "Blitz"}

var descriptionTemplates = []string{
	"%s %s across all stores",
	"Big %s %s with reduced prices",
	"%s %s for loyalty members",
	"Online-only %s %s event",
}

func main() {
	outPath := flag.String("output", defaultOutput, "Output TSV path")
	rows := flag.Int("rows", 250, "Number of campaign rows to generate")
	seed := flag.Int64("seed", defaultSeed, "Deterministic generation seed")
	messy := flag.Bool("messy", true, "Include unparsable demand and date values and duplicate rows")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir output dir: %v\n", err)
		os.Exit(1)
	}
	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	header := []string{
		campaign.ColCountry, campaign.ColCampaignName, campaign.ColCategoryName,
		campaign.ColDescription, campaign.ColDateStart, campaign.ColDateEnd, campaign.ColDemand,
	}
	if err := w.Write(header); err != nil {
		fmt.Fprintf(os.Stderr, "write header: %v\n", err)
		os.Exit(1)
	}

	var prev []string
	written := 0
	for written < *rows {
		rec := prev
		switch {
		case *messy && prev != nil && rng.Intn(40) == 0:
			// Exact duplicate of the previous row.
		default:
			rec = randomRow(rng, *messy)
		}
		if err := w.Write(rec); err != nil {
			fmt.Fprintf(os.Stderr, "write row: %v\n", err)
			os.Exit(1)
		}
		prev = rec
		written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "flush output: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Output: %s\n", *outPath)
	fmt.Printf("Seed:   %d\n", *seed)
	fmt.Printf("Rows:   %d\n", written)
}

func randomRow(rng *rand.Rand, messy bool) []string {
	adjective := campaignAdjectives[rng.Intn(len(campaignAdjectives))]
	noun := campaignNouns[rng.Intn(len(campaignNouns))]
	name := adjective + " " + noun
	description := fmt.Sprintf(descriptionTemplates[rng.Intn(len(descriptionTemplates))], adjective, strings.ToLower(noun))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rng.Intn(680))
	end := start.AddDate(0, 0, 7+rng.Intn(45))
	startText := start.Format("02.01.2006")
	endText := end.Format("02.01.2006")
	demandText := formatDemandDE(10 + rng.Float64()*25000)

	if messy {
		switch rng.Intn(30) {
		case 0:
			demandText = "n/a"
		case 1:
			demandText = ""
		case 2:
			startText = "tbd"
		}
	}

	return []string{
		countries[rng.Intn(len(countries))],
		name,
		categories[rng.Intn(len(categories))],
		description,
		startText,
		endText,
		demandText,
	}
}

// formatDemandDE renders a float the way the source exports do: dot as the
// thousands separator, comma as the decimal mark, trailing euro sign.
func formatDemandDE(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")
	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)
	return strings.Join(grouped, ".") + "," + fracPart + " €"
}
