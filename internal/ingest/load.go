// Package ingest loads the tab-separated campaign file into a campaign.Table:
// byte decoding, header mapping, the hard schema check, and the one-time
// demand and date derivation per record.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"demandest/internal/campaign"
	"demandest/internal/demand"
)

// Options controls loading. Encoding forces a character encoding by name
// (empty = guess). The Require flags add the variant-specific columns to the
// schema check. Limit > 0 caps the number of data rows read.
type Options struct {
	Encoding            string
	RequireCampaignName bool
	RequireCategoryName bool
	Limit               int
}

func (o Options) requiredColumns() []string {
	req := append([]string(nil), campaign.BaseColumns...)
	if o.RequireCampaignName {
		req = append(req, campaign.ColCampaignName)
	}
	if o.RequireCategoryName {
		req = append(req, campaign.ColCategoryName)
	}
	return req
}

// LoadFile reads and loads the campaign file at path.
func LoadFile(path string, opts Options) (*campaign.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(raw, opts)
}

// Load decodes raw bytes and parses them as a tab-separated table. A missing
// required column is a *campaign.SchemaError and aborts the load; malformed
// demand or date values never do, they become nil derived fields.
func Load(raw []byte, opts Options) (*campaign.Table, error) {
	decoded, err := DecodeBytes(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = '\t'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &campaign.SchemaError{Missing: opts.requiredColumns()}
		}
		return nil, fmt.Errorf("read header: %v", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if err := campaign.CheckColumns(header, opts.requiredColumns()); err != nil {
		return nil, err
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		if _, ok := colIdx[h]; !ok {
			colIdx[h] = i
		}
	}
	field := func(rec []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	table := &campaign.Table{Columns: header}
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row after line %d: %v", line, err)
		}
		line++
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := campaign.Record{
			ID:           len(table.Records),
			Country:      field(rec, campaign.ColCountry),
			CampaignName: field(rec, campaign.ColCampaignName),
			Category:     field(rec, campaign.ColCategoryName),
			Description:  field(rec, campaign.ColDescription),
			DateStartRaw: field(rec, campaign.ColDateStart),
			DateEndRaw:   field(rec, campaign.ColDateEnd),
			DemandRaw:    field(rec, campaign.ColDemand),
		}
		row.Demand = demand.Parse(row.DemandRaw)
		row.DateStart = ParseDate(row.DateStartRaw)
		row.DateEnd = ParseDate(row.DateEndRaw)
		table.Records = append(table.Records, row)
		if opts.Limit > 0 && len(table.Records) >= opts.Limit {
			break
		}
	}
	return table, nil
}
