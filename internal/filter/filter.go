// Package filter selects campaign records by country, keyword, category and
// an inclusive date window. One implementation covers all the source file
// variants; the differences between them (category match mode, which columns
// the keyword searches, case sensitivity) are an option set.
package filter

import (
	"strings"
	"time"
	"unicode/utf8"

	"demandest/internal/campaign"
)

// Category match modes.
const (
	CategorySubstring = "substring" // case-insensitive containment
	CategoryExact     = "exact"     // case- and whitespace-insensitive equality
)

// DefaultMinKeywordLen is the shortest keyword that activates the keyword
// predicate; anything shorter means "no keyword filter".
const DefaultMinKeywordLen = 3

// CategoryAll is the sentinel category meaning "no category restriction".
const CategoryAll = "All"

// Options configures the filter. The zero value selects the most permissive
// variant: substring category match, case-insensitive keyword over
// Description and Campaign name.
type Options struct {
	CategoryMode   string
	KeywordColumns []string
	CaseSensitive  bool
	MinKeywordLen  int
}

func (o Options) withDefaults() Options {
	if o.CategoryMode == "" {
		o.CategoryMode = CategorySubstring
	}
	if len(o.KeywordColumns) == 0 {
		o.KeywordColumns = []string{campaign.ColDescription, campaign.ColCampaignName}
	}
	if o.MinKeywordLen <= 0 {
		o.MinKeywordLen = DefaultMinKeywordLen
	}
	return o
}

// Window is an inclusive date window. A record is inside when its start date
// is on or after Start and its end date is on or before End: containment,
// not overlap.
type Window struct {
	Start time.Time
	End   time.Time
}

// Query is one period's filter parameters.
type Query struct {
	Country  string
	Keyword  string
	Category string
	Window   Window
}

// Filter returns the records of t matching q, as copies in table order. The
// source table is never mutated; an empty result is a valid outcome, not an
// error. Records whose dates did not parse never match any window.
func Filter(t *campaign.Table, q Query, opts Options) []campaign.Record {
	opts = opts.withDefaults()
	out := []campaign.Record{}
	for _, r := range t.Records {
		if r.Country != q.Country {
			continue
		}
		if !matchCategory(r, q.Category, opts) {
			continue
		}
		if !matchKeyword(r, q.Keyword, opts) {
			continue
		}
		if !inWindow(r, q.Window) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchCategory(r campaign.Record, category string, opts Options) bool {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return true
	}
	switch opts.CategoryMode {
	case CategoryExact:
		return strings.EqualFold(strings.TrimSpace(r.Category), category)
	default:
		return strings.Contains(strings.ToLower(r.Category), strings.ToLower(category))
	}
}

func matchKeyword(r campaign.Record, keyword string, opts Options) bool {
	keyword = strings.TrimSpace(keyword)
	// Characters, not bytes: "éa" is two characters and stays below the
	// default threshold.
	if utf8.RuneCountInString(keyword) < opts.MinKeywordLen {
		return true
	}
	for _, col := range opts.KeywordColumns {
		text := columnText(r, col)
		if !opts.CaseSensitive {
			text = strings.ToLower(text)
			keywordCmp := strings.ToLower(keyword)
			if strings.Contains(text, keywordCmp) {
				return true
			}
			continue
		}
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// ValidKeywordColumn reports whether the keyword predicate can search col.
// Callers taking column names from user configuration should reject anything
// else up front.
func ValidKeywordColumn(col string) bool {
	switch col {
	case campaign.ColDescription, campaign.ColCampaignName,
		campaign.ColCategoryName, campaign.ColCountry:
		return true
	}
	return false
}

func columnText(r campaign.Record, col string) string {
	switch col {
	case campaign.ColDescription:
		return r.Description
	case campaign.ColCampaignName:
		return r.CampaignName
	case campaign.ColCategoryName:
		return r.Category
	case campaign.ColCountry:
		return r.Country
	default:
		return ""
	}
}

func inWindow(r campaign.Record, w Window) bool {
	if r.DateStart == nil || r.DateEnd == nil {
		return false
	}
	if r.DateStart.Before(w.Start) {
		return false
	}
	if r.DateEnd.After(w.End) {
		return false
	}
	return true
}
