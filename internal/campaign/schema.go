package campaign

import (
	"sort"
	"strings"
)

// SchemaError reports required columns absent from the loaded header. It is
// fatal to the load; nothing downstream runs on a partial schema.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// CheckColumns verifies that every column in required is present in header.
// Returns a *SchemaError naming the missing columns, sorted, or nil.
func CheckColumns(header, required []string) error {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &SchemaError{Missing: missing}
}
