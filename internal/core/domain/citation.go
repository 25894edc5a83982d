package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Citation asserts where a generated fact originated.
// Standard is expected, but not guaranteed, to equal a document's
// OriginalFilename.
type Citation struct {
	Standard string
	Clause   string
	Page     int
}

// String formats the citation the way it appears on chips and printed cards.
func (c Citation) String() string {
	return fmt.Sprintf("%s - Cl %s (Pg %d)", c.Standard, c.Clause, c.Page)
}

// CoercePage converts a model-supplied page value to a positive integer.
// Anything that is not a number of at least 1 becomes 1.
func CoercePage(v any) int {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case float32:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 1
		}
		f = parsed
	default:
		return 1
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	page := int(math.Trunc(f))
	if page < 1 {
		return 1
	}
	return page
}
