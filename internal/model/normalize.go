package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeValue canonicalizes a field value for comparison so that
// consistency checks and field deltas are not fooled by formatting noise:
//  1. Numbers (and numeric strings) render with trailing zeros trimmed
//  2. Strings are trimmed, uppercased, stripped of commas/periods, and
//     multiple spaces collapse to one
//  3. Booleans render as "TRUE"/"FALSE", nil as ""
func NormalizeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return normalizeFloat(val)
	case float32:
		return normalizeFloat(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && strings.TrimSpace(val) != "" {
			return normalizeFloat(f)
		}
		return normalizeString(val)
	default:
		return normalizeString(fmt.Sprintf("%v", val))
	}
}

func normalizeFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func normalizeString(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.NewReplacer(",", "", ".", "", "'", "", "\"", "").Replace(s)
	return multiSpaceRe.ReplaceAllString(s, " ")
}

// ValueEmpty reports whether a field value carries no information: nil,
// blank string, or an empty slice/map.
func ValueEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	default:
		return false
	}
}
