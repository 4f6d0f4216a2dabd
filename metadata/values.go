package metadata

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// asString flattens scalar JSON values, containers yield ""
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		// {"value": x} and {"description": x} wrappers used by some property schemas
		inner := lowerKeys(t)
		for _, k := range []string{"value", "name", "description"} {
			if s := asString(inner[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

// asBool coerces boolean-like values, def when absent or unrecognised
func asBool(v any, def bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return def
		}
		return f != 0
	}
	switch strings.ToLower(asString(v)) {
	case "true", "yes", "y", "1", "allowed", "required":
		return true
	case "false", "no", "n", "0", "not allowed", "none":
		return false
	}
	return def
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// parseDate returns YYYY-MM-DD or ok=false for anything it cannot read
func parseDate(v any) (string, bool) {
	s := asString(v)
	if s == "" {
		return "", false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return "", false
		}
		// 13 digit values are unix milliseconds
		if n > 1e12 {
			return time.UnixMilli(n).UTC().Format("2006-01-02"), true
		}
		return time.Unix(n, 0).UTC().Format("2006-01-02"), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format("2006-01-02"), true
		}
	}
	return "", false
}

// asStrings accepts an array or a comma separated string
func asStrings(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	default:
		for _, s := range strings.Split(asString(v), ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func lowerKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		lk := strings.ToLower(strings.TrimSpace(k))
		// an exact lower-case key wins over differently cased duplicates
		if _, dup := out[lk]; dup && lk != k {
			continue
		}
		out[lk] = v
	}
	return out
}
