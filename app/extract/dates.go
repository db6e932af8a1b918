package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// spanishMonths maps lowercase Spanish month names to month numbers.
var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// isoLayouts are tried first so that timezone offsets present in source data
// are preserved exactly.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Long-form dates with a named month, e.g. "28 de octubre de 2025",
// "martes, 28 de octubre de 2025 - 7:30 p. m." or "28 octubre 2025".
var longFormDate = regexp.MustCompile(`(?i)(\d{1,2})\s+(?:de\s+)?([\p{L}]+)\s+(?:de(?:l)?\s+)?(\d{4})`)

// NormalizeDate converts a raw publisher date string into a timestamp, or nil
// when the string cannot be parsed. It never substitutes the current time:
// an unparseable date propagates as "date unknown" so that freshness-based
// ordering is never corrupted by fabricated values.
func NormalizeDate(raw string, locale string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}

	if t := parseNamedMonth(raw, locale); t != nil {
		return t
	}

	// Generic last resort for publisher-specific numeric formats.
	if t, err := dateparse.ParseAny(raw); err == nil {
		return &t
	}

	return nil
}

// parseNamedMonth handles localized long-form dates. Only Spanish month names
// are known; other locales fall through to the generic parser.
func parseNamedMonth(raw string, locale string) *time.Time {
	if locale != "" && locale != "es" {
		return nil
	}

	m := longFormDate.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return nil
	}

	month, ok := spanishMonths[strings.ToLower(m[2])]
	if !ok {
		return nil
	}

	year, err := strconv.Atoi(m[3])
	if err != nil {
		return nil
	}

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		// e.g. "31 de febrero" rolled over into the next month
		return nil
	}
	return &t
}
