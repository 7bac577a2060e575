package format

import (
	"strings"
	"unicode/utf8"
)

// CurrencyMarker prefixes every displayed price.
const CurrencyMarker = "₹"

// PriceOnRequest is shown for products without a price.
const PriceOnRequest = "Price on request"

// Price renders the literal price text with the currency marker.
// Example: Price("120") => "₹ 120". The number itself is never reformatted.
func Price(literal string) string {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return PriceOnRequest
	}
	return CurrencyMarker + " " + literal
}

// Truncate shortens s to at most limit runes, appending "..." when something was cut.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

// List joins labels for display, or returns fallback when there are none.
func List(labels []string, fallback string) string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return strings.Join(out, ", ")
}

// OrDefault returns fallback when v is blank.
func OrDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
