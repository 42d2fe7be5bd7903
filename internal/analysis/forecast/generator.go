// Package forecast derives simulated weather data from question text.
// Generation is pure: no clock, no I/O, no process state. The same
// normalized question always yields the same forecast.
package forecast

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"
)

// Condition is one of the fixed simulated weather conditions.
type Condition string

// Forecast is the simulated weather answer material for one question.
// Temperatures are degrees Celsius.
type Forecast struct {
	Location  string
	When      string
	Condition Condition
	High      int
	Low       int
	Advice    string
}

// DefaultLocation is used when no place-like token appears in the question.
const DefaultLocation = "your area"

var conditions = []Condition{
	"sunny", "partly cloudy", "overcast", "light rain",
	"scattered showers", "thunderstorms", "breezy", "humid", "dry", "drizzle",
}

var adviceLines = []string{
	"Carry a light jacket.",
	"Sunscreen recommended.",
	"Pack an umbrella just in case.",
	"Hydrate well.",
	"Good day for a walk.",
}

// timeKeyword pairs a relative-time phrase with its word-boundary pattern,
// so "tomorrows" never matches "tomorrow".
type timeKeyword struct {
	phrase  string
	pattern *regexp.Regexp
}

// timeKeywords are matched in order; the first hit wins.
var timeKeywords = buildTimeKeywords(
	"today", "tomorrow", "tonight", "this weekend", "this week", "next week",
)

func buildTimeKeywords(phrases ...string) []timeKeyword {
	kws := make([]timeKeyword, len(phrases))
	for i, phrase := range phrases {
		kws[i] = timeKeyword{
			phrase:  phrase,
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`),
		}
	}
	return kws
}

var (
	locationPattern = regexp.MustCompile(`(?i)\b(?:in|at)\s+([A-Za-z][A-Za-z\s\-]{1,40})`)
	isoDatePattern  = regexp.MustCompile(`\b(20\d{2}-\d{2}-\d{2})\b`)
)

// Generate builds a deterministic pseudo-forecast from free question text.
func Generate(question string) Forecast {
	normalized := Normalize(question)

	location := extractLocation(question)
	when := extractWhen(normalized)

	h := fnv.New64a()
	h.Write([]byte(normalized))
	sum := h.Sum64()

	condition := conditions[sum%uint64(len(conditions))]
	high := 15 + int((sum>>8)%21) // 15..35
	spread := 5 + int((sum>>16)%8)
	low := high - spread
	if low < 5 {
		low = 5
	}
	advice := adviceLines[(sum>>24)%uint64(len(adviceLines))]

	return Forecast{
		Location:  location,
		When:      when,
		Condition: condition,
		High:      high,
		Low:       low,
		Advice:    advice,
	}
}

// Normalize lowercases the question and collapses runs of whitespace, so
// hash-derived fields are stable under casing and spacing differences.
func Normalize(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}

// Summary renders the deterministic fallback answer for a forecast.
func (f Forecast) Summary() string {
	return fmt.Sprintf(
		"Weather forecast for %s (%s): %s. Temperatures around High %d°C / Low %d°C. %s",
		f.Location, f.When, f.Condition, f.High, f.Low, f.Advice,
	)
}

// extractLocation picks the first "in <place>" / "at <place>" token. The
// capture stops at the first time keyword so "in Paris tomorrow" yields
// "Paris", not "Paris Tomorrow".
func extractLocation(question string) string {
	match := locationPattern.FindStringSubmatch(question)
	if match == nil {
		return DefaultLocation
	}

	captured := strings.TrimSpace(match[1])
	lowered := strings.ToLower(captured)
	for _, kw := range timeKeywords {
		if loc := kw.pattern.FindStringIndex(lowered); loc != nil {
			captured = strings.TrimSpace(captured[:loc[0]])
			lowered = lowered[:loc[0]]
		}
	}
	if captured == "" {
		return DefaultLocation
	}
	return titleCase(captured)
}

func extractWhen(normalized string) string {
	when := "today"
	for _, kw := range timeKeywords {
		if kw.pattern.MatchString(normalized) {
			when = kw.phrase
			break
		}
	}
	// An explicit ISO date beats the relative vocabulary.
	if match := isoDatePattern.FindStringSubmatch(normalized); match != nil {
		when = match[1]
	}
	return when
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
