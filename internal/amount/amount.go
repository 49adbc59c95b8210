// Package amount extracts currency-tagged monetary amounts from free text.
package amount

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Currency is the ISO 4217 code of a supported currency.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	CHF Currency = "CHF"
)

// maxValue is the upper sanity bound; anything at or above it is OCR noise.
const maxValue = 1e12

// Amount is one extracted monetary value.
type Amount struct {
	Value      float64  `json:"value"`
	Currency   Currency `json:"currency"`
	Raw        string   `json:"raw"`
	Confidence float64  `json:"confidence"`
}

// number is the raw numeric token, permissive enough to carry OCR confusions
// (O for 0, l for 1) and every grouping convention we clean up afterwards.
const number = `[0-9Ol](?:[0-9Ol.,'’ ]*[0-9Ol])?`

type pattern struct {
	re         *regexp.Regexp
	currency   Currency
	confidence float64
}

var patterns = buildPatterns()

type currencySpec struct {
	currency Currency
	symbol   string
	words    string
}

var currencySpecs = []currencySpec{
	{USD, `\$`, `dollars?`},
	{EUR, `€`, `euros?`},
	{GBP, `£`, `pounds?`},
	{CHF, ``, `francs?`},
}

func buildPatterns() []pattern {
	var out []pattern
	for _, spec := range currencySpecs {
		code := string(spec.currency)
		if spec.symbol != "" {
			// symbol-prefixed: $1,234.56
			out = append(out, pattern{
				re:         regexp.MustCompile(spec.symbol + `\s?(` + number + `)`),
				currency:   spec.currency,
				confidence: 0.9,
			})
			// symbol-suffixed: 1.234,56 €
			out = append(out, pattern{
				re:         regexp.MustCompile(`(` + number + `)\s?` + spec.symbol),
				currency:   spec.currency,
				confidence: 0.9,
			})
		}
		// code-prefixed: USD 1,234.56
		out = append(out, pattern{
			re:         regexp.MustCompile(`\b` + code + `\s?(` + number + `)`),
			currency:   spec.currency,
			confidence: 0.85,
		})
		// code-suffixed: 1,234.56 USD
		out = append(out, pattern{
			re:         regexp.MustCompile(`(` + number + `)\s?` + code + `\b`),
			currency:   spec.currency,
			confidence: 0.85,
		})
		// word-suffixed: 1234 dollars
		out = append(out, pattern{
			re:         regexp.MustCompile(`(?i)(` + number + `)\s` + spec.words + `\b`),
			currency:   spec.currency,
			confidence: 0.7,
		})
	}
	return out
}

// Extractor finds, cleans and ranks monetary amounts in OCR text.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns the deduplicated amounts found in text, sorted by value
// descending. Amounts outside (0, 1e12) are dropped.
func (e *Extractor) Extract(text string) []Amount {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	type key struct {
		value    float64
		currency Currency
	}
	best := make(map[key]Amount)

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			raw := m[1]
			value, ok := clean(raw, p.currency)
			if !ok {
				continue
			}
			k := key{value, p.currency}
			if prev, exists := best[k]; !exists || p.confidence > prev.Confidence {
				best[k] = Amount{
					Value:      value,
					Currency:   p.currency,
					Raw:        strings.TrimSpace(m[0]),
					Confidence: p.confidence,
				}
			}
		}
	}

	result := make([]Amount, 0, len(best))
	for _, a := range best {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Value != result[j].Value {
			return result[i].Value > result[j].Value
		}
		return result[i].Currency < result[j].Currency
	})
	return result
}

// Primary returns the maximum-value amount. The largest figure on an invoice
// is assumed to be the grand total; a heuristic, not a guarantee.
func (e *Extractor) Primary(amounts []Amount) (Amount, bool) {
	if len(amounts) == 0 {
		return Amount{}, false
	}
	return amounts[0], true
}

// ParseValue cleans a bare numeric token that carries no currency context,
// using separator positions alone to pick the decimal mark.
func ParseValue(raw string) (float64, bool) {
	return clean(raw, "")
}

// clean normalizes one raw numeric token to a float, applying OCR fixes and
// the currency's separator convention.
func clean(raw string, currency Currency) (float64, bool) {
	s := strings.TrimSpace(raw)
	// common OCR confusions
	s = strings.ReplaceAll(s, "O", "0")
	s = strings.ReplaceAll(s, "l", "1")
	// apostrophes are always grouping (Swiss style), spaces likewise
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, " ", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0 && lastComma > lastDot:
		// European grouping: dots are thousands, comma is the decimal mark
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case lastComma >= 0 && lastDot >= 0:
		// dot is the decimal mark, commas are thousands
		s = strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		if (currency == EUR || currency == CHF) && strings.Count(s, ",") == 1 {
			// lone comma is the decimal mark in these locales
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		// dots can only be grouping when there is more than one
		s = strings.ReplaceAll(s, ".", "")
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if value <= 0 || value >= maxValue {
		return 0, false
	}
	return value, true
}
