// Package dateparse resolves locale-ambiguous date strings found in OCR text.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// reDotted matches dot-separated dates such as "13.02.2026" or "5.6.26".
var reDotted = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{2,4})\b`)

// explicitLayouts is tried in order after the dotted form; first parse wins.
var explicitLayouts = []string{
	"01/02/2006", // MM/dd/yyyy
	"1/2/2006",   // M/d/yyyy
	"02/01/2006", // dd/MM/yyyy
	"2/1/2006",   // d/M/yyyy
	"2006-01-02", // yyyy-MM-dd
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2 2006",
}

// detectionPatterns classify "looks like a date" without committing to a
// calendar interpretation.
var detectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`),
}

// DetectionPatterns returns the regexes used to spot date-like substrings.
// The returned slice is shared; callers must not mutate it.
func DetectionPatterns() []*regexp.Regexp {
	return detectionPatterns
}

// Parse resolves a date string to a calendar date (UTC, midnight). The
// dot-separated D.M.Y form is tried first with these disambiguation rules:
// a first number > 12 is unambiguously the day; otherwise a second number
// > 12 means the month-first form (first=month, second=day); when both are
// <= 12 the European day.month.year convention wins. Two-digit years expand
// to 19xx above 50, 20xx otherwise. Failing that, an ordered list of
// explicit formats is tried.
func Parse(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}

	if m := reDotted.FindStringSubmatch(trimmed); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		year = expandYear(year)

		day, month := first, second
		switch {
		case first > 12:
			// first must be the day
		case second > 12:
			// month-first form: first=month, second=day
			day, month = second, first
		default:
			// both ambiguous: European day.month.year
		}
		if d, ok := makeDate(year, month, day); ok {
			return d, true
		}
	}

	for _, layout := range explicitLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return d.UTC(), true
		}
	}

	// Text may be a larger blob; try detection patterns and parse the first
	// candidate substring.
	for _, re := range detectionPatterns {
		match := re.FindString(trimmed)
		if match == "" || match == trimmed {
			continue
		}
		if d, ok := Parse(match); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

func expandYear(year int) int {
	if year >= 100 {
		return year
	}
	if year > 50 {
		return year + 1900
	}
	return year + 2000
}

// makeDate builds a UTC date and rejects overflowed components
// (time.Date would silently normalize e.g. day 32).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
