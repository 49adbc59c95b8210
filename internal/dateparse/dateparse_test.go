package dateparse

import (
	"testing"
	"time"
)

func TestParse_DottedDisambiguation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		year  int
		month time.Month
		day   int
	}{
		{"first number over 12 is the day", "13.02.2026", 2026, time.February, 13},
		{"second number over 12 flips to month-first", "02.13.2026", 2026, time.February, 13},
		{"both ambiguous defaults to European order", "05.06.2026", 2026, time.June, 5},
		{"two-digit year above 50 expands to 1900s", "01.03.99", 1999, time.March, 1},
		{"two-digit year at or below 50 expands to 2000s", "01.03.26", 2026, time.March, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.input)
			if !ok {
				t.Fatalf("Parse(%q): no date", tt.input)
			}
			if got.Year() != tt.year || got.Month() != tt.month || got.Day() != tt.day {
				t.Errorf("Parse(%q) = %v, want %04d-%02d-%02d", tt.input, got, tt.year, tt.month, tt.day)
			}
		})
	}
}

func TestParse_ExplicitFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"02/28/2026", "2026-02-28"},
		{"2026-02-28", "2026-02-28"},
		{"March 5, 2026", "2026-03-05"},
		{"5 Mar 2026", "2026-03-05"},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.input)
		if !ok {
			t.Fatalf("Parse(%q): no date", tt.input)
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("Parse(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestParse_EmbeddedInText(t *testing.T) {
	got, ok := Parse("Invoice Date: 13.02.2026 Page 1")
	if !ok {
		t.Fatal("expected a date inside larger text")
	}
	if got.Day() != 13 || got.Month() != time.February {
		t.Errorf("got %v, want 2026-02-13", got)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"", "not a date", "32.01.2026", "00.05.2026", "covers 2026 pages"} {
		if d, ok := Parse(input); ok {
			t.Errorf("Parse(%q) = %v, want no date", input, d)
		}
	}
}

func TestDetectionPatterns(t *testing.T) {
	samples := []string{
		"13.02.2026",
		"2/13/2026",
		"2026-02-13",
		"Feb 13, 2026",
		"13 February 2026",
	}
	for _, s := range samples {
		matched := false
		for _, re := range DetectionPatterns() {
			if re.MatchString(s) {
				matched = true
				break
			}
		}
		if !matched {
			t.Errorf("no detection pattern matched %q", s)
		}
	}
}
