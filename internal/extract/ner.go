package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/fieldlens/fieldlens/internal/dateparse"
)

// legal suffixes that mark a capitalized run as an organization name.
var orgSuffixes = []string{
	"inc", "inc.", "llc", "llc.", "ltd", "ltd.", "gmbh", "ag", "sa",
	"s.a.", "co", "co.", "corp", "corp.", "plc", "kg", "oy", "ab", "bv",
}

// reCapRun matches runs of capitalized words, allowing connectors and
// domain-style tails ("Amazon.com LLC", "Acme Web Services Inc.").
var reCapRun = regexp.MustCompile(`\b[A-Z][\w&.-]*(?:[ ](?:[A-Z][\w&.-]*|of|and|the|für|de))*\b`)

// HeuristicRecognizer is the default EntityRecognizer: capitalized-run plus
// legal-suffix detection for organizations and regex detection for dates.
// Hosts with a platform NER inject their own implementation instead.
type HeuristicRecognizer struct{}

func NewHeuristicRecognizer() *HeuristicRecognizer {
	return &HeuristicRecognizer{}
}

func (r *HeuristicRecognizer) RecognizeEntities(_ context.Context, text string) ([]EntitySpan, error) {
	var spans []EntitySpan

	for _, run := range reCapRun.FindAllString(text, -1) {
		run = strings.TrimSpace(run)
		words := strings.Fields(run)
		if len(words) < 2 {
			continue
		}
		confidence := 0.5
		if hasOrgSuffix(words) {
			confidence = 0.8
		}
		spans = append(spans, EntitySpan{Text: run, Kind: SpanOrganization, Confidence: confidence})
	}

	for _, re := range dateparse.DetectionPatterns() {
		for _, m := range re.FindAllString(text, -1) {
			spans = append(spans, EntitySpan{Text: m, Kind: SpanDate, Confidence: 0.7})
		}
	}
	return spans, nil
}

func hasOrgSuffix(words []string) bool {
	last := strings.ToLower(strings.TrimRight(words[len(words)-1], ","))
	for _, s := range orgSuffixes {
		if last == s {
			return true
		}
	}
	return false
}
