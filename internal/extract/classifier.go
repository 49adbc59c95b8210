package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/fieldlens/fieldlens/internal/entity"
)

// Scoring weights for the rule classifier. Pattern and hint evidence stack;
// region containment nudges candidates that sit where the schema expects.
const (
	labelHintBoost = 0.15
	regionBoost    = 0.10
)

// RuleClassifier is the default FieldClassifier: it scores every observation
// against each mapping's regex pattern, label hint and page region. Patterns
// are compiled once per source string and cached across calls.
type RuleClassifier struct {
	logger *slog.Logger

	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

func NewRuleClassifier(logger *slog.Logger) *RuleClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleClassifier{
		logger: logger,
		cache:  make(map[string]*regexp.Regexp),
	}
}

func (c *RuleClassifier) Classify(_ context.Context, pages []Page, schema *entity.InvoiceSchema) ([]entity.FieldClassificationResult, error) {
	var results []entity.FieldClassificationResult
	for _, mapping := range schema.FieldMappings {
		pattern, err := c.compiled(mapping.Pattern)
		if err != nil {
			c.logger.Warn("classifier.bad_pattern",
				"schema_id", schema.ID, "field_type", mapping.FieldType, "error", err)
			continue
		}
		base := mapping.EffectiveConfidence()
		hint := strings.ToLower(mapping.LabelHint)

		for _, page := range pages {
			for _, obs := range page.Observations {
				text, confidence := c.scoreObservation(obs, pattern, hint, mapping.Region, base)
				if text == "" {
					continue
				}
				results = append(results, entity.FieldClassificationResult{
					FieldType:   mapping.FieldType,
					Text:        text,
					Confidence:  confidence,
					BoundingBox: obs.BoundingBox,
					Page:        page.Index,
				})
			}
		}
	}
	return results, nil
}

// scoreObservation returns the candidate text extracted from the observation
// and its confidence, or "" when the observation does not match the rule.
func (c *RuleClassifier) scoreObservation(obs entity.TextObservation, pattern *regexp.Regexp, hint string, region *entity.NormalizedRegion, base float64) (string, float64) {
	var candidate string
	hintHit := hint != "" && strings.Contains(strings.ToLower(obs.Text), hint)

	if pattern != nil {
		m := pattern.FindStringSubmatch(obs.Text)
		if m == nil {
			return "", 0
		}
		candidate = m[0]
		if len(m) > 1 && m[1] != "" {
			candidate = m[1]
		}
	} else if hintHit {
		// no pattern: the value is whatever follows the label
		candidate = valueAfterLabel(obs.Text, hint)
	} else {
		return "", 0
	}

	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", 0
	}

	confidence := base * obs.Confidence
	if hintHit {
		confidence += labelHintBoost
	}
	if region != nil {
		cx, cy := obs.BoundingBox.Center()
		if region.Contains(cx, cy) {
			confidence += regionBoost
		}
	}
	if confidence > 1 {
		confidence = 1
	}
	return candidate, confidence
}

func (c *RuleClassifier) compiled(source string) (*regexp.Regexp, error) {
	if source == "" {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if re, ok := c.cache[source]; ok {
		return re, nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	c.cache[source] = re
	return re, nil
}

// valueAfterLabel strips the label (and separating punctuation) off the
// observation text, returning the remainder.
func valueAfterLabel(text, hint string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, hint)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(hint):]
	return strings.TrimLeft(rest, " \t:.-#")
}
