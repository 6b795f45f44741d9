// Package classify maps free-text report fields to a violation category,
// severity and risk score using the static keyword taxonomy. The whole
// package is deterministic: same text, same tables, same result.
package classify

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"wbs/internal/model"
	"wbs/internal/taxonomy"
)

// amountPattern catches monetary mentions like "Rp 500.000.000" or
// "2 miliar" in Indonesian reports.
var amountPattern = regexp.MustCompile(`(?i)rp\.?\s*[\d.,]+|[\d.,]+\s*(juta|miliar|triliun)`)

const maxKeywordsReported = 10

// Classify derives category, severity and risk score from a submission.
// No keyword match at all degrades to the default category/severity rather
// than failing.
func Classify(sub model.Submission) model.Classification {
	text := strings.ToLower(sub.What + " " + sub.Who + " " + sub.How)

	category, catConfidence := classifyCategory(text)
	severity, sevConfidence := classifySeverity(text)

	return model.Classification{
		Category:           category,
		CategoryConfidence: catConfidence,
		Severity:           severity,
		SeverityConfidence: sevConfidence,
		RiskScore:          riskScore(severity, catConfidence),
		KeywordsFound:      keywordsFound(text),
		AmountMentioned:    ExtractAmount(text),
	}
}

// classifyCategory counts keyword hits per category and picks the highest.
// Ties resolve to the category defined first in the taxonomy table.
func classifyCategory(text string) (model.Category, float64) {
	best := model.CategoryOther
	bestCount := 0

	for _, entry := range taxonomy.Categories {
		count := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(text, kw) {
				count++
			}
		}
		if count > bestCount {
			best = entry.Category
			bestCount = count
		}
	}

	if bestCount == 0 {
		return model.CategoryOther, 0.5
	}
	return best, math.Min(float64(bestCount)/3, 1.0)
}

func classifySeverity(text string) (model.Severity, float64) {
	best := model.SeverityMedium
	bestCount := 0

	for _, entry := range taxonomy.Severities {
		count := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(text, kw) {
				count++
			}
		}
		if count > bestCount {
			best = entry.Severity
			bestCount = count
		}
	}

	if bestCount == 0 {
		return model.SeverityMedium, 0.5
	}
	return best, math.Min(float64(bestCount)/2, 1.0)
}

// riskScore blends the severity weight with the category confidence:
// weight*100 scaled by (0.5 + confidence*0.5), capped at 100.
func riskScore(severity model.Severity, confidence float64) float64 {
	weight := 0.5
	if lvl, ok := taxonomy.SeverityLevels[severity]; ok {
		weight = lvl.Weight
	}
	score := weight * 100 * (0.5 + confidence*0.5)
	return math.Round(math.Min(score, 100)*100) / 100
}

// keywordsFound lists the taxonomy keywords present in the text, sorted for
// stable output, capped at maxKeywordsReported.
func keywordsFound(text string) []string {
	seen := map[string]bool{}
	var found []string

	add := func(keywords []string) {
		for _, kw := range keywords {
			if !seen[kw] && strings.Contains(text, kw) {
				seen[kw] = true
				found = append(found, kw)
			}
		}
	}
	for _, entry := range taxonomy.Categories {
		add(entry.Keywords)
	}
	for _, entry := range taxonomy.Severities {
		add(entry.Keywords)
	}

	sort.Strings(found)
	if len(found) > maxKeywordsReported {
		found = found[:maxKeywordsReported]
	}
	return found
}

// ExtractAmount pulls the first monetary amount mentioned in the text.
// Returns "N/A" when nothing matches; it never fails.
func ExtractAmount(text string) string {
	if m := amountPattern.FindString(strings.ToLower(text)); m != "" {
		return strings.TrimSpace(m)
	}
	return "N/A"
}
