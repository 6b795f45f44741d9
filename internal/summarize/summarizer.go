// Package summarize builds the human-readable synopsis, key points and
// recommended actions handed to triage managers. Pure text assembly.
package summarize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"wbs/internal/model"
)

const (
	maxWhatLen         = 200
	maxHowLen          = 150
	maxKeyPoints       = 5
	maxRecommendations = 4
)

var (
	amountPattern = regexp.MustCompile(`(?i)rp\.?\s*[\d.,]+|[\d.,]+\s*(juta|miliar|ribu)`)
	datePattern   = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}`)
	entityPattern = regexp.MustCompile(`(?i)\b(pt|cv|ud)\s+[\w ]+`)
)

// Summarize produces the executive summary for a classified submission.
func Summarize(sub model.Submission, cls model.Classification) model.Summary {
	return model.Summary{
		Text:            buildSummary(sub),
		KeyPoints:       keyPoints(sub),
		Recommendations: recommendations(cls.Category, cls.Severity),
	}
}

// buildSummary concatenates fixed-format sentences from the 5W fields.
// An empty field's sentence is omitted entirely.
func buildSummary(sub model.Submission) string {
	what := truncate(strings.TrimSpace(sub.What), maxWhatLen)
	how := truncate(strings.TrimSpace(sub.How), maxHowLen)
	where := strings.TrimSpace(sub.Where)
	when := strings.TrimSpace(sub.When)
	who := strings.TrimSpace(sub.Who)

	parts := []string{fmt.Sprintf("Laporan mengenai: %s", what)}

	switch {
	case where != "" && when != "":
		parts = append(parts, fmt.Sprintf("Kejadian terjadi di %s pada %s.", where, when))
	case where != "":
		parts = append(parts, fmt.Sprintf("Lokasi kejadian: %s.", where))
	case when != "":
		parts = append(parts, fmt.Sprintf("Waktu kejadian: %s.", when))
	}

	if who != "" {
		parts = append(parts, fmt.Sprintf("Pihak yang diduga terlibat: %s.", who))
	}
	if how != "" {
		parts = append(parts, fmt.Sprintf("Modus: %s", how))
	}

	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// truncate cuts at max characters, never mid-rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}

// keyPoints extracts monetary amounts, date-like tokens and company-entity
// mentions, plus qualitative notes for detailed text. Capped at 5.
func keyPoints(sub model.Submission) []string {
	var points []string
	combined := strings.ToLower(sub.What + " " + sub.How)

	if m := amountPattern.FindString(combined); m != "" {
		points = append(points, fmt.Sprintf("Nilai terkait: %s", strings.TrimSpace(m)))
	}
	if m := datePattern.FindString(combined); m != "" {
		points = append(points, fmt.Sprintf("Tanggal terkait: %s", m))
	}
	if m := entityPattern.FindString(combined); m != "" {
		points = append(points, fmt.Sprintf("Entitas terkait: %s", titleCase(strings.TrimSpace(m))))
	}

	if utf8.RuneCountInString(sub.What) > 100 {
		points = append(points, "Deskripsi kejadian cukup detail")
	}
	if utf8.RuneCountInString(sub.How) > 50 {
		points = append(points, "Modus operandi dijelaskan")
	}

	if len(points) > maxKeyPoints {
		points = points[:maxKeyPoints]
	}
	return points
}

// recommendations builds the action list: severity-driven base set first,
// category-driven additions after, truncated to 4. A category item pushed
// past the cap is dropped; that loss is accepted behavior.
func recommendations(category model.Category, severity model.Severity) []string {
	var recs []string

	switch severity {
	case model.SeverityCritical:
		recs = append(recs,
			"Eskalasi segera ke pimpinan",
			"Pertimbangkan investigasi khusus",
			"Amankan bukti yang ada")
	case model.SeverityHigh:
		recs = append(recs,
			"Prioritaskan penanganan",
			"Libatkan tim investigasi")
	case model.SeverityMedium:
		recs = append(recs, "Tindak lanjuti dalam 7 hari kerja")
	default:
		recs = append(recs, "Review dan verifikasi laporan")
	}

	switch category {
	case model.CategoryCorruption, model.CategoryFraud, model.CategoryEmbezzlement:
		recs = append(recs,
			"Koordinasi dengan SPI/Internal Audit",
			"Pertimbangkan pelaporan ke APH jika diperlukan")
	case model.CategoryHarassment, model.CategoryDiscrimination:
		recs = append(recs,
			"Libatkan SDM/HR dalam penanganan",
			"Pastikan kerahasiaan pelapor")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}
