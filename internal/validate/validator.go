// Package validate checks 5W+1H report submissions for completeness,
// test/garbage input and accidental PII before anything else runs.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"wbs/internal/model"
)

// Minimum lengths per required field, in report order.
var minLengths = []struct {
	field  string
	minLen int
}{
	{"what", 20},
	{"where", 5},
	{"when", 5},
	{"who", 3},
	{"how", 10},
}

var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^test`),
	regexp.MustCompile(`^xxx+`),
	regexp.MustCompile(`^aaa+`),
	regexp.MustCompile(`^123`),
	regexp.MustCompile(`^asdf`),
	regexp.MustCompile(`^qwerty`),
	regexp.MustCompile(`lorem ipsum`),
}

var (
	phonePattern = regexp.MustCompile(`08\d{8,11}`)
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	nikPattern   = regexp.MustCompile(`\d{16}`)
)

// Validate checks a submission and returns a ValidationResult. It is a pure
// function: the submission is never mutated and identical input yields an
// identical result. Errors block submission, warnings do not.
func Validate(sub model.Submission) model.ValidationResult {
	var errors, warnings []string
	passed := 0

	for _, f := range minLengths {
		value := strings.TrimSpace(fieldValue(sub, f.field))
		switch {
		case value == "":
			errors = append(errors, fmt.Sprintf("Field '%s' wajib diisi", f.field))
		// Thresholds are characters, not bytes: phone keyboards produce
		// multi-byte runes freely.
		case utf8.RuneCountInString(value) < f.minLen:
			errors = append(errors, fmt.Sprintf("Field '%s' minimal %d karakter", f.field, f.minLen))
		default:
			passed++
		}
	}

	warnings = append(warnings, checkSuspicious(sub)...)
	warnings = append(warnings, checkPII(sub)...)

	score := float64(passed) / float64(len(minLengths)) * 100

	return model.ValidationResult{
		IsValid:         len(errors) == 0,
		Errors:          errors,
		Warnings:        warnings,
		ComplianceScore: round2(score),
	}
}

func fieldValue(sub model.Submission, field string) string {
	switch field {
	case "what":
		return sub.What
	case "where":
		return sub.Where
	case "when":
		return sub.When
	case "who":
		return sub.Who
	case "how":
		return sub.How
	}
	return ""
}

// checkSuspicious flags test/placeholder content. Any pattern hit yields a
// single warning; a too-short combined description is a separate warning and
// the two can co-occur.
func checkSuspicious(sub model.Submission) []string {
	var warnings []string

	combined := strings.ToLower(sub.What + " " + sub.How)

	for _, p := range suspiciousPatterns {
		if p.MatchString(combined) {
			warnings = append(warnings, "Konten terdeteksi sebagai data uji/test")
			break
		}
	}

	if utf8.RuneCountInString(combined) < 50 {
		warnings = append(warnings, "Deskripsi laporan terlalu singkat untuk diproses")
	}

	return warnings
}

// checkPII scans for phone numbers, email addresses and 16-digit runs
// (plausible NIK). One warning per detected class, not per occurrence.
func checkPII(sub model.Submission) []string {
	var warnings []string

	combined := sub.What + " " + sub.Who + " " + sub.How

	if phonePattern.MatchString(combined) {
		warnings = append(warnings, "Terdeteksi nomor telepon - pertimbangkan untuk menghapus jika itu nomor Anda")
	}
	if emailPattern.MatchString(combined) {
		warnings = append(warnings, "Terdeteksi alamat email - pastikan bukan email pribadi Anda")
	}
	if nikPattern.MatchString(combined) {
		warnings = append(warnings, "Terdeteksi angka 16 digit (mungkin NIK) - jangan sertakan NIK Anda")
	}

	return warnings
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
