package summarize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"wbs/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_FullSubmission(t *testing.T) {
	sub := model.Submission{
		What:  "Dugaan mark up harga pengadaan server",
		Where: "Kantor Pusat",
		When:  "Triwulan pertama",
		Who:   "Panitia pengadaan",
		How:   "Harga dinaikkan lewat PT Maju Jaya",
	}
	cls := model.Classification{Category: model.CategoryCorruption, Severity: model.SeverityHigh}

	s := Summarize(sub, cls)

	assert.Equal(t,
		"Laporan mengenai: Dugaan mark up harga pengadaan server "+
			"Kejadian terjadi di Kantor Pusat pada Triwulan pertama. "+
			"Pihak yang diduga terlibat: Panitia pengadaan. "+
			"Modus: Harga dinaikkan lewat PT Maju Jaya",
		s.Text)
}

func TestSummarize_OmitsEmptyFields(t *testing.T) {
	sub := model.Submission{
		What: "Dugaan penggelapan kas kecil",
		When: "Bulan lalu",
	}

	s := Summarize(sub, model.Classification{})

	assert.Equal(t,
		"Laporan mengenai: Dugaan penggelapan kas kecil Waktu kejadian: Bulan lalu.",
		s.Text)
}

func TestSummarize_TruncatesLongWhat(t *testing.T) {
	sub := model.Submission{What: strings.Repeat("a", 250)}

	s := Summarize(sub, model.Classification{})

	assert.Contains(t, s.Text, strings.Repeat("a", 200)+"...")
	assert.NotContains(t, s.Text, strings.Repeat("a", 201))
}

func TestSummarize_TruncatesOnRuneBoundary(t *testing.T) {
	// 210 two-byte runes would split mid-rune at byte 200; the cut must
	// land on a character boundary and keep the output valid UTF-8.
	sub := model.Submission{What: strings.Repeat("é", 210)}

	s := Summarize(sub, model.Classification{})

	assert.True(t, utf8.ValidString(s.Text))
	assert.Contains(t, s.Text, strings.Repeat("é", 200)+"...")
	assert.NotContains(t, s.Text, strings.Repeat("é", 201))
}

func TestSummarize_KeyPoints(t *testing.T) {
	sub := model.Submission{
		What: "Pembayaran fiktif Rp 750.000.000 ke PT Sumber Makmur, tercatat 2025",
		How:  "Invoice ganda diproses dan disetujui tanpa verifikasi berjenjang",
	}

	s := Summarize(sub, model.Classification{})

	assert.Contains(t, s.KeyPoints, "Nilai terkait: rp 750.000.000")
	assert.Contains(t, s.KeyPoints, "Tanggal terkait: 2025")
	assert.Contains(t, s.KeyPoints, "Entitas terkait: Pt Sumber Makmur")
	assert.Contains(t, s.KeyPoints, "Modus operandi dijelaskan")
	assert.LessOrEqual(t, len(s.KeyPoints), 5)
}

func TestSummarize_RecommendationsCritical(t *testing.T) {
	s := Summarize(model.Submission{What: "x"}, model.Classification{
		Category: model.CategoryCorruption,
		Severity: model.SeverityCritical,
	})

	assert.Equal(t, []string{
		"Eskalasi segera ke pimpinan",
		"Pertimbangkan investigasi khusus",
		"Amankan bukti yang ada",
		"Koordinasi dengan SPI/Internal Audit",
	}, s.Recommendations)
}

func TestSummarize_RecommendationsLowHarassment(t *testing.T) {
	s := Summarize(model.Submission{What: "x"}, model.Classification{
		Category: model.CategoryHarassment,
		Severity: model.SeverityLow,
	})

	assert.Equal(t, []string{
		"Review dan verifikasi laporan",
		"Libatkan SDM/HR dalam penanganan",
		"Pastikan kerahasiaan pelapor",
	}, s.Recommendations)
}
