package classify

import (
	"testing"

	"wbs/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Corruption(t *testing.T) {
	cls := Classify(model.Submission{
		What: "Dugaan korupsi dana operasional melalui suap dan gratifikasi",
		Who:  "Oknum bagian pengadaan",
		How:  "Uang diserahkan tunai setiap akhir bulan",
	})

	assert.Equal(t, model.CategoryCorruption, cls.Category)
	assert.Equal(t, 1.0, cls.CategoryConfidence) // 3 hits capped at 3/3
	assert.Contains(t, cls.KeywordsFound, "korupsi")
	assert.Contains(t, cls.KeywordsFound, "suap")
}

func TestClassify_NoKeywordsDefaults(t *testing.T) {
	cls := Classify(model.Submission{
		What: "Ada hal aneh di bagian pergudangan",
		Who:  "Seorang petugas",
		How:  "Belum jelas caranya",
	})

	assert.Equal(t, model.CategoryOther, cls.Category)
	assert.Equal(t, 0.5, cls.CategoryConfidence)
	assert.Equal(t, model.SeverityMedium, cls.Severity)
	assert.Equal(t, 0.5, cls.SeverityConfidence)
	// weight 0.5 * 100 * (0.5 + 0.5*0.5)
	assert.Equal(t, 37.5, cls.RiskScore)
	assert.Empty(t, cls.KeywordsFound)
	assert.Equal(t, "N/A", cls.AmountMentioned)
}

func TestClassify_CriticalSeverityRisk(t *testing.T) {
	cls := Classify(model.Submission{
		What: "Korupsi sistematis dengan suap dan gratifikasi miliaran rupiah",
		Who:  "Oknum internal",
		How:  "Pembayaran rutin disamarkan",
	})

	assert.Equal(t, model.CategoryCorruption, cls.Category)
	assert.Equal(t, model.SeverityCritical, cls.Severity)
	// weight 1.0 * 100 * (0.5 + 0.5*1.0), capped at 100
	assert.Equal(t, 100.0, cls.RiskScore)
}

func TestClassify_SeverityConfidenceScale(t *testing.T) {
	cls := Classify(model.Submission{
		What: "Penipuan dokumen dengan kerugian kecil",
		Who:  "Staf administrasi",
		How:  "Nota palsu pertama kali ditemukan",
	})

	assert.Equal(t, model.CategoryFraud, cls.Category)
	assert.Equal(t, model.SeverityLow, cls.Severity)
	assert.Equal(t, 1.0, cls.SeverityConfidence) // "kecil" + "pertama kali" = 2/2
}

func TestClassify_TieBreakFirstCategory(t *testing.T) {
	// One fraud keyword and one corruption keyword: fraud is defined
	// first in the taxonomy and wins the tie.
	cls := Classify(model.Submission{
		What: "Ditemukan dokumen palsu",
		Who:  "Pihak rekanan",
		How:  "Diduga ada mark up harga",
	})

	assert.Equal(t, model.CategoryFraud, cls.Category)
}

func TestExtractAmount(t *testing.T) {
	assert.Equal(t, "rp 500.000.000", ExtractAmount("Kerugian Rp 500.000.000 ditemukan auditor"))
	assert.Equal(t, "2 miliar", ExtractAmount("nilai proyek 2 miliar dipotong"))
	assert.Equal(t, "N/A", ExtractAmount("tidak ada nilai uang disebut"))
}

func TestClassify_KeywordsCapped(t *testing.T) {
	cls := Classify(model.Submission{
		What: "korupsi suap gratifikasi sogok kickback markup penggelapan curi penipuan palsu manipulasi fiktif",
		Who:  "banyak pihak",
		How:  "berulang dan sistematis",
	})

	assert.LessOrEqual(t, len(cls.KeywordsFound), 10)
}
