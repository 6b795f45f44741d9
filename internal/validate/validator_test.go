package validate

import (
	"strings"
	"testing"

	"wbs/internal/model"

	"github.com/stretchr/testify/assert"
)

func validSubmission() model.Submission {
	return model.Submission{
		What:  "Terjadi penggelembungan harga pengadaan barang di kantor pusat",
		Where: "Kantor Pusat Jakarta",
		When:  "Awal bulan lalu",
		Who:   "Oknum pejabat pengadaan",
		How:   "Harga dinaikkan jauh di atas nilai pasar secara berulang",
	}
}

func TestValidate_CompleteSubmission(t *testing.T) {
	result := Validate(validSubmission())

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 100.0, result.ComplianceScore)
}

func TestValidate_MissingFields(t *testing.T) {
	result := Validate(model.Submission{})

	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors, "Field 'what' wajib diisi")
	assert.Contains(t, result.Errors, "Field 'how' wajib diisi")
	assert.Equal(t, 0.0, result.ComplianceScore)
}

func TestValidate_FieldTooShort(t *testing.T) {
	sub := validSubmission()
	sub.What = "terlalu pendek"

	result := Validate(sub)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Field 'what' minimal 20 karakter")
	assert.Equal(t, 80.0, result.ComplianceScore)
}

func TestValidate_WhatLengthBoundary(t *testing.T) {
	// 19 characters: one error exactly.
	sub := validSubmission()
	sub.What = "dana kantor dicuri!"

	result := Validate(sub)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "Field 'what' minimal 20 karakter", result.Errors[0])
	assert.Equal(t, 80.0, result.ComplianceScore)

	// One more character clears the threshold.
	sub.What = "dana kantor dicuri!!"
	result = Validate(sub)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestValidate_CountsCharactersNotBytes(t *testing.T) {
	// 19 runes of multi-byte text is 38 bytes; it must still fail the
	// 20-character minimum.
	sub := validSubmission()
	sub.What = strings.Repeat("é", 19)

	result := Validate(sub)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Field 'what' minimal 20 karakter")

	sub.What = strings.Repeat("é", 20)
	result = Validate(sub)
	assert.True(t, result.IsValid)
}

func TestValidate_WhitespaceOnlyIsMissing(t *testing.T) {
	sub := validSubmission()
	sub.Who = "   "

	result := Validate(sub)

	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, "Field 'who' wajib diisi")
}

func TestValidate_SuspiciousContent(t *testing.T) {
	sub := validSubmission()
	sub.What = "test laporan percobaan untuk sistem ini"

	result := Validate(sub)

	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "Konten terdeteksi sebagai data uji/test")
}

func TestValidate_SuspiciousSinglePatternWarning(t *testing.T) {
	// Multiple suspicious patterns still produce one warning.
	sub := validSubmission()
	sub.What = "test 123 qwerty laporan percobaan sistem"
	sub.How = "lorem ipsum dolor sit amet consectetur adipiscing"

	result := Validate(sub)

	count := 0
	for _, w := range result.Warnings {
		if w == "Konten terdeteksi sebagai data uji/test" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestValidate_ShortCombinedDescription(t *testing.T) {
	result := Validate(model.Submission{
		What:  "aduan singkat saja tapi cukup",
		Where: "Jakarta Selatan",
		When:  "Kemarin sore",
		Who:   "Staf gudang",
		How:   "lewat kas kecil",
	})

	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "Deskripsi laporan terlalu singkat untuk diproses")
}

func TestValidate_PIIWarnings(t *testing.T) {
	sub := validSubmission()
	sub.Who = "Oknum dengan nomor 081234567890"
	sub.How = "Bukti dikirim ke alamat pelapor@contoh.co.id secara rutin"

	result := Validate(sub)

	assert.True(t, result.IsValid)
	assert.Contains(t, result.Warnings, "Terdeteksi nomor telepon - pertimbangkan untuk menghapus jika itu nomor Anda")
	assert.Contains(t, result.Warnings, "Terdeteksi alamat email - pastikan bukan email pribadi Anda")
}

func TestValidate_NIKWarning(t *testing.T) {
	sub := validSubmission()
	sub.Who = "Pelaku dengan NIK 3174012345678901"

	result := Validate(sub)

	assert.Contains(t, result.Warnings, "Terdeteksi angka 16 digit (mungkin NIK) - jangan sertakan NIK Anda")
}

func TestValidate_Deterministic(t *testing.T) {
	sub := validSubmission()
	first := Validate(sub)
	second := Validate(sub)
	assert.Equal(t, first, second)
}
