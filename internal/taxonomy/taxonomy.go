package taxonomy

import "wbs/internal/model"

// CategoryKeywords pairs a category with the keywords that indicate it.
// Order matters: the classifier resolves ties by first entry, so the table
// is a slice rather than a map.
type CategoryKeywords struct {
	Category model.Category
	Keywords []string
}

// Categories is the fixed category taxonomy with Indonesian and English
// indicator keywords, matched as substrings over lower-cased report text.
var Categories = []CategoryKeywords{
	{model.CategoryFraud, []string{
		"penipuan", "tipu", "palsu", "manipulasi", "fiktif", "pemalsuan",
		"fraud", "fake", "bohong", "menipu",
	}},
	{model.CategoryCorruption, []string{
		"korupsi", "suap", "gratifikasi", "sogok", "kickback", "fee",
		"komisi ilegal", "mark up", "markup", "penggelembungan",
	}},
	{model.CategoryEmbezzlement, []string{
		"penggelapan", "gelapkan", "curi", "mencuri", "embezzle",
		"ambil uang", "hilang dana", "seleweng",
	}},
	{model.CategoryConflictOfInterest, []string{
		"konflik kepentingan", "conflict of interest", "keluarga",
		"rekanan", "vendor", "perusahaan sendiri", "bisnis pribadi",
	}},
	{model.CategoryAbuseOfPower, []string{
		"penyalahgunaan wewenang", "abuse of power", "jabatan",
		"posisi", "kekuasaan", "otoritas", "memaksa",
	}},
	{model.CategoryHarassment, []string{
		"pelecehan", "harassment", "bully", "intimidasi", "ancam",
		"seksual", "verbal", "fisik",
	}},
	{model.CategoryDiscrimination, []string{
		"diskriminasi", "pilih kasih", "tidak adil", "rasis",
		"sara", "agama", "suku",
	}},
	{model.CategorySafetyViolation, []string{
		"keselamatan", "safety", "bahaya", "berbahaya", "k3",
		"kecelakaan", "risiko",
	}},
	{model.CategoryPolicyViolation, []string{
		"pelanggaran kebijakan", "sop", "aturan", "prosedur",
		"policy violation", "regulasi",
	}},
}

// SeverityKeywords pairs a severity level with its indicator keywords.
type SeverityKeywords struct {
	Severity model.Severity
	Keywords []string
}

// Severities is the fixed severity keyword table, most severe first.
var Severities = []SeverityKeywords{
	{model.SeverityCritical, []string{
		"sistematis", "besar", "masif", "miliaran", "pimpinan",
		"direktur", "komisaris", "korupsi besar", "serius",
	}},
	{model.SeverityHigh, []string{
		"signifikan", "berkelanjutan", "berulang", "ratusan juta",
		"manager", "kepala", "kerugian besar",
	}},
	{model.SeverityMedium, []string{
		"moderat", "puluhan juta", "beberapa kali", "staff senior",
	}},
	{model.SeverityLow, []string{
		"kecil", "minor", "pertama kali", "tidak sengaja", "juta",
	}},
}

// SeverityLevel carries SLA and escalation configuration per severity.
type SeverityLevel struct {
	Priority     string
	SLAHours     int
	EscalationTo string
	Weight       float64
}

// SeverityLevels maps each severity to its SLA window, escalation target,
// priority code and risk weight.
var SeverityLevels = map[model.Severity]SeverityLevel{
	model.SeverityCritical: {Priority: "P1", SLAHours: 4, EscalationTo: "Ketua BPKH", Weight: 1.0},
	model.SeverityHigh:     {Priority: "P2", SLAHours: 24, EscalationTo: "Director Level", Weight: 0.75},
	model.SeverityMedium:   {Priority: "P3", SLAHours: 48, EscalationTo: "Manager Level", Weight: 0.5},
	model.SeverityLow:      {Priority: "P4", SLAHours: 72, EscalationTo: "Team Lead", Weight: 0.25},
}

// Routing unit names
const (
	UnitInternalAudit  = "Satuan Pengawasan Internal (SPI)"
	UnitCompliance     = "Unit Kepatuhan"
	UnitLegal          = "Biro Hukum"
	UnitHR             = "Unit SDM"
	UnitAuditCommittee = "Komite Audit"
	TopLeadership      = "Ketua BPKH"
)

// CategoryAll is the sentinel marking a unit that accepts every category.
const CategoryAll = model.Category("all")

// UnitRoute maps a unit to the categories it investigates.
type UnitRoute struct {
	Unit       string
	Categories []model.Category
}

// RoutingUnits is evaluated top to bottom; the first unit whose list
// contains the category (or the CategoryAll sentinel) wins.
var RoutingUnits = []UnitRoute{
	{UnitInternalAudit, []model.Category{
		model.CategoryCorruption, model.CategoryEmbezzlement, model.CategoryAbuseOfPower,
	}},
	{UnitCompliance, []model.Category{
		model.CategoryPolicyViolation, model.CategoryConflictOfInterest,
	}},
	{UnitLegal, []model.Category{
		model.CategoryFraud,
	}},
	{UnitHR, []model.Category{
		model.CategoryHarassment, model.CategoryDiscrimination, model.CategorySafetyViolation,
	}},
	{UnitAuditCommittee, []model.Category{CategoryAll}},
}

// DefaultUnit is the fallback when no routing entry matches.
const DefaultUnit = UnitInternalAudit
