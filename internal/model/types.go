package model

import "time"

// Category is a violation category
type Category string

const (
	CategoryFraud              Category = "fraud"
	CategoryCorruption         Category = "corruption"
	CategoryEmbezzlement       Category = "embezzlement"
	CategoryConflictOfInterest Category = "conflict_of_interest"
	CategoryAbuseOfPower       Category = "abuse_of_power"
	CategoryHarassment         Category = "harassment"
	CategoryDiscrimination     Category = "discrimination"
	CategorySafetyViolation    Category = "safety_violation"
	CategoryPolicyViolation    Category = "policy_violation"
	CategoryOther              Category = "other"
)

// Severity is a report severity level
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Status represents the report lifecycle
type Status string

const (
	StatusSubmitted     Status = "submitted"
	StatusUnderReview   Status = "under_review"
	StatusInvestigation Status = "investigation"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
	StatusRejected      Status = "rejected"
)

// AllStatuses lists valid lifecycle statuses in order
var AllStatuses = []Status{
	StatusSubmitted, StatusUnderReview, StatusInvestigation,
	StatusResolved, StatusClosed, StatusRejected,
}

// StatusDisplayName returns the Indonesian display name for a status
func StatusDisplayName(s Status) string {
	names := map[Status]string{
		StatusSubmitted:     "Disubmit",
		StatusUnderReview:   "Dalam Review",
		StatusInvestigation: "Investigasi",
		StatusResolved:      "Selesai",
		StatusClosed:        "Ditutup",
		StatusRejected:      "Ditolak",
	}
	if n, ok := names[s]; ok {
		return n
	}
	return string(s)
}

// ValidStatus reports whether s is a known lifecycle status
func ValidStatus(s Status) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// SourceChannel tags where a submission came from
type SourceChannel string

const (
	ChannelWeb      SourceChannel = "web"
	ChannelWhatsApp SourceChannel = "whatsapp"
	ChannelChatbot  SourceChannel = "chatbot"
	ChannelEmail    SourceChannel = "email"
)

// SenderType identifies a conversation participant
type SenderType string

const (
	SenderReporter SenderType = "reporter"
	SenderManager  SenderType = "manager"
	SenderSystem   SenderType = "system"
)

// MessageType distinguishes conversation message kinds
type MessageType string

const (
	MessageChat         MessageType = "chat"
	MessageStatusUpdate MessageType = "status_update"
	MessageNotification MessageType = "notification"
)

// Submission is the raw 5W+1H report input, immutable once created
type Submission struct {
	What                string        `json:"what"`
	Where               string        `json:"where"`
	When                string        `json:"when"`
	Who                 string        `json:"who"`
	How                 string        `json:"how"`
	EvidenceDescription string        `json:"evidenceDescription,omitempty"`
	ContactInfo         string        `json:"contactInfo,omitempty"`
	SourceChannel       SourceChannel `json:"sourceChannel,omitempty"`
}

// Classification is the rule-based classifier output
type Classification struct {
	Category           Category `json:"category"`
	CategoryConfidence float64  `json:"categoryConfidence"`
	Severity           Severity `json:"severity"`
	SeverityConfidence float64  `json:"severityConfidence"`
	RiskScore          float64  `json:"riskScore"`
	KeywordsFound      []string `json:"keywordsFound,omitempty"`
	AmountMentioned    string   `json:"amountMentioned,omitempty"`
}

// ValidationResult is the validator output. Errors block submission,
// warnings travel with the result for display only.
type ValidationResult struct {
	IsValid         bool     `json:"isValid"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	ComplianceScore float64  `json:"complianceScore"`
}

// RoutingResult assigns a report to an organizational unit with SLA
type RoutingResult struct {
	AssignedUnit     string    `json:"assignedUnit"`
	EscalationTo     string    `json:"escalationTo"`
	Priority         string    `json:"priority"`
	SLAHours         int       `json:"slaHours"`
	SLADeadline      time.Time `json:"slaDeadline"`
	NotificationList []string  `json:"notificationList"`
}

// Summary is the summarizer output
type Summary struct {
	Text            string   `json:"summary"`
	KeyPoints       []string `json:"keyPoints,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Report is the persisted aggregate. PINHash never leaves the store layer.
type Report struct {
	ID                  int64         `json:"-"`
	ReportID            string        `json:"reportId"`
	PINHash             string        `json:"-"`
	What                string        `json:"what"`
	Where               string        `json:"where"`
	When                string        `json:"when"`
	Who                 string        `json:"who"`
	How                 string        `json:"how"`
	EvidenceDescription string        `json:"evidenceDescription,omitempty"`
	Category            Category      `json:"category"`
	Severity            Severity      `json:"severity"`
	RiskScore           float64       `json:"riskScore"`
	Summary             string        `json:"summary,omitempty"`
	Status              Status        `json:"status"`
	AssignedUnit        string        `json:"assignedUnit,omitempty"`
	AssignedTo          *int64        `json:"assignedTo,omitempty"`
	ResolutionNotes     string        `json:"resolutionNotes,omitempty"`
	SourceChannel       SourceChannel `json:"sourceChannel"`
	ComplianceScore     float64       `json:"complianceScore"`
	SLADeadline         *time.Time    `json:"slaDeadline,omitempty"`
	AccessCount         int           `json:"-"`
	LastAccessedAt      *time.Time    `json:"-"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// ReportStatusView is the sanitized shape returned to a PIN-gated reporter.
// Narrative fields and hashes stay out.
type ReportStatusView struct {
	ReportID     string    `json:"reportId"`
	Status       Status    `json:"status"`
	StatusName   string    `json:"statusName"`
	Category     Category  `json:"category"`
	Severity     Severity  `json:"severity"`
	AssignedUnit string    `json:"assignedUnit,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StatusView builds the sanitized reporter view of r
func (r *Report) StatusView() ReportStatusView {
	return ReportStatusView{
		ReportID:     r.ReportID,
		Status:       r.Status,
		StatusName:   StatusDisplayName(r.Status),
		Category:     r.Category,
		Severity:     r.Severity,
		AssignedUnit: r.AssignedUnit,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// Conversation is the single pseudo-anonymous channel attached to a report
type Conversation struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"reportId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is one entry in a report conversation, append-only
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	SenderType     SenderType  `json:"senderType"`
	SenderID       *int64      `json:"senderId,omitempty"`
	Content        string      `json:"content"`
	MessageType    MessageType `json:"messageType"`
	IsRead         bool        `json:"isRead"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// User is a manager/investigator account
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"fullName"`
	Role         string     `json:"role"`
	Unit         string     `json:"unit,omitempty"`
	Email        string     `json:"email,omitempty"`
	IsActive     bool       `json:"isActive"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

// SubmitResult is what the orchestrator hands back to any adapter
type SubmitResult struct {
	Success         bool     `json:"success"`
	ReportID        string   `json:"reportId,omitempty"`
	PIN             string   `json:"pin,omitempty"`
	ComplianceScore float64  `json:"complianceScore,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Statistics aggregates dashboard counters
type Statistics struct {
	Total      int              `json:"total"`
	ByStatus   map[Status]int   `json:"byStatus"`
	ByCategory map[Category]int `json:"byCategory"`
	BySeverity map[Severity]int `json:"bySeverity"`
}
