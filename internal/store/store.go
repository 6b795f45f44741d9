// Package store defines the persistence contract the pipeline depends on
// and its two implementations (postgres, memory) selected by configuration.
package store

import (
	"context"
	"errors"

	"wbs/internal/model"
)

// ErrNotFound is returned when a report, conversation or user does not exist.
var ErrNotFound = errors.New("not found")

// ListFilter narrows report listings for the manager dashboard.
type ListFilter struct {
	Status   model.Status
	Category model.Category
	Limit    int
}

// Store is the single persistence contract. Both backends must satisfy the
// shared contract test in contract_test.go.
type Store interface {
	// NextSequenceForYear atomically allocates the next report sequence
	// number for a calendar year. This is the one ordering guarantee the
	// core needs from its environment: concurrent callers never observe
	// the same value.
	NextSequenceForYear(ctx context.Context, year int) (int, error)

	InsertReport(ctx context.Context, r *model.Report) error
	GetReport(ctx context.Context, reportID string) (*model.Report, error)
	ListReports(ctx context.Context, f ListFilter) ([]model.Report, error)
	UpdateStatus(ctx context.Context, reportID string, status model.Status, notes string) error
	AssignInvestigator(ctx context.Context, reportID string, userID int64) error

	// StoreCredential replaces the access credential of an existing report.
	StoreCredential(ctx context.Context, reportID, pinHash, contactInfo string) error
	// GetCredential returns the stored PIN hash for verification.
	GetCredential(ctx context.Context, reportID string) (string, error)
	// TouchAccess records a successful credential verification.
	TouchAccess(ctx context.Context, reportID string) error

	GetOrCreateConversation(ctx context.Context, reportID string) (*model.Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, senderType model.SenderType, senderID *int64, content string, messageType model.MessageType) (*model.Message, error)
	ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error)
	// MarkRead flips unread messages from the party opposite to readerRole.
	// A reader never marks their own messages.
	MarkRead(ctx context.Context, conversationID string, readerRole model.SenderType) (int, error)

	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	TouchLastLogin(ctx context.Context, userID int64) error

	GetStatistics(ctx context.Context) (*model.Statistics, error)

	Close()
}
