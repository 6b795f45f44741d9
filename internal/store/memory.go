package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"wbs/internal/model"
)

// Memory is the in-process Store used when no database is configured and in
// tests. All maps are guarded by one mutex; sequence allocation is therefore
// trivially atomic.
type Memory struct {
	mu            sync.Mutex
	reports       map[string]*model.Report
	contacts      map[string]string
	conversations map[string]*model.Conversation
	convByReport  map[string]string
	messages      map[string][]*model.Message
	users         map[int64]*model.User
	sequences     map[int]int
	nextReportPK  int64
	nextUserID    int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		reports:       make(map[string]*model.Report),
		contacts:      make(map[string]string),
		conversations: make(map[string]*model.Conversation),
		convByReport:  make(map[string]string),
		messages:      make(map[string][]*model.Message),
		users:         make(map[int64]*model.User),
		sequences:     make(map[int]int),
	}
}

func (m *Memory) NextSequenceForYear(ctx context.Context, year int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[year]++
	return m.sequences[year], nil
}

func (m *Memory) InsertReport(ctx context.Context, r *model.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextReportPK++
	r.ID = m.nextReportPK
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	cp := *r
	m.reports[r.ReportID] = &cp
	return nil
}

func (m *Memory) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *Memory) ListReports(ctx context.Context, f ListFilter) ([]model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Report
	for _, r := range m.reports {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Memory) UpdateStatus(ctx context.Context, reportID string, status model.Status, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	if notes != "" {
		r.ResolutionNotes = notes
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) AssignInvestigator(ctx context.Context, reportID string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	r.AssignedTo = &userID
	r.UpdatedAt = time.Now()
	return nil
}

func (m *Memory) StoreCredential(ctx context.Context, reportID, pinHash, contactInfo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	r.PINHash = pinHash
	m.contacts[reportID] = contactInfo
	return nil
}

func (m *Memory) GetCredential(ctx context.Context, reportID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return "", ErrNotFound
	}
	return r.PINHash, nil
}

func (m *Memory) TouchAccess(ctx context.Context, reportID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	r.AccessCount++
	now := time.Now()
	r.LastAccessedAt = &now
	return nil
}

func (m *Memory) GetOrCreateConversation(ctx context.Context, reportID string) (*model.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reports[reportID]; !ok {
		return nil, ErrNotFound
	}
	if id, ok := m.convByReport[reportID]; ok {
		cp := *m.conversations[id]
		return &cp, nil
	}

	conv := &model.Conversation{
		ID:        ulid.Make().String(),
		ReportID:  reportID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.conversations[conv.ID] = conv
	m.convByReport[reportID] = conv.ID
	cp := *conv
	return &cp, nil
}

func (m *Memory) AppendMessage(ctx context.Context, conversationID string, senderType model.SenderType, senderID *int64, content string, messageType model.MessageType) (*model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}

	msg := &model.Message{
		ID:             ulid.Make().String(),
		ConversationID: conversationID,
		SenderType:     senderType,
		SenderID:       senderID,
		Content:        content,
		MessageType:    messageType,
		CreatedAt:      time.Now(),
	}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	conv.UpdatedAt = time.Now()
	cp := *msg
	return &cp, nil
}

func (m *Memory) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.messages[conversationID]
	if offset > len(msgs) {
		offset = len(msgs)
	}
	msgs = msgs[offset:]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := make([]model.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = *msg
	}
	return out, nil
}

func (m *Memory) MarkRead(ctx context.Context, conversationID string, readerRole model.SenderType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The reporter reads manager messages and vice versa. System messages
	// count as manager-side notices for the reporter.
	opposite := model.SenderReporter
	if readerRole == model.SenderReporter {
		opposite = model.SenderManager
	}

	count := 0
	for _, msg := range m.messages[conversationID] {
		if !msg.IsRead && (msg.SenderType == opposite || (readerRole == model.SenderReporter && msg.SenderType == model.SenderSystem)) {
			msg.IsRead = true
			count++
		}
	}
	return count, nil
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) CreateUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u.ID = m.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) TouchLastLogin(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

func (m *Memory) GetStatistics(ctx context.Context) (*model.Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &model.Statistics{
		Total:      len(m.reports),
		ByStatus:   make(map[model.Status]int),
		ByCategory: make(map[model.Category]int),
		BySeverity: make(map[model.Severity]int),
	}
	for _, r := range m.reports {
		stats.ByStatus[r.Status]++
		stats.ByCategory[r.Category]++
		stats.BySeverity[r.Severity]++
	}
	return stats, nil
}

func (m *Memory) Close() {}
