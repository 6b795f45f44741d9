package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"wbs/internal/model"
)

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// NextSequenceForYear allocates the next report number for a year through an
// upsert on report_sequences. The row-level lock serializes concurrent
// submitters, so no two callers ever see the same value.
func (p *Postgres) NextSequenceForYear(ctx context.Context, year int) (int, error) {
	var seq int
	err := p.pool.QueryRow(ctx,
		`INSERT INTO report_sequences (year, seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = report_sequences.seq + 1
		RETURNING seq`,
		year,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate report sequence: %w", err)
	}
	return seq, nil
}

const reportColumns = `id, report_id, pin_hash, what, where_location, when_time,
	who_involved, how_method, evidence_description, category, severity,
	risk_score, summary, status, assigned_unit, assigned_to, resolution_notes,
	source_channel, compliance_score, sla_deadline, access_count,
	last_accessed_at, created_at, updated_at`

func scanReport(row pgx.Row) (*model.Report, error) {
	var r model.Report
	err := row.Scan(
		&r.ID, &r.ReportID, &r.PINHash, &r.What, &r.Where, &r.When,
		&r.Who, &r.How, &r.EvidenceDescription, &r.Category, &r.Severity,
		&r.RiskScore, &r.Summary, &r.Status, &r.AssignedUnit, &r.AssignedTo,
		&r.ResolutionNotes, &r.SourceChannel, &r.ComplianceScore, &r.SLADeadline,
		&r.AccessCount, &r.LastAccessedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) InsertReport(ctx context.Context, r *model.Report) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO reports (
			report_id, pin_hash, what, where_location, when_time, who_involved,
			how_method, evidence_description, category, severity, risk_score,
			summary, status, assigned_unit, assigned_to, resolution_notes,
			source_channel, compliance_score, sla_deadline
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`,
		r.ReportID, r.PINHash, r.What, r.Where, r.When, r.Who,
		r.How, r.EvidenceDescription, r.Category, r.Severity, r.RiskScore,
		r.Summary, r.Status, r.AssignedUnit, r.AssignedTo, r.ResolutionNotes,
		r.SourceChannel, r.ComplianceScore, r.SLADeadline,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (p *Postgres) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	row := p.pool.QueryRow(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE report_id = $1",
		reportID,
	)
	return scanReport(row)
}

func (p *Postgres) ListReports(ctx context.Context, f ListFilter) ([]model.Report, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	query := "SELECT " + reportColumns + " FROM reports WHERE 1=1"
	args := []interface{}{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *r)
	}
	return reports, rows.Err()
}

func (p *Postgres) UpdateStatus(ctx context.Context, reportID string, status model.Status, notes string) error {
	result, err := p.pool.Exec(ctx,
		`UPDATE reports SET status = $2,
			resolution_notes = CASE WHEN $3 = '' THEN resolution_notes ELSE $3 END,
			updated_at = NOW()
		WHERE report_id = $1`,
		reportID, status, notes,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) AssignInvestigator(ctx context.Context, reportID string, userID int64) error {
	result, err := p.pool.Exec(ctx,
		"UPDATE reports SET assigned_to = $2, updated_at = NOW() WHERE report_id = $1",
		reportID, userID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) StoreCredential(ctx context.Context, reportID, pinHash, contactInfo string) error {
	result, err := p.pool.Exec(ctx,
		"UPDATE reports SET pin_hash = $2, contact_info = $3, updated_at = NOW() WHERE report_id = $1",
		reportID, pinHash, contactInfo,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetCredential(ctx context.Context, reportID string) (string, error) {
	var hash string
	err := p.pool.QueryRow(ctx,
		"SELECT pin_hash FROM reports WHERE report_id = $1",
		reportID,
	).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return hash, err
}

func (p *Postgres) TouchAccess(ctx context.Context, reportID string) error {
	_, err := p.pool.Exec(ctx,
		"UPDATE reports SET access_count = access_count + 1, last_accessed_at = NOW() WHERE report_id = $1",
		reportID,
	)
	return err
}

func (p *Postgres) GetOrCreateConversation(ctx context.Context, reportID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := p.pool.QueryRow(ctx,
		"SELECT id, report_id, created_at, updated_at FROM conversations WHERE report_id = $1",
		reportID,
	).Scan(&conv.ID, &conv.ReportID, &conv.CreatedAt, &conv.UpdatedAt)
	if err == nil {
		return &conv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if _, err := p.GetReport(ctx, reportID); err != nil {
		return nil, err
	}

	id := ulid.Make().String()
	err = p.pool.QueryRow(ctx,
		`INSERT INTO conversations (id, report_id) VALUES ($1, $2)
		RETURNING id, report_id, created_at, updated_at`,
		id, reportID,
	).Scan(&conv.ID, &conv.ReportID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, nil
}

func (p *Postgres) AppendMessage(ctx context.Context, conversationID string, senderType model.SenderType, senderID *int64, content string, messageType model.MessageType) (*model.Message, error) {
	var msg model.Message
	err := p.pool.QueryRow(ctx,
		`INSERT INTO messages (id, conversation_id, sender_type, sender_id, content, message_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, conversation_id, sender_type, sender_id, content, message_type, is_read, created_at`,
		ulid.Make().String(), conversationID, senderType, senderID, content, messageType,
	).Scan(&msg.ID, &msg.ConversationID, &msg.SenderType, &msg.SenderID,
		&msg.Content, &msg.MessageType, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}

	_, _ = p.pool.Exec(ctx,
		"UPDATE conversations SET updated_at = NOW() WHERE id = $1",
		conversationID,
	)
	return &msg, nil
}

func (p *Postgres) ListMessages(ctx context.Context, conversationID string, limit, offset int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, conversation_id, sender_type, sender_id, content, message_type, is_read, created_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		conversationID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderType, &msg.SenderID,
			&msg.Content, &msg.MessageType, &msg.IsRead, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (p *Postgres) MarkRead(ctx context.Context, conversationID string, readerRole model.SenderType) (int, error) {
	senderTypes := []string{string(model.SenderReporter)}
	if readerRole == model.SenderReporter {
		senderTypes = []string{string(model.SenderManager), string(model.SenderSystem)}
	}

	result, err := p.pool.Exec(ctx,
		`UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1 AND sender_type = ANY($2) AND is_read = FALSE`,
		conversationID, senderTypes,
	)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return p.getUser(ctx, "username = $1", username)
}

func (p *Postgres) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return p.getUser(ctx, "id = $1", id)
}

func (p *Postgres) getUser(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	var u model.User
	err := p.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, full_name, role, unit, email, is_active, created_at, last_login
		FROM users WHERE `+where,
		arg,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Role,
		&u.Unit, &u.Email, &u.IsActive, &u.CreatedAt, &u.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, full_name, role, unit, email, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		u.Username, u.PasswordHash, u.FullName, u.Role, u.Unit, u.Email, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (p *Postgres) TouchLastLogin(ctx context.Context, userID int64) error {
	_, err := p.pool.Exec(ctx,
		"UPDATE users SET last_login = NOW() WHERE id = $1",
		userID,
	)
	return err
}

func (p *Postgres) GetStatistics(ctx context.Context) (*model.Statistics, error) {
	stats := &model.Statistics{
		ByStatus:   make(map[model.Status]int),
		ByCategory: make(map[model.Category]int),
		BySeverity: make(map[model.Severity]int),
	}

	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM reports").Scan(&stats.Total); err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx,
		"SELECT status, category, severity, COUNT(*) FROM reports GROUP BY status, category, severity")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status model.Status
		var category model.Category
		var severity model.Severity
		var count int
		if err := rows.Scan(&status, &category, &severity, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] += count
		stats.ByCategory[category] += count
		stats.BySeverity[severity] += count
	}
	return stats, rows.Err()
}
