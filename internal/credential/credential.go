// Package credential issues and verifies the pseudo-anonymous reporter
// access pair: a WBS-{year}-{seq} report ID and a 6-digit PIN. Only a
// salted bcrypt hash of the PIN is ever stored.
package credential

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"wbs/internal/store"
)

// ErrInvalidAccess is the single failure returned for any verification
// mismatch. It deliberately never says whether the report ID or the PIN
// was the wrong half.
var ErrInvalidAccess = errors.New("report ID atau PIN tidak valid")

// ReportIDPattern matches issued report identifiers.
var ReportIDPattern = regexp.MustCompile(`^WBS-\d{4}-\d{6}$`)

// Manager issues report IDs and PINs against a store.
type Manager struct {
	store store.Store
	now   func() time.Time
}

// NewManager creates a credential manager. The clock is injectable for tests.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s, now: time.Now}
}

// WithClock overrides the clock source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue allocates the next report ID for the current year and generates a
// fresh PIN. The returned hash must be persisted with the report; the
// plaintext PIN is shown to the reporter once and never stored.
func (m *Manager) Issue(ctx context.Context) (reportID, pin, pinHash string, err error) {
	year := m.now().Year()
	seq, err := m.store.NextSequenceForYear(ctx, year)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to allocate report ID: %w", err)
	}

	reportID = fmt.Sprintf("WBS-%d-%06d", year, seq)

	pin, err = GeneratePIN()
	if err != nil {
		return "", "", "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to hash PIN: %w", err)
	}

	return reportID, pin, string(hash), nil
}

// Verify checks a candidate PIN against the stored hash. On success the
// report's access metadata is bumped. Every failure mode collapses into
// ErrInvalidAccess.
func (m *Manager) Verify(ctx context.Context, reportID, candidatePIN string) error {
	if !ReportIDPattern.MatchString(reportID) || len(candidatePIN) != 6 {
		return ErrInvalidAccess
	}

	hash, err := m.store.GetCredential(ctx, reportID)
	if err != nil {
		return ErrInvalidAccess
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidatePIN)); err != nil {
		return ErrInvalidAccess
	}

	if err := m.store.TouchAccess(ctx, reportID); err != nil {
		return fmt.Errorf("failed to record access: %w", err)
	}
	return nil
}

// GeneratePIN draws 6 decimal digits from crypto/rand.
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
