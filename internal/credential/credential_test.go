package credential

import (
	"context"
	"regexp"
	"testing"
	"time"

	"wbs/internal/model"
	"wbs/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, 6, 1, 12, 0, 0, 0, time.UTC)
	}
}

func TestIssue_SequentialIDs(t *testing.T) {
	m := NewManager(store.NewMemory()).WithClock(fixedClock(2026))
	ctx := context.Background()

	first, pin1, hash1, err := m.Issue(ctx)
	require.NoError(t, err)
	second, pin2, _, err := m.Issue(ctx)
	require.NoError(t, err)

	assert.Equal(t, "WBS-2026-000001", first)
	assert.Equal(t, "WBS-2026-000002", second)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), pin1)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), pin2)
	assert.NotEqual(t, pin1, hash1)
	assert.True(t, len(hash1) > 50) // bcrypt hash, never the raw PIN
}

func TestIssue_SequencePerYear(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	m := NewManager(st).WithClock(fixedClock(2026))
	first, _, _, err := m.Issue(ctx)
	require.NoError(t, err)

	m = m.WithClock(fixedClock(2027))
	second, _, _, err := m.Issue(ctx)
	require.NoError(t, err)

	assert.Equal(t, "WBS-2026-000001", first)
	assert.Equal(t, "WBS-2027-000001", second)
}

func TestVerify(t *testing.T) {
	st := store.NewMemory()
	m := NewManager(st).WithClock(fixedClock(2026))
	ctx := context.Background()

	reportID, pin, hash, err := m.Issue(ctx)
	require.NoError(t, err)
	require.NoError(t, st.InsertReport(ctx, &model.Report{
		ReportID: reportID,
		PINHash:  hash,
		Status:   model.StatusSubmitted,
	}))

	assert.NoError(t, m.Verify(ctx, reportID, pin))

	wrongPIN := "000000"
	if pin == wrongPIN {
		wrongPIN = "000001"
	}
	assert.ErrorIs(t, m.Verify(ctx, reportID, wrongPIN), ErrInvalidAccess)
}

func TestVerify_MalformedInput(t *testing.T) {
	m := NewManager(store.NewMemory())
	ctx := context.Background()

	assert.ErrorIs(t, m.Verify(ctx, "WBS-26-1", "123456"), ErrInvalidAccess)
	assert.ErrorIs(t, m.Verify(ctx, "WBS-2026-000001", "12345"), ErrInvalidAccess)
	assert.ErrorIs(t, m.Verify(ctx, "", ""), ErrInvalidAccess)
}

func TestVerify_UnknownReport(t *testing.T) {
	m := NewManager(store.NewMemory())

	err := m.Verify(context.Background(), "WBS-2026-000099", "123456")
	assert.ErrorIs(t, err, ErrInvalidAccess)
}

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 20; i++ {
		pin, err := GeneratePIN()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), pin)
	}
}
