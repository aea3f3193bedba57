package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/buemura/scamscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAnalyzer struct {
	delay time.Duration
	panic bool
}

func (m mockAnalyzer) Analyze(_ context.Context, message string) types.ScanOutcome {
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panic {
		panic("boom")
	}
	return types.ScanOutcome{
		ID:         "outcome-1",
		Message:    message,
		Verdict:    types.VerdictScam,
		Confidence: 79,
		Findings:   []types.Finding{{Kind: types.KindKeyword, Severity: types.SeverityHigh}},
	}
}

func waitForStatus(t *testing.T, m *Manager, id string, status JobStatus) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		j, err := m.Get(id)
		if err != nil {
			return false
		}
		job = j
		return j.Status == status
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestCreate_ReturnsPendingJob(t *testing.T) {
	m := NewManager(mockAnalyzer{}, 0)

	job := m.Create("urgent")

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, "urgent", job.Message)
	assert.False(t, job.CreatedAt.IsZero())
	assert.Nil(t, job.Outcome)
}

func TestStartAndComplete(t *testing.T) {
	m := NewManager(mockAnalyzer{}, time.Second)

	job := m.Create("urgent")
	require.NoError(t, m.Start(job.ID))

	done := waitForStatus(t, m, job.ID, StatusCompleted)
	require.NotNil(t, done.Outcome)
	assert.Equal(t, types.VerdictScam, done.Outcome.Verdict)
	assert.Equal(t, 1, done.FindingCount())
	assert.False(t, done.CompletedAt.IsZero())
}

func TestStart_RunningWhileAnalyzing(t *testing.T) {
	m := NewManager(mockAnalyzer{delay: 100 * time.Millisecond}, 0)
	job := m.Create("x")
	require.NoError(t, m.Start(job.ID))

	got, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.Status)

	waitForStatus(t, m, job.ID, StatusCompleted)
}

func TestExecute_RecoversPanic(t *testing.T) {
	m := NewManager(mockAnalyzer{panic: true}, 0)
	job := m.Create("x")
	require.NoError(t, m.Start(job.ID))

	failed := waitForStatus(t, m, job.ID, StatusFailed)
	assert.Contains(t, failed.Error, "boom")
}

func TestGet_NotFound(t *testing.T) {
	m := NewManager(mockAnalyzer{}, 0)
	_, err := m.Get("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_ReturnsSnapshot(t *testing.T) {
	m := NewManager(mockAnalyzer{}, 0)
	job := m.Create("x")
	require.NoError(t, m.Start(job.ID))
	done := waitForStatus(t, m, job.ID, StatusCompleted)

	done.Outcome.Verdict = types.VerdictSafe

	again, err := m.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.VerdictScam, again.Outcome.Verdict)
}

func TestSetOutcome(t *testing.T) {
	m := NewManager(mockAnalyzer{}, 0)
	job := m.Create("x")

	updated, err := m.SetOutcome(job.ID, types.ScanOutcome{Verdict: types.VerdictSuspicious})
	require.NoError(t, err)
	assert.Equal(t, types.VerdictSuspicious, updated.Outcome.Verdict)

	_, err = m.SetOutcome("missing", types.ScanOutcome{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_SortedByCreatedAtDesc(t *testing.T) {
	m := NewManager(mockAnalyzer{}, 0)

	// Override UUID generator for deterministic IDs.
	counter := 0
	origUUID := newUUID
	newUUID = func() string {
		counter++
		return fmt.Sprintf("job-%d", counter)
	}
	defer func() { newUUID = origUUID }()

	j1 := m.Create("a")
	time.Sleep(time.Millisecond)
	j2 := m.Create("b")

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, j2.ID, list[0].ID)
	assert.Equal(t, j1.ID, list[1].ID)
}

func TestDelete(t *testing.T) {
	m := NewManager(mockAnalyzer{}, 0)
	job := m.Create("x")

	require.NoError(t, m.Delete(job.ID))
	_, err := m.Get(job.ID)
	assert.Error(t, err)

	assert.ErrorIs(t, m.Delete("nonexistent"), ErrNotFound)
}

func TestStart_InvalidJobID(t *testing.T) {
	m := NewManager(mockAnalyzer{}, 0)
	err := m.Start("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
