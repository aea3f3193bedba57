package reports

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_MessageIsTrimmedAndNotDeduplicated(t *testing.T) {
	corpus := []types.ReportedItem{
		{Message: "  You won a prize "},
		{Message: "You won a prize"},
		{Message: "something else"},
	}

	got := Match("You won a prize\n", nil, corpus)
	require.Len(t, got, 2)
	for _, f := range got {
		assert.Equal(t, types.KindPattern, f.Kind)
		assert.Equal(t, types.SeverityHigh, f.Severity)
		assert.Equal(t, types.OriginUserReport, f.Origin)
		assert.Equal(t, 5, f.Weight())
	}
}

func TestMatch_URLs(t *testing.T) {
	corpus := []types.ReportedItem{
		{Message: "other", URLs: []string{"https://a.xyz", "https://b.xyz"}},
		{Message: "again", URLs: []string{"https://a.xyz"}},
	}

	got := Match("visit a.xyz", []string{"https://a.xyz"}, corpus)
	require.Len(t, got, 2)
	for _, f := range got {
		assert.Equal(t, types.KindURL, f.Kind)
		assert.Equal(t, "https://a.xyz", f.URL)
		assert.Equal(t, "This URL was reported as a threat by a user: https://a.xyz", f.Description)
	}
}

func TestMatch_EmptyMessagesNeverMatch(t *testing.T) {
	assert.Empty(t, Match("   ", nil, []types.ReportedItem{{Message: ""}, {Message: "  "}}))
	assert.Empty(t, Match("hello", nil, nil))
}

type fakeNarrator struct {
	replies map[string]string
	fail    map[string]bool
	calls   atomic.Int32
}

func (f *fakeNarrator) Analyze(_ context.Context, message string) (string, error) {
	f.calls.Add(1)
	if f.fail[message] {
		return "", errors.New("rate limited")
	}
	return f.replies[message], nil
}

const reply = `INSTANT VERDICT
Scam.

KEY FINDINGS
• Gift card payment request
• Impersonation of tech support
- Urgent deadline

REQUIRED ACTIONS
1. Ignore it`

func TestLearner_RunOnce(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(5)
	require.NoError(t, mem.AddReport(ctx, types.ReportedItem{Message: "pay with gift cards"}))
	require.NoError(t, mem.AddReport(ctx, types.ReportedItem{Message: "pay with gift cards"}))
	require.NoError(t, mem.AddReport(ctx, types.ReportedItem{Message: "broken"}))
	require.NoError(t, mem.AddReport(ctx, types.ReportedItem{Message: ""}))

	n := &fakeNarrator{
		replies: map[string]string{"pay with gift cards": reply},
		fail:    map[string]bool{"broken": true},
	}
	l := NewLearner(mem, mem, n, 0)

	added, err := l.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, int32(2), n.calls.Load())

	rules, err := mem.LearnedRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, types.DetectionRule{
		Kind:        types.RulePattern,
		Patterns:    []string{"Gift card payment request"},
		Severity:    types.SeverityHigh,
		Description: LearnedDescription,
	}, rules[0])
	assert.Equal(t, "Urgent deadline", rules[2].Patterns[0])

	added, err = l.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestLearner_SubmitIsNonBlocking(t *testing.T) {
	l := NewLearner(store.NewMemory(5), store.NewMemory(5), &fakeNarrator{}, 0)
	assert.True(t, l.Submit())
	assert.False(t, l.Submit())
	l.Stop()
}

func TestLearner_BackgroundRun(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory(5)
	require.NoError(t, mem.AddReport(ctx, types.ReportedItem{Message: "pay with gift cards"}))

	l := NewLearner(mem, mem, &fakeNarrator{replies: map[string]string{"pay with gift cards": reply}}, time.Second)
	l.Start(ctx)
	l.Start(ctx)
	defer l.Stop()

	l.Submit()

	assert.Eventually(t, func() bool {
		rules, _ := mem.LearnedRules(ctx)
		return len(rules) == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLearner_StopWaitsForWorker(t *testing.T) {
	l := NewLearner(store.NewMemory(5), store.NewMemory(5), &fakeNarrator{}, 0)
	l.Start(context.Background())
	l.Stop()
	l.Stop()

	select {
	case <-l.done:
	default:
		t.Fatal("worker still running after Stop")
	}
}

func TestPhrases(t *testing.T) {
	text := "KEY FINDINGS\n• a\n• one\n• two\n• three\n• four\n• five\n• six"
	assert.Equal(t, []string{"one", "two", "three", "four", "five"}, Phrases(text))
	assert.Empty(t, Phrases("nothing here"))
}
