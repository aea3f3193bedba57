package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/buemura/scamscan/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHistory(t *testing.T) {
	want := []types.ScanOutcome{{ID: "x"}}
	msg := LoadHistory(func(ctx context.Context) ([]types.ScanOutcome, error) {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return want, nil
	}, time.Second)()

	loaded, ok := msg.(HistoryLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, want, loaded.Outcomes)
	assert.NoError(t, loaded.Err)
}

func TestHistoryModelStates(t *testing.T) {
	tests := []struct {
		name string
		msg  HistoryLoadedMsg
		want string
	}{
		{"empty", HistoryLoadedMsg{}, "No analyses in history."},
		{"error", HistoryLoadedMsg{Err: errors.New("history is not configured")}, "History unavailable: history is not configured"},
		{"listed", HistoryLoadedMsg{Outcomes: []types.ScanOutcome{
			{Message: "Your parcel\nis waiting", Verdict: types.VerdictSuspicious, Confidence: 60},
		}}, "Your parcel is waiting"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewHistoryModel()
			assert.Contains(t, m.View(), "Loading history")

			updated, _ := m.Update(tt.msg)
			m = updated.(HistoryModel)
			assert.Contains(t, m.View(), tt.want)
		})
	}
}

func TestHistoryModelNavigateAndSelect(t *testing.T) {
	m := NewHistoryModel()
	assert.Nil(t, m.Selected())

	updated, _ := m.Update(HistoryLoadedMsg{Outcomes: []types.ScanOutcome{{ID: "1"}, {ID: "2"}}})
	m = updated.(HistoryModel)
	require.NotNil(t, m.Selected())
	assert.Equal(t, "1", m.Selected().ID)

	for _, k := range []string{"j", "j"} {
		updated, _ = m.Update(key(k))
		m = updated.(HistoryModel)
	}
	assert.Equal(t, "2", m.Selected().ID)

	updated, _ = m.Update(key("k"))
	m = updated.(HistoryModel)
	assert.Equal(t, "1", m.Selected().ID)

	_, cmd := m.Update(key("q"))
	assert.NotNil(t, cmd)
}
