package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/ghostkeys/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "ghostkeys.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func record(source string, ended time.Time) model.SessionRecord {
	return model.SessionRecord{
		StartedAt:   ended.Add(-time.Minute),
		EndedAt:     ended,
		Outcome:     model.OutcomeCompleted,
		Source:      source,
		Target:      "preview",
		WPM:         60,
		ErrorRate:   0.03,
		TotalChars:  300,
		TypedChars:  300,
		Mistakes:    4,
		ThinkPauses: 2,
		DurationMs:  time.Minute.Milliseconds(),
	}
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.InsertSession(ctx, record("notes.md", base.Add(time.Duration(i)*time.Hour)), nil)
		require.NoError(t, err)
		_, err = uuid.Parse(id)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := st.InsertSession(ctx, record("other.md", base.Add(10*time.Hour)), nil)
	require.NoError(t, err)

	all, err := st.ListSessions(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].EndedAt.Before(all[3].EndedAt))
	assert.Equal(t, ids[0], all[0].ID)
	assert.Equal(t, 300, all[0].TypedChars)
	assert.Equal(t, "preview", all[0].Target)

	bySource, err := st.ListSessions(ctx, model.HistoryConfig{Source: "notes.md", Last: 2})
	require.NoError(t, err)
	require.Len(t, bySource, 2)
	assert.Equal(t, ids[1], bySource[0].ID)
	assert.Equal(t, ids[2], bySource[1].ID)

	since := base.Add(90 * time.Minute)
	recent, err := st.ListSessions(ctx, model.HistoryConfig{Since: &since})
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestInsertSession_KeepsGivenID(t *testing.T) {
	st := openTestStore(t)
	rec := record("a", time.Now())
	rec.ID = "fixed-id"
	id, err := st.InsertSession(context.Background(), rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	_, err = st.InsertSession(context.Background(), rec, nil)
	assert.Error(t, err)
}

func TestClassAggregates(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	var a, b model.ClassAggregate
	a.Class, b.Class = "letter", "letter"
	a.Add(100 * time.Millisecond)
	a.Add(300 * time.Millisecond)
	b.Add(50 * time.Millisecond)
	space := model.ClassAggregate{Class: "space"}
	space.Add(250 * time.Millisecond)

	id1, err := st.InsertSession(ctx, record("x", time.Now()), []model.ClassAggregate{a, space, {Class: "digit"}})
	require.NoError(t, err)
	id2, err := st.InsertSession(ctx, record("x", time.Now()), []model.ClassAggregate{b})
	require.NoError(t, err)

	aggs, err := st.ClassAggregates(ctx, []string{id1, id2})
	require.NoError(t, err)
	require.Len(t, aggs, 2)

	letter := aggs[0]
	assert.Equal(t, "letter", letter.Class)
	assert.EqualValues(t, 3, letter.Count)
	assert.InDelta(t, 150, letter.MeanMs(), 1e-9)
	assert.InDelta(t, 50, letter.MinMs, 1e-9)
	assert.InDelta(t, 300, letter.MaxMs, 1e-9)
	assert.Equal(t, "space", aggs[1].Class)

	none, err := st.ClassAggregates(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
