package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	s, err := Open("oxy_scroll_session_test")
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.Load("page")
	require.NoError(t, err)
	assert.False(t, ok)

	saved := State{Page: "page", Offset: 1234, Fraction: 0.4, SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	require.NoError(t, s.Save(saved))

	got, ok, err := s.Load("page")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved.Offset, got.Offset)
	assert.Equal(t, saved.Fraction, got.Fraction)
	assert.True(t, saved.SavedAt.Equal(got.SavedAt))
}

func TestStoreIgnoresOtherPages(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Save(State{Page: "a", Offset: 10}))

	_, ok, err := s.Load("b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	s := NewStore(nil)
	_, ok, err := s.Load("page")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(State{Page: "page", Offset: 5}))
	got, ok, err := s.Load("page")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float32(5), got.Offset)
	assert.False(t, got.SavedAt.IsZero())
}
