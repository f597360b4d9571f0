package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := OpenLocalStore(filepath.Join(t.TempDir(), "test-local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLocalStoreSetGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(KeyTheme, "dark"))

	value, ok, err := store.Get(KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", value)
}

func TestLocalStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStoreOverwrite(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(KeyLanguage, "en"))
	require.NoError(t, store.Set(KeyLanguage, "fil"))

	value, ok, err := store.Get(KeyLanguage)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fil", value)
}

func TestLocalStoreDelete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Delete("k"))

	_, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLockoutEndRoundTrip(t *testing.T) {
	store := newTestStore(t)
	key := LockoutKey("otp-resend", "user@iayos.test")

	end := time.Now().Add(90 * time.Second).Truncate(time.Second)
	require.NoError(t, store.SetLockoutEnd(key, end))

	got, ok, err := store.LockoutEnd(key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, end.Unix(), got.Unix())
}

func TestLockoutEndCorruptValue(t *testing.T) {
	store := newTestStore(t)
	key := LockoutKey("otp-resend", "user@iayos.test")

	require.NoError(t, store.Set(key, "not-a-timestamp"))

	_, ok, err := store.LockoutEnd(key)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt value must read as absent")

	// And the corrupt row is removed.
	_, present, err := store.Get(key)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestLockoutKey(t *testing.T) {
	assert.Equal(t, "lockout:otp-resend:a@b.c", LockoutKey("otp-resend", "a@b.c"))
}
