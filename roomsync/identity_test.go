package roomsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileIdentityPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewFileIdentity(dir)
	first.SetUserID("r1", "user-abc")
	first.SetUserName("Alice")

	second := NewFileIdentity(dir)
	assert.Equal(t, "user-abc", second.UserID("r1"))
	assert.Equal(t, "Alice", second.UserName())
	assert.Empty(t, second.UserID("other-room"))
}

func TestFileIdentityClearUserID(t *testing.T) {
	dir := t.TempDir()

	id := NewFileIdentity(dir)
	id.SetUserID("r1", "user-abc")
	id.ClearUserID("r1")

	reloaded := NewFileIdentity(dir)
	assert.Empty(t, reloaded.UserID("r1"))
}

func TestFileIdentitySurvivesCorruptFile(t *testing.T) {
	dir := t.TempDir()

	first := NewFileIdentity(dir)
	first.SetUserID("r1", "user-abc")

	// Overwrite with junk; a fresh load starts clean instead of failing.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "identity.json"), []byte("{not json"), 0o644))
	second := NewFileIdentity(dir)
	require.NotNil(t, second)
	second.SetUserName("Bob")
	assert.Equal(t, "Bob", second.UserName())
}

func TestNewClientIDShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewClientID()
		assert.Len(t, id, 13)
		assert.False(t, seen[id], "ids must not repeat")
		seen[id] = true
	}
}
