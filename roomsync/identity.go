package roomsync

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Identity persists the client-side values that survive restarts: one
// user id per room, and the last display name used anywhere. This is
// the local-storage analog of the browser clients; losing it only means
// joining as a fresh participant next time.
type Identity interface {
	UserID(roomID string) string
	SetUserID(roomID, userID string)
	ClearUserID(roomID string)
	UserName() string
	SetUserName(name string)
}

type identityFile struct {
	UserName string            `json:"userName"`
	UserIDs  map[string]string `json:"userIds"`
}

// FileIdentity stores identity as a JSON file under a state directory.
type FileIdentity struct {
	mutex sync.Mutex
	path  string
	data  identityFile
}

// NewFileIdentity loads (or initializes) identity state from
// dir/identity.json.
func NewFileIdentity(dir string) *FileIdentity {
	id := &FileIdentity{
		path: filepath.Join(dir, "identity.json"),
		data: identityFile{UserIDs: make(map[string]string)},
	}

	raw, err := os.ReadFile(id.path)
	if err == nil {
		if err := json.Unmarshal(raw, &id.data); err != nil {
			log.Warn().Err(err).Str("path", id.path).Msg("corrupt identity file, starting fresh")
		}
	}
	if id.data.UserIDs == nil {
		id.data.UserIDs = make(map[string]string)
	}
	return id
}

func (f *FileIdentity) UserID(roomID string) string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.data.UserIDs[roomID]
}

func (f *FileIdentity) SetUserID(roomID, userID string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.data.UserIDs[roomID] = userID
	f.save()
}

func (f *FileIdentity) ClearUserID(roomID string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	delete(f.data.UserIDs, roomID)
	f.save()
}

func (f *FileIdentity) UserName() string {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.data.UserName
}

func (f *FileIdentity) SetUserName(name string) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.data.UserName = name
	f.save()
}

func (f *FileIdentity) save() {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("failed to encode identity")
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		log.Error().Err(err).Str("path", f.path).Msg("failed to create state dir")
		return
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		log.Error().Err(err).Str("path", f.path).Msg("failed to write identity")
	}
}

// MemoryIdentity keeps identity in memory only. Used in tests and for
// one-shot sessions.
type MemoryIdentity struct {
	mutex    sync.Mutex
	userName string
	userIDs  map[string]string
}

func NewMemoryIdentity() *MemoryIdentity {
	return &MemoryIdentity{userIDs: make(map[string]string)}
}

func (m *MemoryIdentity) UserID(roomID string) string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.userIDs[roomID]
}

func (m *MemoryIdentity) SetUserID(roomID, userID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.userIDs[roomID] = userID
}

func (m *MemoryIdentity) ClearUserID(roomID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.userIDs, roomID)
}

func (m *MemoryIdentity) UserName() string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.userName
}

func (m *MemoryIdentity) SetUserName(name string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.userName = name
}
