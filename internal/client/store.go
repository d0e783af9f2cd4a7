package client

import "sync"

// CredentialStore holds the session token between requests.
type CredentialStore interface {
	Get() (string, bool)
	Set(token string)
	Clear()
}

// MemoryStore is a process-local CredentialStore.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MemoryStore) Clear() {
	m.Set("")
}
