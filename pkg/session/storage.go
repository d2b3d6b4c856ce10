package session

import (
	"sync"

	"github.com/pratik-mahalle/linkboost/pkg/client"
)

// Storage persists the session between runs
type Storage interface {
	// Load returns the saved token and user; both are zero when nothing is saved
	Load() (string, *client.User, error)
	Save(token string, user *client.User) error
	Clear() error
}

// MemoryStorage keeps the session in process memory
type MemoryStorage struct {
	mu    sync.Mutex
	token string
	user  *client.User
}

// NewMemoryStorage creates an empty storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load() (string, *client.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, copyUser(m.user), nil
}

func (m *MemoryStorage) Save(token string, user *client.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.user = copyUser(user)
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	return nil
}

func copyUser(u *client.User) *client.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
