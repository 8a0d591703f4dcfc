package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	deckerr "Deckframe/internal/errors"
)

type memUser struct {
	id                    int
	login, email, pwdHash string
}

// MemoryRepository keeps everything in process memory. It backs the
// server when no DATABASE_URL is configured, and the tests.
type MemoryRepository struct {
	mu       sync.Mutex
	users    []memUser
	projects map[uuid.UUID]Project
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{projects: make(map[uuid.UUID]Project)}
}

func (m *MemoryRepository) CreateUser(_ context.Context, login, email, password string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.login == login || u.email == email {
			return 0, deckerr.New(deckerr.ErrCodeInvalidInput, "user %q already exists", login)
		}
	}
	id := len(m.users) + 1
	m.users = append(m.users, memUser{id: id, login: login, email: email, pwdHash: password})
	return id, nil
}

func (m *MemoryRepository) GetBylogin(_ context.Context, login string) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.login == login {
			return u.id, u.pwdHash, nil
		}
	}
	return 0, "", deckerr.New(deckerr.ErrCodeNotFound, "user %q not found", login)
}

func (m *MemoryRepository) CreateProject(_ context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	m.projects[p.ID] = *p
	return nil
}

func (m *MemoryRepository) GetProject(_ context.Context, ownerID int, id uuid.UUID) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.OwnerID != ownerID {
		return nil, deckerr.New(deckerr.ErrCodeNotFound, "project %s not found", id)
	}
	return &p, nil
}

func (m *MemoryRepository) ListProjects(_ context.Context, ownerID int) ([]Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Project{}
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MemoryRepository) UpdateProject(_ context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.projects[p.ID]
	if !ok || old.OwnerID != p.OwnerID {
		return deckerr.New(deckerr.ErrCodeNotFound, "project %s not found", p.ID)
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.projects[p.ID] = *p
	return nil
}

func (m *MemoryRepository) DeleteProject(_ context.Context, ownerID int, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok || p.OwnerID != ownerID {
		return deckerr.New(deckerr.ErrCodeNotFound, "project %s not found", id)
	}
	delete(m.projects, id)
	return nil
}
