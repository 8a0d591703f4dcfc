package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"

	deckerr "Deckframe/internal/errors"
)

var _ Repository = (*MemoryRepository)(nil)
var _ Repository = (*PostgresUserRepository)(nil)

func TestMemoryUsers(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, err := m.CreateUser(ctx, "ana", "ana@example.com", "h")
	if err != nil || id != 1 {
		t.Fatalf("CreateUser() = %d, %v", id, err)
	}
	if _, err := m.CreateUser(ctx, "ana", "other@example.com", "h"); err == nil {
		t.Error("duplicate login should fail")
	}
	if got, hash, err := m.GetBylogin(ctx, "ana"); got != 1 || hash != "h" || err != nil {
		t.Errorf("GetBylogin() = %d, %q, %v", got, hash, err)
	}
	if _, _, err := m.GetBylogin(ctx, "bo"); !deckerr.Is(err, deckerr.ErrCodeNotFound) {
		t.Errorf("missing user: err = %v", err)
	}
}

func TestMemoryProjectsAreScopedToOwner(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	p := &Project{OwnerID: 1, Name: "deck"}
	if err := m.CreateProject(ctx, p); err != nil {
		t.Fatal(err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("CreateProject() did not assign an id")
	}

	if _, err := m.GetProject(ctx, 2, p.ID); !deckerr.Is(err, deckerr.ErrCodeNotFound) {
		t.Errorf("other owner GetProject: err = %v", err)
	}
	if err := m.UpdateProject(ctx, &Project{ID: p.ID, OwnerID: 2, Name: "x"}); !deckerr.Is(err, deckerr.ErrCodeNotFound) {
		t.Errorf("other owner UpdateProject: err = %v", err)
	}
	if err := m.DeleteProject(ctx, 2, p.ID); !deckerr.Is(err, deckerr.ErrCodeNotFound) {
		t.Errorf("other owner DeleteProject: err = %v", err)
	}

	list, _ := m.ListProjects(ctx, 1)
	if len(list) != 1 {
		t.Fatalf("ListProjects() = %d projects, want 1", len(list))
	}
	if list, _ := m.ListProjects(ctx, 2); len(list) != 0 {
		t.Errorf("other owner sees %d projects", len(list))
	}

	p.Name = "renamed"
	if err := m.UpdateProject(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, _ := m.GetProject(ctx, 1, p.ID)
	if got.Name != "renamed" || got.CreatedAt.IsZero() {
		t.Errorf("after update = %+v", got)
	}
	if err := m.DeleteProject(ctx, 1, p.ID); err != nil {
		t.Fatal(err)
	}
}
