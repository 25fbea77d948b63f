package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/todohub/internal/domain/user"
)

func TestUsersRepo_CreateEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	first, err := repo.Create(ctx, user.User{Username: "alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == 0 {
		t.Fatalf("expected an assigned id")
	}

	tests := []struct {
		name      string
		in        user.User
		wantField string
	}{
		{name: "same username", in: user.User{Username: "alice", Email: "other@example.com"}, wantField: "username"},
		{name: "same email", in: user.User{Username: "bob", Email: "alice@example.com"}, wantField: "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(ctx, tt.in)

			if !errors.Is(err, user.ErrConflict) {
				t.Fatalf("got err %v, want conflict", err)
			}

			var conflict *user.ConflictError
			if !errors.As(err, &conflict) || conflict.Field != tt.wantField {
				t.Fatalf("got %v, want conflict on %q", err, tt.wantField)
			}
		})
	}

	second, err := repo.Create(ctx, user.User{Username: "bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("ids must be unique, both got %d", first.ID)
	}
}

func TestUsersRepo_CreateReportsUsernameFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	for _, u := range []user.User{
		{Username: "alice", Email: "alice@example.com"},
		{Username: "bob", Email: "bob@example.com"},
		{Username: "carol", Email: "carol@example.com"},
	} {
		if _, err := repo.Create(ctx, u); err != nil {
			t.Fatalf("seed %s: %v", u.Username, err)
		}
	}

	// username of one record, email of another
	clash := user.User{Username: "alice", Email: "carol@example.com"}

	for i := 0; i < 50; i++ {
		_, err := repo.Create(ctx, clash)

		var conflict *user.ConflictError
		if !errors.As(err, &conflict) || conflict.Field != "username" {
			t.Fatalf("attempt %d: got %v, want conflict on username", i, err)
		}
	}
}

func TestUsersRepo_LookupsAndRoleUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewUsersRepo()

	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got err %v, want not found", err)
	}

	created, _ := repo.Create(ctx, user.User{Username: "alice", Email: "alice@example.com", Role: user.RoleUser})

	updated, err := repo.UpdateRole(ctx, created.ID, user.RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != user.RoleAdmin {
		t.Fatalf("got role %q, want admin", updated.Role)
	}

	got, err := repo.GetByUsername(ctx, "alice")
	if err != nil || got.Role != user.RoleAdmin {
		t.Fatalf("role update not persisted: %+v err=%v", got, err)
	}

	if _, err := repo.UpdateRole(ctx, 999, user.RoleAdmin); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("got err %v, want not found", err)
	}
}
