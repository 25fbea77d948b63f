package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/todohub/internal/domain/todo"
)

func TestTodosRepo_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewTodosRepo()

	mine, _ := repo.Create(ctx, todo.Todo{Title: "mine", OwnerID: 1})
	theirs, _ := repo.Create(ctx, todo.Todo{Title: "theirs", OwnerID: 2})

	list, _ := repo.ListByOwner(ctx, 1)
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Fatalf("unexpected owner list: %+v", list)
	}

	if _, err := repo.GetForOwner(ctx, theirs.ID, 1); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("got err %v, want not found for someone else's todo", err)
	}

	if _, err := repo.UpdateForOwner(ctx, theirs.ID, 1, todo.Request{Title: "hijack"}); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("got err %v, want not found on foreign update", err)
	}

	if err := repo.DeleteForOwner(ctx, theirs.ID, 1); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("got err %v, want not found on foreign delete", err)
	}

	all, _ := repo.ListAll(ctx)
	if len(all) != 2 {
		t.Fatalf("got %d todos, want 2", len(all))
	}

	if err := repo.Delete(ctx, theirs.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, theirs.ID); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("got err %v, want not found on second delete", err)
	}
}
