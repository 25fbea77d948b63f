package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/todohub/internal/domain/todo"
)

type TodosRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]todo.Todo
}

func NewTodosRepo() *TodosRepo {
	return &TodosRepo{
		items: make(map[int64]todo.Todo),
	}
}

func (r *TodosRepo) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.ID = r.nextID
	r.items[t.ID] = t

	return t, nil
}

func (r *TodosRepo) ListByOwner(ctx context.Context, ownerID int64) ([]todo.Todo, error) {
	return r.list(func(t todo.Todo) bool { return t.OwnerID == ownerID }), nil
}

func (r *TodosRepo) ListAll(ctx context.Context) ([]todo.Todo, error) {
	return r.list(func(todo.Todo) bool { return true }), nil
}

func (r *TodosRepo) GetForOwner(ctx context.Context, id, ownerID int64) (todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok || t.OwnerID != ownerID {
		return todo.Todo{}, todo.ErrNotFound
	}
	return t, nil
}

func (r *TodosRepo) UpdateForOwner(ctx context.Context, id, ownerID int64, req todo.Request) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.OwnerID != ownerID {
		return todo.Todo{}, todo.ErrNotFound
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Priority = req.Priority
	t.Complete = req.Complete
	r.items[id] = t

	return t, nil
}

func (r *TodosRepo) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.OwnerID != ownerID {
		return todo.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func (r *TodosRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return todo.ErrNotFound
	}

	delete(r.items, id)
	return nil
}

func (r *TodosRepo) list(keep func(todo.Todo) bool) []todo.Todo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]todo.Todo, 0, len(r.items))
	for _, t := range r.items {
		if keep(t) {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
