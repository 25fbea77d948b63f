package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/todohub/internal/auth"
	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeTodoStore struct {
	createFn func(ctx context.Context, t todo.Todo) (todo.Todo, error)
	listFn   func(ctx context.Context, ownerID int64) ([]todo.Todo, error)
	getFn    func(ctx context.Context, id, ownerID int64) (todo.Todo, error)
	updateFn func(ctx context.Context, id, ownerID int64, req todo.Request) (todo.Todo, error)
	deleteFn func(ctx context.Context, id, ownerID int64) error
}

func (f *fakeTodoStore) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	if f.createFn != nil {
		return f.createFn(ctx, t)
	}
	t.ID = 1
	return t, nil
}

func (f *fakeTodoStore) ListByOwner(ctx context.Context, ownerID int64) ([]todo.Todo, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}
	return []todo.Todo{}, nil
}

func (f *fakeTodoStore) GetForOwner(ctx context.Context, id, ownerID int64) (todo.Todo, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id, ownerID)
	}
	return todo.Todo{}, todo.ErrNotFound
}

func (f *fakeTodoStore) UpdateForOwner(ctx context.Context, id, ownerID int64, req todo.Request) (todo.Todo, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, ownerID, req)
	}
	return todo.Todo{}, todo.ErrNotFound
}

func (f *fakeTodoStore) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, ownerID)
	}
	return todo.ErrNotFound
}

var alice = &auth.Identity{Username: "alice", ID: 7, Role: user.RoleUser}

func newTodosRouter(store handlers.TodoStore, caller *auth.Identity) *gin.Engine {
	h := handlers.NewTodosHandler(store)

	r := gin.New()
	g := r.Group("/todos", asIdentity(caller))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r
}

const todoBody = `{"title":"Buy milk","description":"two litres","priority":3,"complete":false}`

func TestTodos_CreateStampsOwner(t *testing.T) {
	var gotOwner int64
	store := &fakeTodoStore{
		createFn: func(_ context.Context, t todo.Todo) (todo.Todo, error) {
			gotOwner = t.OwnerID
			t.ID = 11
			return t, nil
		},
	}

	w := doRequest(newTodosRouter(store, alice), http.MethodPost, "/todos", todoBody, nil)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201; body=%s", w.Code, w.Body.String())
	}
	if gotOwner != alice.ID {
		t.Fatalf("got owner %d, want %d", gotOwner, alice.ID)
	}

	var created todo.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if created.ID != 11 || created.Title != "Buy milk" {
		t.Fatalf("unexpected todo: %+v", created)
	}
}

func TestTodos_RequiresIdentity(t *testing.T) {
	r := newTodosRouter(&fakeTodoStore{}, nil)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/todos", ""},
		{http.MethodGet, "/todos/1", ""},
		{http.MethodPost, "/todos", todoBody},
		{http.MethodPut, "/todos/1", todoBody},
		{http.MethodDelete, "/todos/1", ""},
	} {
		if w := doRequest(r, tc.method, tc.path, tc.body, nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: got %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}

func TestTodos_PathAndStoreErrors(t *testing.T) {
	store := &fakeTodoStore{
		getFn: func(_ context.Context, id, ownerID int64) (todo.Todo, error) {
			if id == 5 && ownerID == alice.ID {
				return todo.Todo{ID: 5, Title: "mine", OwnerID: ownerID}, nil
			}
			if id == 500 {
				return todo.Todo{}, errors.New("db down")
			}
			return todo.Todo{}, todo.ErrNotFound
		},
	}
	r := newTodosRouter(store, alice)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "get own", method: http.MethodGet, path: "/todos/5", wantStatus: http.StatusOK},
		{name: "get other", method: http.MethodGet, path: "/todos/6", wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "zero id", method: http.MethodGet, path: "/todos/0", wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "negative id", method: http.MethodGet, path: "/todos/-1", wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "text id", method: http.MethodDelete, path: "/todos/abc", wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "store failure", method: http.MethodGet, path: "/todos/500", wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "update missing", method: http.MethodPut, path: "/todos/9", body: todoBody, wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "update invalid", method: http.MethodPut, path: "/todos/9", body: `{"title":"x"}`, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "delete missing", method: http.MethodDelete, path: "/todos/9", wantStatus: http.StatusNotFound, wantCode: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, tt.method, tt.path, tt.body, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d; body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode != "" && errorCode(t, w) != tt.wantCode {
				t.Fatalf("got code %q, want %q", errorCode(t, w), tt.wantCode)
			}
		})
	}
}

func TestTodos_ListETag(t *testing.T) {
	store := &fakeTodoStore{
		listFn: func(_ context.Context, ownerID int64) ([]todo.Todo, error) {
			return []todo.Todo{{ID: 1, Title: "mine", Description: "desc", Priority: 1, OwnerID: ownerID}}, nil
		},
	}
	r := newTodosRouter(store, alice)

	first := doRequest(r, http.MethodGet, "/todos", "", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", first.Code)
	}

	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected an ETag header")
	}

	var body struct {
		Items []todo.Todo `json:"items"`
		Count int         `json:"count"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Count != 1 || body.Items[0].OwnerID != alice.ID {
		t.Fatalf("unexpected list body: %+v", body)
	}

	second := doRequest(r, http.MethodGet, "/todos", "", map[string]string{"If-None-Match": etag})
	if second.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", second.Code)
	}

	weak := doRequest(r, http.MethodGet, "/todos", "", map[string]string{"If-None-Match": `"stale", W/` + etag})
	if weak.Code != http.StatusNotModified {
		t.Fatalf("weak match: got status %d, want 304", weak.Code)
	}

	stale := doRequest(r, http.MethodGet, "/todos", "", map[string]string{"If-None-Match": `"stale"`})
	if stale.Code != http.StatusOK {
		t.Fatalf("stale etag: got status %d, want 200", stale.Code)
	}
}
