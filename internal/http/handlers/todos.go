package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type TodoStore interface {
	Create(ctx context.Context, t todo.Todo) (todo.Todo, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]todo.Todo, error)
	GetForOwner(ctx context.Context, id, ownerID int64) (todo.Todo, error)
	UpdateForOwner(ctx context.Context, id, ownerID int64, req todo.Request) (todo.Todo, error)
	DeleteForOwner(ctx context.Context, id, ownerID int64) error
}

type TodosHandler struct {
	repo TodoStore
}

func NewTodosHandler(repo TodoStore) *TodosHandler {
	return &TodosHandler{repo: repo}
}

func (h *TodosHandler) List(ctx *gin.Context) {
	ownerID, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	items, err := h.repo.ListByOwner(cctx, ownerID)
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "list_todos_failed", "err", err)
		RespondInternal(ctx, "Could not list todos")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *TodosHandler) Get(ctx *gin.Context) {
	ownerID, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	t, err := h.repo.GetForOwner(cctx, id, ownerID)
	if err != nil {
		respondTodoErr(ctx, err, "Could not fetch todo")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, t)
}

func (h *TodosHandler) Create(ctx *gin.Context) {
	ownerID, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	var req todo.Request
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	t, err := h.repo.Create(cctx, todo.NewFromRequest(req, ownerID))
	if err != nil {
		respondTodoErr(ctx, err, "Could not create todo")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TodosHandler) Update(ctx *gin.Context) {
	ownerID, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req todo.Request
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	t, err := h.repo.UpdateForOwner(cctx, id, ownerID, req)
	if err != nil {
		respondTodoErr(ctx, err, "Could not update todo")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TodosHandler) Delete(ctx *gin.Context) {
	ownerID, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.repo.DeleteForOwner(cctx, id, ownerID); err != nil {
		respondTodoErr(ctx, err, "Could not delete todo")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ownerFrom writes a 401 when the route was mounted without RequireAuth.
func ownerFrom(ctx *gin.Context) (int64, bool) {
	id, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "Could not validate user.")
		return 0, false
	}
	return id.ID, true
}

func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "id must be a positive integer", gin.H{"field": "id"})
		return 0, false
	}
	return id, true
}

func respondTodoErr(ctx *gin.Context, err error, internalMsg string) {
	if errors.Is(err, todo.ErrNotFound) {
		RespondNotFound(ctx, "Todo not found")
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), "todo_store_failed", "err", err)
	RespondInternal(ctx, internalMsg)
}
