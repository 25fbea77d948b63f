package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type AdminTodoStore interface {
	ListAll(ctx context.Context) ([]todo.Todo, error)
	Delete(ctx context.Context, id int64) error
}

type AdminUserStore interface {
	List(ctx context.Context) ([]user.User, error)
	UpdateRole(ctx context.Context, id int64, role user.Role) (user.User, error)
}

// AdminHandler serves the role-gated admin surface. Routes must be mounted
// behind RequireRole(user.RoleAdmin).
type AdminHandler struct {
	todos AdminTodoStore
	users AdminUserStore
}

func NewAdminHandler(todos AdminTodoStore, users AdminUserStore) *AdminHandler {
	return &AdminHandler{todos: todos, users: users}
}

func (h *AdminHandler) ListTodos(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.todos.ListAll(cctx)
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "admin_list_todos_failed", "err", err)
		RespondInternal(ctx, "Could not list todos")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *AdminHandler) DeleteTodo(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.todos.Delete(cctx, id); err != nil {
		respondTodoErr(ctx, err, "Could not delete todo")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AdminHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.users.List(cctx)
	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "admin_list_users_failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *AdminHandler) UpdateUserRole(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req user.UpdateRoleRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.UpdateRole(cctx, id, user.ParseRole(req.Role))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "admin_update_role_failed", "err", err)
		RespondInternal(ctx, "Could not update role")
		return
	}

	slog.Default().InfoContext(ctx.Request.Context(), "user_role_changed", "user_id", u.ID, "role", u.Role)
	ctx.JSON(http.StatusOK, u)
}
