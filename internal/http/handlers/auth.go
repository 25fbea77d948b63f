package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/todohub/internal/auth"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/security"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Register(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Login(ctx context.Context, username, password string) (auth.Token, error)
}

type AuthHandler struct {
	svc     AuthService
	metrics middlewares.AuthMetrics
}

func NewAuthHandler(svc AuthService, metrics middlewares.AuthMetrics) *AuthHandler {
	return &AuthHandler{svc: svc, metrics: metrics}
}

// LoginForm mirrors the OAuth2 password grant form.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// only an admin may hand out a role other than the default
	if req.Role != "" && user.ParseRole(req.Role) != user.RoleUser {
		caller, ok := middlewares.IdentityFromContext(ctx)
		if !ok || !caller.IsAdmin() {
			h.count("register", "forbidden")
			RespondForbidden(ctx, "Only an admin can assign that role.")
			return
		}
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.Register(cctx, req)
	if err != nil {
		var conflict *user.ConflictError
		if errors.As(err, &conflict) {
			h.count("register", "conflict")
			RespondConflict(ctx, conflict.Field+"_taken", conflict.Error())
			return
		}
		if errors.Is(err, security.ErrPasswordTooLong) {
			h.count("register", "invalid")
			RespondBadRequest(ctx, "Invalid request body", gin.H{"fields": []FieldError{{
				Field:   "password",
				Rule:    "maxbytes",
				Param:   strconv.Itoa(security.MaxPasswordBytes),
				Message: ruleMessage("maxbytes", strconv.Itoa(security.MaxPasswordBytes)),
			}}})
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "register_failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.count("register", "ok")
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created.",
		"user":    u,
	})
}

func (h *AuthHandler) Token(ctx *gin.Context) {
	var form LoginForm

	if !BindForm(ctx, &form) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	tok, err := h.svc.Login(cctx, form.Username, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			h.count("login", "rejected")
			RespondUnAuthorized(ctx, "Could not validate user.")
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "login_failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	h.count("login", "ok")
	ctx.JSON(http.StatusOK, tok)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	id, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "Could not validate user.")
		return
	}

	ctx.JSON(http.StatusOK, id)
}

func (h *AuthHandler) count(event, result string) {
	if h.metrics != nil {
		h.metrics.IncAuth(event, result)
	}
}
