package users

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/middleware"
	"github.com/Syafiq-lab/library-management-be/server"
)

// CreateRequest is the payload for creating an identity record.
type CreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Role     string `json:"role" binding:"omitempty,rolename"`
}

// UpdateRequest is the payload for updating an identity record.
type UpdateRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role" binding:"omitempty,rolename"`
	Active   *bool   `json:"active"`
}

// Handler exposes user CRUD over HTTP.
type Handler struct {
	store  Store
	events *EventPublisher
}

// NewHandler creates a user handler.
func NewHandler(store Store, events *EventPublisher) *Handler {
	return &Handler{store: store, events: events}
}

// RegisterRoutes mounts the user endpoints on the given router group.
// Middleware in deleteGuards runs before the destructive delete, so callers
// can gate it on an authority.
func (h *Handler) RegisterRoutes(r gin.IRouter, deleteGuards ...gin.HandlerFunc) {
	g := r.Group("/api/users")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", append(deleteGuards, gin.HandlerFunc(h.delete))...)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	role := req.Role
	if role == "" {
		role = DefaultRole
	}
	u := &User{
		Email:    strings.ToLower(req.Email),
		FullName: req.FullName,
		Role:     role,
		Active:   true,
	}

	exists, err := h.store.ExistsByEmail(c.Request.Context(), u.Email)
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	if exists {
		server.RespondWithError(c, apperrors.AlreadyExists("user"))
		return
	}

	if err := h.store.Create(c.Request.Context(), u); err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	h.events.UserCreated(u, middleware.TraceIDFrom(c))
	server.RespondCreated(c, u)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.store.FindByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		server.RespondWithError(c, apperrors.NotFound("user", c.Param("id")))
		return
	}
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	server.RespondOK(c, u)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	server.RespondOK(c, list)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	u, err := h.store.FindByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		server.RespondWithError(c, apperrors.NotFound("user", c.Param("id")))
		return
	}
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if req.Active != nil {
		u.Active = *req.Active
	}

	if err := h.store.Update(c.Request.Context(), u); err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	h.events.UserUpdated(u, middleware.TraceIDFrom(c))
	server.RespondOK(c, u)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.store.FindByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		server.RespondWithError(c, apperrors.NotFound("user", c.Param("id")))
		return
	}
	if err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}
	h.events.UserDeleted(u, middleware.TraceIDFrom(c))
	server.RespondNoContent(c)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("id must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
