package inventory

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/middleware"
	"github.com/Syafiq-lab/library-management-be/server"
)

// CreateRequest is the payload for creating an item.
type CreateRequest struct {
	Name     string `json:"name" binding:"required"`
	SKU      string `json:"sku" binding:"required"`
	Quantity int    `json:"quantity" binding:"gte=0"`
	OwnerID  uint   `json:"ownerId" binding:"required"`
}

// UpdateRequest is the payload for updating an item.
type UpdateRequest struct {
	Name     *string `json:"name"`
	Quantity *int    `json:"quantity"`
	OwnerID  *uint   `json:"ownerId"`
}

// Handler exposes inventory CRUD over HTTP.
type Handler struct {
	svc    *Service
	events *EventPublisher
}

// NewHandler creates an inventory handler.
func NewHandler(svc *Service, events *EventPublisher) *Handler {
	return &Handler{svc: svc, events: events}
}

// RegisterRoutes mounts the inventory endpoints on the given router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/inventory")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}
	item := &Item{
		Name:     req.Name,
		SKU:      req.SKU,
		Quantity: req.Quantity,
		OwnerID:  req.OwnerID,
	}
	if err := h.svc.Create(c.Request.Context(), item); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.events.ItemCreated(item, middleware.TraceIDFrom(c))
	server.RespondCreated(c, item)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, item)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
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

	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	ownerChanged := false
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.OwnerID != nil && *req.OwnerID != item.OwnerID {
		item.OwnerID = *req.OwnerID
		ownerChanged = true
	}

	if err := h.svc.Update(c.Request.Context(), item, ownerChanged); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.events.ItemUpdated(item, middleware.TraceIDFrom(c))
	server.RespondOK(c, item)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.events.ItemDeleted(item, middleware.TraceIDFrom(c))
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
