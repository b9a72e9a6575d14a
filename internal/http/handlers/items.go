package handlers

import (
	"net/http"
	"strings"

	"todo_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// Legacy /api/items endpoints, kept for clients that predate tasks.

func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.Items.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch items")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req struct {
		Name any `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	name, ok := req.Name.(string)
	if !ok || strings.TrimSpace(name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item name is required"})
		return
	}

	item, err := h.Items.Create(c.Request.Context(), name)
	if err != nil {
		respondError(c, err, "Failed to create item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, err := service.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid item ID is required"})
		return
	}
	if err := h.Items.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully", "id": id})
}
