package web

import (
	"net/http"
	"strconv"

	"catalog-service/internal/logger"

	"github.com/gin-gonic/gin"
)

func (h *Handler) jsonError(c *gin.Context, what string, err error) {
	if isNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}

	logger.Error("json request failed", map[string]any{
		"error": err.Error(),
		"path":  c.Request.URL.Path,
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *Handler) categoriesJSON(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.jsonError(c, "categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) categoryJSON(c *gin.Context) {
	category, err := h.catalog.FindCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.jsonError(c, "category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// itemsJSON lists every item regardless of owner.
func (h *Handler) itemsJSON(c *gin.Context) {
	items, err := h.catalog.Items(c.Request.Context())
	if err != nil {
		h.jsonError(c, "items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categoryItems": items})
}

func (h *Handler) categoryItemsJSON(c *gin.Context) {
	ctx := c.Request.Context()

	category, err := h.catalog.FindCategory(ctx, c.Param("category"))
	if err != nil {
		h.jsonError(c, "category", err)
		return
	}

	items, err := h.catalog.ItemsInCategory(ctx, category.ID)
	if err != nil {
		h.jsonError(c, "items", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categoryItems": items})
}

func (h *Handler) itemJSON(c *gin.Context) {
	_, item, err := h.findItem(c)
	if err != nil {
		h.jsonError(c, "item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_Item": item})
}

func (h *Handler) usersJSON(c *gin.Context) {
	users, err := h.catalog.Users(c.Request.Context())
	if err != nil {
		h.jsonError(c, "users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) userJSON(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	user, err := h.catalog.User(c.Request.Context(), id)
	if err != nil {
		h.jsonError(c, "user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
