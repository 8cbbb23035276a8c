package web

import (
	"errors"
	"fmt"
	"net/http"

	"catalog-service/internal/catalog"
	"catalog-service/internal/session"
	"catalog-service/internal/store"

	"github.com/gin-gonic/gin"
)

var (
	newCategory = action{
		verb:      "add a new category",
		login:     "In order to add a new category you must log in",
		duplicate: "Category name already exist .. record not added",
		invalid:   "Category name is required",
	}
	editCategory = action{
		verb:      "edit this category",
		login:     "In order to edit a category you must log in",
		notFound:  "Category to edit was not found...",
		duplicate: "Category name already exist .. record not updated",
		invalid:   "Category name is required",
	}
	deleteCategory = action{
		verb:     "delete this category",
		login:    "In order to delete a category you must log in",
		notFound: "Category to delete was not found...",
	}
	newItem = action{
		verb:      "add a new catalog item",
		login:     "In order to add a new catalog item you must log in",
		notFound:  "Category was not found...",
		duplicate: "Catalog item title already exist in this category.. record not added",
		invalid:   "Catalog item needs a title of at most 80 characters and a category",
	}
	editItem = action{
		verb:      "edit this item",
		login:     "In order to edit a catalog item you must log in",
		notFound:  "Item to edit was not found...",
		duplicate: "Catalog item title already exist in this category.. record not updated",
		invalid:   "Catalog item title can be at most 80 characters",
	}
	deleteItem = action{
		verb:     "delete this item",
		login:    "In order to delete a catalog item you must log in",
		notFound: "Item to delete was not found...",
	}
)

func (h *Handler) home(c *gin.Context, sess *session.Session) {
	ctx := c.Request.Context()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		h.internal(c, err)
		return
	}

	items, err := h.catalog.LatestItems(ctx, latestItems)
	if err != nil {
		h.internal(c, err)
		return
	}

	if len(categories) == 0 {
		sess.AddFlash("No categories found .. database empty")
		if _, ok := sess.CurrentUser(); !ok {
			sess.AddFlash("Users can add categories only if logged in .. Please login")
		}
	}

	h.render(c, sess, http.StatusOK, "catalog.html", gin.H{
		"Categories": categories,
		"Items":      items,
	})
}

func (h *Handler) showCategory(c *gin.Context, sess *session.Session) {
	ctx := c.Request.Context()

	category, err := h.catalog.FindCategory(ctx, c.Param("category"))
	if err != nil {
		h.fail(c, sess, action{notFound: "Category was not found..."}, err)
		return
	}

	items, err := h.catalog.ItemsInCategory(ctx, category.ID)
	if err != nil {
		h.internal(c, err)
		return
	}

	h.render(c, sess, http.StatusOK, "category.html", gin.H{
		"Title":     category.Name,
		"Category":  category,
		"Items":     items,
		"CanMutate": canMutate(sess, category.UserID),
	})
}

func (h *Handler) showItem(c *gin.Context, sess *session.Session) {
	category, item, err := h.findItem(c)
	if err != nil {
		h.fail(c, sess, action{notFound: "Item was not found..."}, err)
		return
	}

	h.render(c, sess, http.StatusOK, "item.html", gin.H{
		"Title":     item.Title,
		"Category":  category,
		"Item":      item,
		"CanMutate": canMutate(sess, item.UserID),
	})
}

func (h *Handler) findItem(c *gin.Context) (*store.Category, *store.Item, error) {
	ctx := c.Request.Context()

	category, err := h.catalog.FindCategory(ctx, c.Param("category"))
	if err != nil {
		return nil, nil, err
	}

	item, err := h.catalog.FindItem(ctx, category, c.Param("item"))
	if err != nil {
		return nil, nil, err
	}
	return category, item, nil
}

// loadOwnedCategory backs the edit and delete forms: the form is only shown
// to the owner.
func (h *Handler) loadOwnedCategory(c *gin.Context, sess *session.Session) (*store.Category, error) {
	p := principal(sess)
	if p == nil {
		return nil, catalog.ErrNotAuthenticated
	}

	category, err := h.catalog.FindCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		return nil, err
	}

	if err := catalog.Authorize(p, category.UserID); err != nil {
		return nil, err
	}
	return category, nil
}

func (h *Handler) loadOwnedItem(c *gin.Context, sess *session.Session) (*store.Category, *store.Item, error) {
	p := principal(sess)
	if p == nil {
		return nil, nil, catalog.ErrNotAuthenticated
	}

	category, item, err := h.findItem(c)
	if err != nil {
		return nil, nil, err
	}

	if err := catalog.Authorize(p, item.UserID); err != nil {
		return nil, nil, err
	}
	return category, item, nil
}

func (h *Handler) newCategoryForm(c *gin.Context, sess *session.Session) {
	if principal(sess) == nil {
		h.fail(c, sess, newCategory, catalog.ErrNotAuthenticated)
		return
	}
	h.render(c, sess, http.StatusOK, "category_new.html", gin.H{"Title": "New Category"})
}

func (h *Handler) createCategory(c *gin.Context, sess *session.Session) {
	category, err := h.catalog.CreateCategory(c.Request.Context(), principal(sess), c.PostForm("name"))
	if err != nil {
		h.fail(c, sess, newCategory, err)
		return
	}
	h.redirect(c, sess, "/catalog", fmt.Sprintf("New Category %s Successfully Created", category.Name))
}

func (h *Handler) editCategoryForm(c *gin.Context, sess *session.Session) {
	category, err := h.loadOwnedCategory(c, sess)
	if err != nil {
		h.fail(c, sess, editCategory, err)
		return
	}
	h.render(c, sess, http.StatusOK, "category_edit.html", gin.H{
		"Title":    "Edit " + category.Name,
		"Category": category,
	})
}

func (h *Handler) updateCategory(c *gin.Context, sess *session.Session) {
	p := principal(sess)
	if p == nil {
		h.fail(c, sess, editCategory, catalog.ErrNotAuthenticated)
		return
	}

	ctx := c.Request.Context()
	category, err := h.catalog.FindCategory(ctx, c.Param("category"))
	if err != nil {
		h.fail(c, sess, editCategory, err)
		return
	}

	updated, err := h.catalog.UpdateCategory(ctx, p, category.ID, c.PostForm("name"))
	if err != nil {
		h.fail(c, sess, editCategory, err)
		return
	}
	h.redirect(c, sess, "/catalog", "Category successfully edited "+updated.Name)
}

func (h *Handler) deleteCategoryForm(c *gin.Context, sess *session.Session) {
	category, err := h.loadOwnedCategory(c, sess)
	if err != nil {
		h.fail(c, sess, deleteCategory, err)
		return
	}
	h.render(c, sess, http.StatusOK, "category_delete.html", gin.H{
		"Title":    "Delete " + category.Name,
		"Category": category,
	})
}

func (h *Handler) deleteCategory(c *gin.Context, sess *session.Session) {
	p := principal(sess)
	if p == nil {
		h.fail(c, sess, deleteCategory, catalog.ErrNotAuthenticated)
		return
	}

	ctx := c.Request.Context()
	category, err := h.catalog.FindCategory(ctx, c.Param("category"))
	if err != nil {
		h.fail(c, sess, deleteCategory, err)
		return
	}

	if err := h.catalog.DeleteCategory(ctx, p, category.ID); err != nil {
		h.fail(c, sess, deleteCategory, err)
		return
	}
	h.redirect(c, sess, "/catalog", category.Name+" Successfully Deleted")
}

func (h *Handler) newItemForm(c *gin.Context, sess *session.Session) {
	if principal(sess) == nil {
		h.fail(c, sess, newItem, catalog.ErrNotAuthenticated)
		return
	}

	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.internal(c, err)
		return
	}
	if len(categories) == 0 {
		h.redirect(c, sess, "/catalog", "No categories found...")
		return
	}

	h.render(c, sess, http.StatusOK, "item_new.html", gin.H{
		"Title":      "New Item",
		"Categories": categories,
	})
}

func (h *Handler) createItem(c *gin.Context, sess *session.Session) {
	item, err := h.catalog.CreateItem(c.Request.Context(), principal(sess), catalog.ItemInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		CategoryName: c.PostForm("category"),
	})
	if err != nil {
		h.fail(c, sess, newItem, err)
		return
	}
	h.redirect(c, sess, "/catalog", fmt.Sprintf("New Catalog Item: %s Successfully Created", item.Title))
}

func (h *Handler) editItemForm(c *gin.Context, sess *session.Session) {
	category, item, err := h.loadOwnedItem(c, sess)
	if err != nil {
		h.fail(c, sess, editItem, err)
		return
	}

	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		h.internal(c, err)
		return
	}

	h.render(c, sess, http.StatusOK, "item_edit.html", gin.H{
		"Title":      "Edit " + item.Title,
		"Category":   category,
		"Item":       item,
		"Categories": categories,
	})
}

func (h *Handler) updateItem(c *gin.Context, sess *session.Session) {
	p := principal(sess)
	if p == nil {
		h.fail(c, sess, editItem, catalog.ErrNotAuthenticated)
		return
	}

	_, item, err := h.findItem(c)
	if err != nil {
		h.fail(c, sess, editItem, err)
		return
	}

	_, err = h.catalog.UpdateItem(c.Request.Context(), p, item.ID, catalog.ItemInput{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		CategoryName: c.PostForm("category"),
	})
	if err != nil {
		h.fail(c, sess, editItem, err)
		return
	}
	h.redirect(c, sess, "/catalog", "Catalog Item Successfully Edited")
}

func (h *Handler) deleteItemForm(c *gin.Context, sess *session.Session) {
	category, item, err := h.loadOwnedItem(c, sess)
	if err != nil {
		h.fail(c, sess, deleteItem, err)
		return
	}
	h.render(c, sess, http.StatusOK, "item_delete.html", gin.H{
		"Title":    "Delete " + item.Title,
		"Category": category,
		"Item":     item,
	})
}

func (h *Handler) deleteItem(c *gin.Context, sess *session.Session) {
	p := principal(sess)
	if p == nil {
		h.fail(c, sess, deleteItem, catalog.ErrNotAuthenticated)
		return
	}

	_, item, err := h.findItem(c)
	if err != nil {
		h.fail(c, sess, deleteItem, err)
		return
	}

	if err := h.catalog.DeleteItem(c.Request.Context(), p, item.ID); err != nil {
		h.fail(c, sess, deleteItem, err)
		return
	}
	h.redirect(c, sess, "/catalog", "Category Item Successfully Deleted")
}

// isNotFound is shared with the JSON handlers.
func isNotFound(err error) bool {
	return errors.Is(err, catalog.ErrNotFound)
}
