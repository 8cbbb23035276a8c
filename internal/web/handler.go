// Package web serves the catalog's HTML pages and its read-only JSON API.
package web

import (
	"errors"
	"net/http"

	"catalog-service/internal/catalog"
	"catalog-service/internal/logger"
	"catalog-service/internal/middleware"
	"catalog-service/internal/session"

	"github.com/gin-gonic/gin"
)

// latestItems is how many recent items the home page lists.
const latestItems = 10

type Handler struct {
	catalog  *catalog.Service
	sessions *session.Manager
}

func NewHandler(svc *catalog.Service, sessions *session.Manager) *Handler {
	return &Handler{
		catalog:  svc,
		sessions: sessions,
	}
}

// RegisterRoutes mounts the HTML and JSON routes. Static segments (new,
// item, user, JSON) win over the :category parameter.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	ws := func(fn middleware.SessionHandlerFunc) gin.HandlerFunc {
		return middleware.WithSession(h.sessions, fn)
	}

	r.GET("/", ws(h.home))
	r.GET("/catalog", ws(h.home))

	// JSON
	r.GET("/catalog/JSON", h.categoriesJSON)
	r.GET("/catalog/item/JSON", h.itemsJSON)
	r.GET("/catalog/user/JSON", h.usersJSON)
	r.GET("/catalog/user/:user/JSON", h.userJSON)
	r.GET("/catalog/:category/JSON", h.categoryJSON)
	r.GET("/catalog/:category/item/JSON", h.categoryItemsJSON)
	r.GET("/catalog/:category/item/:item/JSON", h.itemJSON)
	r.GET("/catalog/:category/:item/JSON", h.itemJSON)

	// categories
	r.GET("/catalog/new", ws(h.newCategoryForm))
	r.POST("/catalog/new", ws(h.createCategory))
	r.GET("/catalog/:category", ws(h.showCategory))
	r.GET("/catalog/:category/edit", ws(h.editCategoryForm))
	r.POST("/catalog/:category/edit", ws(h.updateCategory))
	r.GET("/catalog/:category/delete", ws(h.deleteCategoryForm))
	r.POST("/catalog/:category/delete", ws(h.deleteCategory))

	// items
	r.GET("/catalog/item/new", ws(h.newItemForm))
	r.POST("/catalog/item/new", ws(h.createItem))
	r.GET("/catalog/:category/:item", ws(h.showItem))
	r.GET("/catalog/:category/:item/edit", ws(h.editItemForm))
	r.POST("/catalog/:category/:item/edit", ws(h.updateItem))
	r.GET("/catalog/:category/:item/delete", ws(h.deleteItemForm))
	r.POST("/catalog/:category/:item/delete", ws(h.deleteItem))
}

// render pops the session's flashes into the page and writes it.
func (h *Handler) render(c *gin.Context, sess *session.Session, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	flashes := sess.PopFlashes()
	if len(flashes) > 0 && !sess.IsNew() {
		if err := h.sessions.Save(c.Request.Context(), c.Writer, sess); err != nil {
			h.internal(c, err)
			return
		}
	}

	data["Flashes"] = flashes
	if l, ok := sess.CurrentUser(); ok {
		data["User"] = &l
	}

	c.HTML(status, name, data)
}

// redirect queues msg for the next page and sends the browser to location.
func (h *Handler) redirect(c *gin.Context, sess *session.Session, location, msg string) {
	if msg != "" {
		sess.AddFlash(msg)
	}
	if err := h.sessions.Save(c.Request.Context(), c.Writer, sess); err != nil {
		h.internal(c, err)
		return
	}
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) internal(c *gin.Context, err error) {
	logger.Error("request failed", map[string]any{
		"error": err.Error(),
		"path":  c.Request.URL.Path,
	})
	_ = c.Error(err)
	c.AbortWithStatus(http.StatusInternalServerError)
}

func principal(sess *session.Session) *catalog.Principal {
	l, ok := sess.CurrentUser()
	if !ok {
		return nil
	}
	return &catalog.Principal{UserID: l.UserID}
}

func canMutate(sess *session.Session, owner int64) bool {
	p := principal(sess)
	return p != nil && catalog.CanMutate(p.UserID, owner)
}

// action holds the user-facing wording of one mutation.
type action struct {
	verb      string // "edit this category"
	login     string
	notFound  string
	duplicate string
	invalid   string
}

// fail turns a catalog error into a flash and a redirect. Unknown errors are
// internal.
func (h *Handler) fail(c *gin.Context, sess *session.Session, a action, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotAuthenticated):
		h.redirect(c, sess, "/login", a.login)
	case errors.Is(err, catalog.ErrNotAuthorized):
		h.redirect(c, sess, "/catalog", "You can not "+a.verb+" because you are not the owner")
	case errors.Is(err, catalog.ErrNotFound):
		h.redirect(c, sess, "/catalog", a.notFound)
	case errors.Is(err, catalog.ErrDuplicate):
		h.redirect(c, sess, "/catalog", a.duplicate)
	case errors.Is(err, catalog.ErrInvalid):
		h.redirect(c, sess, "/catalog", a.invalid)
	default:
		h.internal(c, err)
	}
}
