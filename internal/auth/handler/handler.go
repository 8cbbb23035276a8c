package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"catalog-service/internal/auth"
	"catalog-service/internal/auth/provider"
	"catalog-service/internal/auth/resolver"
	"catalog-service/internal/logger"
	"catalog-service/internal/middleware"
	"catalog-service/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	google   = "google"
	facebook = "facebook"

	maxCredentialBytes = 64 << 10
)

type Handler struct {
	providers *provider.Registry
	sessions  *session.Manager
	resolver  resolver.Resolver
}

func NewHandler(
	registry *provider.Registry,
	sessions *session.Manager,
	resolver resolver.Resolver,
) *Handler {
	return &Handler{
		providers: registry,
		sessions:  sessions,
		resolver:  resolver,
	}
}

// RegisterRoutes mounts the login, connect and disconnect routes. connectMW
// runs in front of the two connect endpoints only.
func (h *Handler) RegisterRoutes(r gin.IRouter, connectMW ...gin.HandlerFunc) {
	ws := func(fn middleware.SessionHandlerFunc) gin.HandlerFunc {
		return middleware.WithSession(h.sessions, fn)
	}
	connect := func(name string) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(connectMW)+1)
		chain = append(chain, connectMW...)
		return append(chain, ws(h.connect(name)))
	}

	r.GET("/login", ws(h.login))
	r.POST("/gconnect", connect(google)...)
	r.POST("/fbconnect", connect(facebook)...)
	r.GET("/gdisconnect", ws(h.disconnectJSON(google)))
	r.GET("/fbdisconnect", ws(h.disconnectJSON(facebook)))
	r.GET("/disconnect", ws(h.disconnect))
}

func (h *Handler) login(c *gin.Context, sess *session.Session) {
	if err := issueState(sess); err != nil {
		h.internal(c, "failed to create state", err)
		return
	}

	flashes := sess.PopFlashes()
	if err := h.sessions.Save(c.Request.Context(), c.Writer, sess); err != nil {
		h.internal(c, "failed to persist session", err)
		return
	}

	ids := h.providers.ClientIDs()
	data := gin.H{
		"Title":          "Login",
		"State":          sess.State,
		"GoogleClientID": ids[google],
		"FacebookAppID":  ids[facebook],
		"Flashes":        flashes,
	}
	if l, ok := sess.CurrentUser(); ok {
		data["User"] = &l
	}

	c.HTML(http.StatusOK, "login.html", data)
}

func (h *Handler) connect(name string) middleware.SessionHandlerFunc {
	return func(c *gin.Context, sess *session.Session) {
		ctx := c.Request.Context()

		if !validateState(c, sess) {
			logger.Warn("oauth state mismatch", map[string]any{
				"provider":  name,
				"client_ip": c.ClientIP(),
			})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid state parameter."})
			return
		}

		p, err := h.providers.Get(name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not configured."})
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCredentialBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body."})
			return
		}
		credential := strings.TrimSpace(string(body))
		if credential == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing authorization code."})
			return
		}

		grant, err := p.Exchange(ctx, credential)
		if err != nil {
			h.exchangeFailed(c, name, err)
			return
		}

		if l, ok := sess.CurrentUser(); ok &&
			l.Provider == name &&
			l.ProviderUserID == grant.Subject &&
			l.AccessToken != "" &&
			l.AccessToken == grant.AccessToken {
			c.JSON(http.StatusOK, gin.H{"status": "Current user is already connected."})
			return
		}

		identity, err := p.Profile(ctx, grant)
		if err != nil {
			h.exchangeFailed(c, name, err)
			return
		}

		userID, err := h.resolver.Resolve(ctx, identity)
		if err != nil {
			h.internal(c, "failed to resolve user", err)
			return
		}

		username := identity.Name
		if username == "" {
			username = identity.Email
		}

		sess.SignIn(session.Login{
			UserID:         userID,
			Provider:       name,
			ProviderUserID: identity.ProviderUserID,
			AccessToken:    grant.AccessToken,
			Username:       username,
			Email:          identity.Email,
			Picture:        identity.Picture,
		})
		sess.AddFlash("Now logged in as " + username)

		if err := h.sessions.Renew(ctx, sess); err != nil {
			h.internal(c, "failed to renew session", err)
			return
		}
		if err := h.sessions.Save(ctx, c.Writer, sess); err != nil {
			h.internal(c, "failed to persist session", err)
			return
		}

		logger.Info("login succeeded", map[string]any{
			"provider":  name,
			"user_id":   userID,
			"client_ip": c.ClientIP(),
		})

		c.HTML(http.StatusOK, "welcome.html", gin.H{
			"Username": username,
			"Picture":  identity.Picture,
		})
	}
}

// exchangeFailed reports a failed token exchange or profile fetch. Provider
// rejections carry a reason that is safe to return.
func (h *Handler) exchangeFailed(c *gin.Context, name string, err error) {
	logger.Warn("oauth exchange failed", map[string]any{
		"provider": name,
		"error":    err.Error(),
	})

	var rej *auth.Rejection
	if errors.As(err, &rej) {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrTokenInfo) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"error": rej.Reason})
		return
	}

	c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to upgrade the authorization code."})
}

func (h *Handler) disconnectJSON(name string) middleware.SessionHandlerFunc {
	return func(c *gin.Context, sess *session.Session) {
		l, ok := sess.CurrentUser()
		if !ok || l.Provider != name {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Current user not connected."})
			return
		}

		if err := h.revoke(c, l); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to revoke token for given user."})
			return
		}

		if err := h.sessions.Destroy(c.Request.Context(), c.Writer, sess); err != nil {
			h.internal(c, "failed to destroy session", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "Successfully disconnected."})
	}
}

// disconnect is the browser logout link; it always lands on the catalog.
func (h *Handler) disconnect(c *gin.Context, sess *session.Session) {
	l, ok := sess.CurrentUser()
	switch {
	case !ok:
		sess.AddFlash("You were not logged in")
	case h.revoke(c, l) != nil:
		sess.AddFlash("Failed to revoke token for given user.")
	default:
		// the old record goes away; a new one carries the flash
		if err := h.sessions.Renew(c.Request.Context(), sess); err != nil {
			h.internal(c, "failed to renew session", err)
			return
		}
		sess.SignOut()
		sess.AddFlash("You have successfully been logged out.")
	}

	if err := h.sessions.Save(c.Request.Context(), c.Writer, sess); err != nil {
		h.internal(c, "failed to persist session", err)
		return
	}
	c.Redirect(http.StatusFound, "/catalog")
}

func (h *Handler) revoke(c *gin.Context, l session.Login) error {
	p, err := h.providers.Get(l.Provider)
	if err != nil {
		return err
	}

	err = p.Revoke(c.Request.Context(), &auth.Grant{
		AccessToken: l.AccessToken,
		Subject:     l.ProviderUserID,
	})
	if err != nil {
		logger.Warn("token revocation failed", map[string]any{
			"provider": l.Provider,
			"user_id":  l.UserID,
			"error":    err.Error(),
		})
		return err
	}

	logger.Info("logout", map[string]any{
		"provider":  l.Provider,
		"user_id":   l.UserID,
		"client_ip": c.ClientIP(),
	})
	return nil
}

func (h *Handler) internal(c *gin.Context, msg string, err error) {
	logger.Error(msg, map[string]any{
		"error": err.Error(),
		"path":  c.Request.URL.Path,
	})
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
