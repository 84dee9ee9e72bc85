package handlers

import (
	"net/url"
	"strings"
	"time"

	"personal_blog/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const loginRequiredMsg = "Please log in to access this page."

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	id := uuid.NewString()
	c.Set(requestIDKey, id)
	c.Header("X-Request-ID", id)

	c.Next()

	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"request_id", id,
	)
}

// loadFlashes reads flashes left by the previous redirect. They are shown
// and cleared by the next render.
func (h *Handler) loadFlashes(c *gin.Context) {
	token, err := c.Cookie(flashCookie)
	if err != nil || token == "" {
		c.Next()
		return
	}
	flashes, err := h.services.ParseFlashes(token)
	if err != nil {
		h.log.Infow("flash_cookie_rejected", "err", err)
		h.clearCookie(c, flashCookie)
		c.Next()
		return
	}
	c.Set(flashesKey, flashes)
	c.Next()
}

// identity resolves the session cookie to a user. Bad tokens, revoked
// sessions and users that no longer exist leave the request anonymous and
// drop the cookie.
func (h *Handler) identity(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || token == "" {
		c.Next()
		return
	}
	claims, err := h.services.ParseSession(token)
	if err != nil {
		h.log.Infow("session_cookie_rejected", "err", err)
		h.clearCookie(c, sessionCookie)
		c.Next()
		return
	}
	u, err := h.services.UserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, "identity_lookup_failed", err)
		return
	}
	if u == nil || u.SessionVersion != claims.Version {
		if u != nil {
			h.log.Infow("session_revoked", "user_id", u.ID)
		}
		h.clearCookie(c, sessionCookie)
		c.Next()
		return
	}
	c.Set(currentUserKey, u)
	c.Next()
}

// requireAuth sends anonymous requests to the login page, remembering
// where they were going.
func (h *Handler) requireAuth(c *gin.Context) {
	if currentUser(c) != nil {
		c.Next()
		return
	}
	h.flash(c, models.FlashInfo, loginRequiredMsg)
	h.redirect(c, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

func (h *Handler) redirectIfAuthenticated(c *gin.Context) {
	if currentUser(c) == nil {
		c.Next()
		return
	}
	h.redirect(c, "/")
	c.Abort()
}

// safeNext accepts only local absolute paths as a post-login target.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}
