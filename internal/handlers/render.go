package handlers

import (
	"errors"
	"net/http"

	"personal_blog/internal/models"
	"personal_blog/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "session"
	flashCookie   = "flash"

	currentUserKey = "currentUser"
	flashesKey     = "flashes"
	pendingKey     = "pendingFlashes"
	requestIDKey   = "requestID"
)

// currentUser returns the identity loaded by the identity middleware, or
// nil for anonymous requests.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// flash queues a message for the next rendered page.
func (h *Handler) flash(c *gin.Context, category, msg string) {
	pending, _ := c.Get(pendingKey)
	list, _ := pending.([]models.Flash)
	c.Set(pendingKey, append(list, models.Flash{Category: category, Message: msg}))
}

// takeFlashes returns the incoming and queued flashes and forgets them.
func takeFlashes(c *gin.Context) []models.Flash {
	var out []models.Flash
	for _, key := range []string{flashesKey, pendingKey} {
		if v, ok := c.Get(key); ok {
			list, _ := v.([]models.Flash)
			out = append(out, list...)
			c.Set(key, []models.Flash(nil))
		}
	}
	return out
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearCookie(c *gin.Context, name string) {
	h.setCookie(c, name, "", -1)
}

// redirect sends a 302 and carries any unshown flashes in the flash cookie.
func (h *Handler) redirect(c *gin.Context, location string) {
	flashes := takeFlashes(c)
	if len(flashes) > 0 {
		token, err := h.services.SignFlashes(flashes)
		if err != nil {
			h.log.Errorw("flash_sign_failed", "err", err)
		} else {
			h.setCookie(c, flashCookie, token, 0)
		}
	} else if _, err := c.Cookie(flashCookie); err == nil {
		h.clearCookie(c, flashCookie)
	}
	c.Redirect(http.StatusFound, location)
}

// render executes a page template with the layout data every page needs.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = service.FieldErrors{}
	}
	data["CurrentUser"] = currentUser(c)
	data["CSRFToken"] = csrfToken(c)
	data["Flashes"] = takeFlashes(c)
	if _, err := c.Cookie(flashCookie); err == nil {
		h.clearCookie(c, flashCookie)
	}
	c.HTML(status, name, data)
}

func (h *Handler) errorPage(c *gin.Context, status int) {
	name := "500.html"
	switch status {
	case http.StatusForbidden:
		name = "403.html"
	case http.StatusNotFound:
		name = "404.html"
	}
	h.render(c, status, name, gin.H{"Title": http.StatusText(status)})
	c.Abort()
}

// fail maps a service error to an error page. Anything that is not a
// domain error is logged under event.
func (h *Handler) fail(c *gin.Context, event string, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.errorPage(c, http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		h.errorPage(c, http.StatusForbidden)
	default:
		h.log.Errorw(event, "err", err, "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey))
		h.errorPage(c, http.StatusInternalServerError)
	}
}

func (h *Handler) notFound(c *gin.Context) {
	h.errorPage(c, http.StatusNotFound)
}

func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	h.log.Errorw("panic_recovered", "panic", recovered, "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey))
	h.errorPage(c, http.StatusInternalServerError)
}

// validationErrors extracts field errors from err, if it is a validation
// failure.
func validationErrors(err error) (service.FieldErrors, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}
