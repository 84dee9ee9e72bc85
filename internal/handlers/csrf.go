package handlers

import (
	"context"
	"errors"
	"net/http"

	"personal_blog/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const (
	csrfCookie    = "csrf"
	csrfField     = "csrf_token"
	csrfPassedKey = "csrfPassed"
)

type ginContextKey struct{}

// limitBody caps POST bodies and parses the form before the CSRF check so
// both it and the handlers read the same values. A body past the cap is
// answered with a flash instead of a token failure.
func (h *Handler) limitBody(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Next()
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes())

	err := c.Request.ParseForm()
	if err == nil {
		err = c.Request.ParseMultipartForm(int64(h.maxUploadBytes()))
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.log.Infow("request_body_too_large", "path", c.Request.URL.Path, "limit", tooLarge.Limit)
		h.flash(c, models.FlashDanger, msgUploadTooLarge)
		h.redirect(c, c.Request.URL.Path)
		c.Abort()
		return
	}
	c.Next()
}

// csrfProtect runs gorilla/csrf as gin middleware. Safe methods only get a
// token issued; POSTs must echo it back in the csrf_token field.
func (h *Handler) csrfProtect() gin.HandlerFunc {
	protect := csrf.Protect(h.opts.CSRFKey,
		csrf.CookieName(csrfCookie),
		csrf.FieldName(csrfField),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.Secure(h.opts.CookieSecure),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(h.csrfFailed)),
	)

	passed := protect(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		c := r.Context().Value(ginContextKey{}).(*gin.Context)
		c.Request = r
		c.Set(csrfPassedKey, true)
	}))

	return func(c *gin.Context) {
		r := c.Request.WithContext(context.WithValue(c.Request.Context(), ginContextKey{}, c))
		if r.TLS == nil && !h.opts.CookieSecure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		passed.ServeHTTP(c.Writer, r)

		if !c.GetBool(csrfPassedKey) {
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) csrfFailed(w http.ResponseWriter, r *http.Request) {
	c, ok := r.Context().Value(ginContextKey{}).(*gin.Context)
	if !ok {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	c.Request = r
	h.log.Infow("csrf_rejected",
		"path", r.URL.Path,
		"reason", csrf.FailureReason(r),
		"request_id", c.GetString(requestIDKey),
	)
	h.errorPage(c, http.StatusForbidden)
}

// csrfToken is the masked token for the current request, empty outside
// the protected routes.
func csrfToken(c *gin.Context) string {
	return csrf.Token(c.Request)
}
