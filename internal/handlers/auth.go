package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"personal_blog/internal/models"
	"personal_blog/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgBadForm    = "The form could not be read. Please try again."
	msgLoginError = "Login Unsuccessful. Please check email and password"
)

// bindForm binds the request form into dst.
func (h *Handler) bindForm(c *gin.Context, dst any) error {
	err := c.ShouldBind(dst)
	if err != nil {
		h.log.Infow("form_bind_failed", "path", c.Request.URL.Path, "err", err)
	}
	return err
}

// formErrors turns a binding failure into a form-level message.
func formErrors(error) service.FieldErrors {
	return service.FieldErrors{"form": {msgBadForm}}
}

func (h *Handler) registerForm(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title": "Register",
		"Form":  service.RegistrationInput{},
	})
}

func (h *Handler) register(c *gin.Context) {
	var input service.RegistrationInput
	if err := h.bindForm(c, &input); err != nil {
		h.renderRegister(c, input, formErrors(err))
		return
	}

	u, err := h.services.Register(c.Request.Context(), input)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			h.renderRegister(c, input, fields)
			return
		}
		h.fail(c, "auth_register_failed", err)
		return
	}

	h.log.Infow("auth_registered", "user_id", u.ID, "username", u.Username)
	h.flash(c, models.FlashSuccess, fmt.Sprintf("Account created for %s! You are now able to log in.", u.Username))
	h.redirect(c, "/login")
}

func (h *Handler) renderRegister(c *gin.Context, input service.RegistrationInput, fe service.FieldErrors) {
	input.Password, input.ConfirmPassword = "", ""
	h.render(c, http.StatusOK, "register.html", gin.H{
		"Title":  "Register",
		"Form":   input,
		"Errors": fe,
	})
}

func (h *Handler) loginForm(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "Login",
		"Form":  service.LoginInput{},
	})
}

func (h *Handler) login(c *gin.Context) {
	var input service.LoginInput
	if err := h.bindForm(c, &input); err != nil {
		h.renderLogin(c, input, formErrors(err))
		return
	}

	session, err := h.services.Authenticate(c.Request.Context(), input)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidCredentials):
		h.log.Infow("auth_login_failed", "email", input.Email)
		h.flash(c, models.FlashDanger, msgLoginError)
		h.renderLogin(c, input, nil)
		return
	default:
		if fields, ok := validationErrors(err); ok {
			h.renderLogin(c, input, fields)
			return
		}
		h.fail(c, "auth_login_error", err)
		return
	}

	h.setCookie(c, sessionCookie, session.Token, session.MaxAge)
	h.log.Infow("auth_logged_in", "user_id", session.UserID, "remember", session.Remember)
	h.redirect(c, safeNext(c.Query("next")))
}

func (h *Handler) renderLogin(c *gin.Context, input service.LoginInput, fe service.FieldErrors) {
	if fe == nil {
		fe = service.FieldErrors{}
	}
	input.Password = ""
	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title":  "Login",
		"Form":   input,
		"Errors": fe,
	})
}

// logout revokes all of the user's sessions, not only this cookie, so a
// copied token stops working too.
func (h *Handler) logout(c *gin.Context) {
	if u := currentUser(c); u != nil {
		err := h.services.EndSessions(c.Request.Context(), u.ID)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			h.fail(c, "auth_logout_failed", err)
			return
		}
		h.log.Infow("auth_logged_out", "user_id", u.ID)
	}
	h.clearCookie(c, sessionCookie)
	h.redirect(c, "/")
}
