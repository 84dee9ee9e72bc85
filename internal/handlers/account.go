package handlers

import (
	"errors"
	"net/http"

	"personal_blog/internal/models"
	"personal_blog/internal/service"

	"github.com/gin-gonic/gin"
)

const msgUploadTooLarge = "The uploaded file is too large."

func (h *Handler) accountForm(c *gin.Context) {
	u := currentUser(c)
	h.renderAccount(c, u, service.AccountInput{Username: u.Username, Email: u.Email}, nil)
}

func (h *Handler) updateAccount(c *gin.Context) {
	u := currentUser(c)

	var input service.AccountInput
	if err := h.bindForm(c, &input); err != nil {
		h.renderAccount(c, u, input, formErrors(err))
		return
	}

	file, err := c.FormFile("picture")
	switch {
	case err == nil && file.Size > int64(h.maxUploadBytes()):
		h.renderAccount(c, u, input, service.FieldErrors{"picture": {msgUploadTooLarge}})
		return
	case err == nil && file.Filename != "":
		f, err := file.Open()
		if err != nil {
			h.fail(c, "account_upload_open_failed", err)
			return
		}
		defer f.Close()
		input.Picture = f
		input.PictureName = file.Filename
	case err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		h.log.Infow("account_upload_read_failed", "user_id", u.ID, "err", err)
		h.renderAccount(c, u, input, service.FieldErrors{"picture": {msgBadForm}})
		return
	}

	updated, err := h.services.UpdateAccount(c.Request.Context(), u, input)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			h.renderAccount(c, u, input, fields)
			return
		}
		h.fail(c, "account_update_failed", err)
		return
	}

	h.log.Infow("account_updated", "user_id", updated.ID, "image_file", updated.ImageFile)
	h.flash(c, models.FlashSuccess, "Your account has been updated!")
	h.redirect(c, "/account")
}

func (h *Handler) renderAccount(c *gin.Context, u *models.User, input service.AccountInput, fe service.FieldErrors) {
	if fe == nil {
		fe = service.FieldErrors{}
	}
	input.Picture = nil
	h.render(c, http.StatusOK, "account.html", gin.H{
		"Title":     "Account",
		"Form":      input,
		"Errors":    fe,
		"ImageFile": u.ImageFile,
	})
}
