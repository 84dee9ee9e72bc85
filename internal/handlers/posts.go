package handlers

import (
	"net/http"
	"strconv"

	"personal_blog/internal/models"
	"personal_blog/internal/service"

	"github.com/gin-gonic/gin"
)

// postID parses the :id parameter. Malformed ids render 404.
func (h *Handler) postID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.notFound(c)
		return 0, false
	}
	return id, true
}

func (h *Handler) showPost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	post, err := h.services.GetPost(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "post_get_failed", err)
		return
	}
	h.render(c, http.StatusOK, "post.html", gin.H{
		"Title":   post.Title,
		"Post":    post,
		"CanEdit": post.OwnedBy(currentUser(c)),
	})
}

func (h *Handler) newPostForm(c *gin.Context) {
	h.renderPostForm(c, "New Post", service.PostInput{}, nil)
}

func (h *Handler) createPost(c *gin.Context) {
	var input service.PostInput
	if err := h.bindForm(c, &input); err != nil {
		h.renderPostForm(c, "New Post", input, formErrors(err))
		return
	}
	post, err := h.services.CreatePost(c.Request.Context(), currentUser(c), input)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			h.renderPostForm(c, "New Post", input, fields)
			return
		}
		h.fail(c, "post_create_failed", err)
		return
	}
	h.log.Infow("post_created", "post_id", post.ID, "user_id", post.UserID)
	h.flash(c, models.FlashSuccess, "Your post has been created!")
	h.redirect(c, "/")
}

func (h *Handler) editPostForm(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	post, err := h.services.EditablePost(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.fail(c, "post_edit_failed", err)
		return
	}
	h.renderPostForm(c, "Update Post", service.PostInput{Title: post.Title, Content: post.Content}, nil)
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	var input service.PostInput
	if err := h.bindForm(c, &input); err != nil {
		h.renderPostForm(c, "Update Post", input, formErrors(err))
		return
	}
	post, err := h.services.UpdatePost(c.Request.Context(), currentUser(c), id, input)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			h.renderPostForm(c, "Update Post", input, fields)
			return
		}
		h.fail(c, "post_update_failed", err)
		return
	}
	h.log.Infow("post_updated", "post_id", post.ID, "user_id", post.UserID)
	h.flash(c, models.FlashSuccess, "Your post has been updated!")
	h.redirect(c, "/post/"+strconv.FormatInt(post.ID, 10))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	u := currentUser(c)
	if err := h.services.DeletePost(c.Request.Context(), u, id); err != nil {
		h.fail(c, "post_delete_failed", err)
		return
	}
	h.log.Infow("post_deleted", "post_id", id, "user_id", u.ID)
	h.flash(c, models.FlashSuccess, "Your post has been deleted!")
	h.redirect(c, "/")
}

func (h *Handler) renderPostForm(c *gin.Context, legend string, input service.PostInput, fe service.FieldErrors) {
	if fe == nil {
		fe = service.FieldErrors{}
	}
	h.render(c, http.StatusOK, "create_post.html", gin.H{
		"Title":  legend,
		"Legend": legend,
		"Form":   input,
		"Errors": fe,
	})
}
