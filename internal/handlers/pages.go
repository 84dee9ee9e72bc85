package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) home(c *gin.Context) {
	posts, err := h.services.ListPosts(c.Request.Context())
	if err != nil {
		h.fail(c, "posts_list_failed", err)
		return
	}
	h.render(c, http.StatusOK, "home.html", gin.H{"Posts": posts})
}

func (h *Handler) about(c *gin.Context) {
	h.render(c, http.StatusOK, "about.html", gin.H{"Title": "About"})
}
