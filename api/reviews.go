package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.store.ListReviews(c.Request.Context())
	if err != nil {
		h.handleStoreError(c, "list reviews", err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) createReview(c *gin.Context) {
	doc, err := h.bindDocument(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.store.CreateReview(c.Request.Context(), doc)
	if err != nil {
		h.handleStoreError(c, "create review", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
