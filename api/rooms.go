package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listRooms(c *gin.Context) {
	rooms, err := h.store.ListRooms(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.handleStoreError(c, "list rooms", err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handler) getRoom(c *gin.Context) {
	room, err := h.store.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStoreError(c, "get room", err)
		return
	}
	c.JSON(http.StatusOK, room)
}
