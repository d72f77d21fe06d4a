package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wanderventure/wanderventure-server/httpx"
	"github.com/wanderventure/wanderventure-server/store"
)

var (
	errInvalidBody = errors.New("request body must be a JSON object")
	errEmptyBody   = errors.New("request body must be a non-empty JSON object")
)

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// handleStoreError maps store errors onto responses. Anything unexpected is
// logged and reported as a 500 without internal detail.
func (h *Handler) handleStoreError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		writeError(c, http.StatusBadRequest, "invalid id")
	case errors.Is(err, store.ErrNotFound):
		writeError(c, http.StatusNotFound, "not found")
	default:
		requestID, _ := httpx.GetRequestID(c.Request.Context())
		h.logger.Error("store operation failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindDocument decodes a JSON object body that must carry at least one field
func (h *Handler) bindDocument(c *gin.Context) (store.Document, error) {
	var doc store.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		return nil, errInvalidBody
	}
	if err := h.validate.Var(map[string]any(doc), "gt=0"); err != nil {
		return nil, errEmptyBody
	}
	return doc, nil
}

// validationMessage renders the first failing field of a validator error
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	default:
		return fmt.Sprintf("%s validation failed on '%s' tag", fe.Field(), fe.Tag())
	}
}
