package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wanderventure/wanderventure-server/httpx"
	"github.com/wanderventure/wanderventure-server/jwtauth"
)

// signIn signs the posted identity into the session cookie. The identity has
// no fixed schema; an email field, when present, must be an address.
func (h *Handler) signIn(c *gin.Context) {
	identity, err := h.bindDocument(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if email, ok := identity["email"]; ok {
		if err := h.validate.Var(email, "required,email"); err != nil {
			writeError(c, http.StatusBadRequest, "email must be a valid email")
			return
		}
	}

	token, err := h.issuer.Sign(identity)
	var valErr *jwtauth.ValidationError
	if errors.As(err, &valErr) && valErr.Code == jwtauth.ErrMissingClaim {
		writeError(c, http.StatusBadRequest, valErr.Message)
		return
	}
	if err != nil {
		h.logger.Error("sign token", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cookies.Issue(httpx.NewGinExchange(c), token)
}

func (h *Handler) logout(c *gin.Context) {
	h.cookies.Revoke(httpx.NewGinExchange(c))
}
