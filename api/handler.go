// Package api serves the booking routes: sign-in and logout, the room
// catalogue, a guest's booked rooms and reviews.
package api

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wanderventure/wanderventure-server/jwtauth"
	"github.com/wanderventure/wanderventure-server/store"
)

// HealthMessage is the plain-text body of GET /
const HealthMessage = "hotel fairs api is calling okay"

// Handler holds the dependencies shared by every route
type Handler struct {
	store    store.Store
	issuer   *jwtauth.Issuer
	cookies  *jwtauth.CookieManager
	guard    gin.HandlerFunc
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler wires the auth components for authCfg around st. production
// selects the cross-site cookie policy.
func NewHandler(st store.Store, authCfg *jwtauth.Config, production bool, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:    st,
		issuer:   jwtauth.NewIssuer(authCfg),
		cookies:  jwtauth.NewCookieManager(jwtauth.CookiePolicyFor(authCfg, production)),
		guard:    jwtauth.JWTAuth(authCfg),
		validate: newValidator(),
		logger:   logger.Named("api"),
	}
}

// Register mounts all routes on r. Only GET /myRooms requires a session.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.health)

	r.POST("/jwt", h.signIn)
	r.POST("/logout", h.logout)

	r.GET("/rooms", h.listRooms)
	r.GET("/rooms/:id", h.getRoom)

	r.GET("/myRooms", h.guard, h.listBookings)
	r.POST("/myRooms", h.createBooking)
	r.PATCH("/myRooms/:id", h.updateBookingDate)
	r.DELETE("/myRooms/:id", h.deleteBooking)

	r.GET("/reviews", h.listReviews)
	r.POST("/reviews", h.createReview)
}

func (h *Handler) health(c *gin.Context) {
	c.String(http.StatusOK, HealthMessage)
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
