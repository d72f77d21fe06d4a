package httpx

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinExchange adapts a *gin.Context to Exchange
type GinExchange struct {
	c      *gin.Context
	status int
}

// NewGinExchange wraps c. The default status is 200.
func NewGinExchange(c *gin.Context) *GinExchange {
	return &GinExchange{c: c, status: http.StatusOK}
}

func (g *GinExchange) ReadCookie(name string) (string, bool) {
	v, err := g.c.Cookie(name)
	if err != nil {
		return "", false
	}
	return v, true
}

func (g *GinExchange) WriteCookie(c Cookie) {
	http.SetCookie(g.c.Writer, c.ToHTTP())
}

func (g *GinExchange) SetStatus(code int) {
	g.status = code
}

func (g *GinExchange) SendBody(v any) {
	g.c.JSON(g.status, v)
}

func (g *GinExchange) Context() context.Context {
	return g.c.Request.Context()
}

func (g *GinExchange) SetContext(ctx context.Context) {
	g.c.Request = g.c.Request.WithContext(ctx)
}

func (g *GinExchange) Header(name string) string {
	return g.c.GetHeader(name)
}

// Handler runs p as gin middleware. A rejected request is aborted so no
// later handler in the chain executes.
func Handler(p *Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := p.Run(NewGinExchange(c)); err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Next()
	}
}
