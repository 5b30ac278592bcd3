// Package xhttp is the thin fasthttp server the daemon uses for its health
// and metrics endpoints. The reminder pipeline itself has no inbound HTTP
// surface.
package xhttp

import (
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/cshealth/reminder-gateway/pkg/logger"
)

type RequestCtx = fasthttp.RequestCtx
type RequestHandler = fasthttp.RequestHandler
type Router = router.Router

func StatusText(code int) string { return fasthttp.StatusMessage(code) }

const (
	StatusOK       = fasthttp.StatusOK
	StatusNotFound = fasthttp.StatusNotFound
)

type Engine struct {
	*Router
	server *fasthttp.Server
}

func NewRouter() *Router {
	return router.New()
}

// CreateServer returns an engine with sane defaults for a tiny ops endpoint.
func CreateServer() *Engine {
	r := NewRouter()
	r.RedirectFixedPath = true
	r.RedirectTrailingSlash = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = NotFoundHandler
	r.HandleMethodNotAllowed = true

	e := &Engine{Router: r}
	e.server = &fasthttp.Server{
		Handler:               r.Handler,
		ReadTimeout:           time.Millisecond * 2500,
		WriteTimeout:          time.Millisecond * 2500,
		IdleTimeout:           time.Second * 10,
		MaxRequestBodySize:    1 << 20,
		NoDefaultServerHeader: true,
		NoDefaultDate:         true,
		NoDefaultContentType:  true,
		CloseOnShutdown:       true,
		Logger:                logger.GetLogger(),
	}
	return e
}

func (e *Engine) ListenAndServe(addr string) error {
	return e.server.ListenAndServe(addr)
}

func (e *Engine) Shutdown() error {
	return e.server.Shutdown()
}

// NotFoundHandler is the default 404 handler
func NotFoundHandler(ctx *RequestCtx) {
	ctx.Error(StatusText(StatusNotFound), StatusNotFound)
}

// HealthHandler reports liveness; the daemon registers it at /health.
func HealthHandler(ctx *RequestCtx) {
	ctx.SetStatusCode(StatusOK)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"status":"ok"}`)
}
