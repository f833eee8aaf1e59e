package xhttp

import (
	"github.com/fasthttp/router"
)

type Router = router.Router
type Group = router.Group

// notFoundBody is shared with the api handlers so an unknown path, a missing
// record and a refused token all look the same from outside.
const notFoundBody = `{"error":"not found"}`

func NewRouter() *Router {
	return router.New()
}

// CreateDefaultRouter returns a router that answers unknown paths with the
// JSON not-found body and wrong methods with 405.
func CreateDefaultRouter() *Router {
	r := NewRouter()
	r.RedirectFixedPath = false
	r.RedirectTrailingSlash = true
	r.SaveMatchedRoutePath = true
	r.NotFound = NotFoundHandler
	r.MethodNotAllowed = MethodNotAllowedHandler
	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	return r
}

func NotFoundHandler(ctx *RequestCtx) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(StatusNotFound)
	ctx.SetBodyString(notFoundBody)
}

func MethodNotAllowedHandler(ctx *RequestCtx) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(StatusMethodNotAllowed)
	ctx.SetBodyString(`{"error":"method not allowed"}`)
}
