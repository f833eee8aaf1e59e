package xhttp

import (
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/nimasrn/freight-bids/pkg/logger"
	"github.com/valyala/fasthttp"
)

type Server = fasthttp.Server

type ServerOption struct {
	// idle keep-alive connections are closed after this long to avoid running out of descriptors
	IdleTimeout time.Duration

	MaxIdleWorkerDuration time.Duration
	TCPKeepalivePeriod    time.Duration

	MaxRequestBodySize int
	ReadBufferSize     int
	WriteBufferSize    int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration

	Concurrency   int
	MaxConnsPerIP int
	Name          string
	Logger        logger.Logger
}

var DefaultServerOption = ServerOption{
	IdleTimeout:           10 * time.Second,
	MaxIdleWorkerDuration: time.Minute,
	TCPKeepalivePeriod:    2 * time.Hour,
	MaxRequestBodySize:    4 * 1024 * 1024,
	ReadBufferSize:        4 * 1024,
	WriteBufferSize:       4 * 1024,
	ReadTimeout:           2500 * time.Millisecond,
	WriteTimeout:          2500 * time.Millisecond,
	Concurrency:           30_000,
	MaxConnsPerIP:         10_000,
}

type Engine struct {
	*Router
	*Server
	middle []MiddlewareFunc
}

func NewServer(options ServerOption) *Engine {
	l := options.Logger
	if l == nil {
		l = logger.GetLogger()
	}
	return &Engine{
		Server: &fasthttp.Server{
			Name:                  options.Name,
			Concurrency:           options.Concurrency,
			ReadBufferSize:        options.ReadBufferSize,
			WriteBufferSize:       options.WriteBufferSize,
			ReadTimeout:           options.ReadTimeout,
			WriteTimeout:          options.WriteTimeout,
			IdleTimeout:           options.IdleTimeout,
			MaxConnsPerIP:         options.MaxConnsPerIP,
			MaxIdleWorkerDuration: options.MaxIdleWorkerDuration,
			TCPKeepalivePeriod:    options.TCPKeepalivePeriod,
			MaxRequestBodySize:    options.MaxRequestBodySize,
			TCPKeepalive:          true,
			NoDefaultServerHeader: true,
			NoDefaultDate:         true,
			NoDefaultContentType:  true,
			CloseOnShutdown:       true,
			Logger:                l,
			ErrorHandler: func(ctx *RequestCtx, err error) {
				logger.Warn("[xhttp] request error", "error", err, "path", RedactToken(string(ctx.Path())))
			},
		},
		Router: NewRouter(),
	}
}

func CreateServer() *Engine {
	s := NewServer(DefaultServerOption)
	s.Router = CreateDefaultRouter()
	return s
}

// Use appends a middleware. Middlewares run in the order they were added.
func (e *Engine) Use(middleware MiddlewareFunc) {
	e.middle = append(e.middle, middleware)
}

// Handler builds the final request handler: router wrapped by every middleware.
func (e *Engine) Handler() RequestHandler {
	h := e.Router.Handler
	middle := slices.Clone(e.middle)
	slices.Reverse(middle)
	for _, m := range middle {
		h = m(h)
	}
	return h
}

func (e *Engine) ListenAndServe(addr string) error {
	for method, paths := range e.Router.List() {
		for _, p := range paths {
			logger.Debug("[xhttp] route", "method", method, "path", p)
		}
	}
	for i, m := range e.middle {
		logger.Debug("[xhttp] middleware", "order", i+1, "name", runtime.FuncForPC(reflect.ValueOf(m).Pointer()).Name())
	}
	e.Server.Handler = e.Handler()
	logger.Info("[xhttp] server is listening", "addr", addr)
	return e.Server.ListenAndServe(addr)
}

func (e *Engine) Shutdown() {
	logger.Info("[xhttp] server is shutting down")
	if err := e.Server.Shutdown(); err != nil {
		logger.Error("[xhttp] error while shutting down", "error", err)
	}
}
