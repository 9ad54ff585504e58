// Package apitest runs a fake Campus Connect backend for tests.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// Request is a request as received by the fake backend.
type Request struct {
	Method string
	Route  string // gin route pattern, e.g. /api/groups/:id
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a gin engine behind an httptest server that records every request.
type Server struct {
	URL string

	engine *gin.Engine
	srv    *httptest.Server

	mu       sync.Mutex
	requests []Request
}

// New starts a fake backend that is closed when the test ends.
// Routes must be registered before the code under test issues requests.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{engine: gin.New()}
	s.engine.Use(s.record)
	s.srv = httptest.NewServer(s.engine)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	// Recorded before the handler runs so a test never observes a response
	// without its request.
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: c.Request.Method,
		Route:  c.FullPath(),
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.Query(),
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	c.Next()
}

// Handle registers a handler for method and gin route pattern.
func (s *Server) Handle(method, route string, h gin.HandlerFunc) {
	s.engine.Handle(method, route, h)
}

// Reply registers a handler that always answers with status and a JSON body.
func (s *Server) Reply(method, route string, status int, body any) {
	s.engine.Handle(method, route, func(c *gin.Context) {
		if body == nil {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	})
}

// Requests returns a snapshot of recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests hit method and route.
func (s *Server) Count(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method == method && r.Route == route {
			n++
		}
	}
	return n
}

// Last returns the most recent request for method and route.
func (s *Server) Last(method, route string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		r := s.requests[i]
		if r.Method == method && r.Route == route {
			return r, true
		}
	}
	return Request{}, false
}

// StaticToken is an api.TokenSource with a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Close shuts the fake backend down before the test ends.
func (s *Server) Close() { s.srv.Close() }
