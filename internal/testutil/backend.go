package testutil

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Route keys accepted by Backend.Script.
const (
	RouteUpload        = "POST /api/upload"
	RouteVerifyPayment = "POST /api/verify-payment"
	RouteDeploy        = "POST /api/linkedin-apply"
	RouteStop          = "POST /api/stop-bot"
	RouteHistory       = "GET /api/history"
	RouteClearHistory  = "DELETE /api/history"
	RouteContact       = "POST /api/contact"
	RouteHealth        = "GET /health"
)

// Reply is one scripted response.
type Reply struct {
	Status int
	Body   string
	// Wait blocks the handler until closed (or the request is canceled).
	Wait <-chan struct{}
	// Drop closes the connection without a response.
	Drop bool
}

// JSON returns a 200 reply with body.
func JSON(body string) Reply {
	return Reply{Status: http.StatusOK, Body: body}
}

// Fail returns a reply with the given status and body.
func Fail(status int, body string) Reply {
	return Reply{Status: status, Body: body}
}

// Dropped returns a reply that severs the connection.
func Dropped() Reply {
	return Reply{Drop: true}
}

// Request records what the fake backend received.
type Request struct {
	Route    string
	Body     string
	Filename string
	Field    string
}

// Backend is a scripted stand-in for the ApplyNinja server. Each route
// replays its scripted replies in order; the last reply repeats.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	scripts  map[string][]Reply
	requests []Request
}

// NewBackend starts a fake backend with default replies for every route.
// The server is closed when the test finishes.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		scripts: map[string][]Reply{
			RouteUpload:        {JSON(Analysis())},
			RouteVerifyPayment: {JSON(`{"message":"Payment verified! Premium access granted."}`)},
			RouteDeploy:        {JSON(`{"message":"LinkedIn Pilot finished batch"}`)},
			RouteStop:          {JSON(`{"message":"Stop signal sent. Bot will halt after current action."}`)},
			RouteHistory:       {JSON(`[]`)},
			RouteClearHistory:  {JSON(`{"message":"History cleared"}`)},
			RouteContact:       {JSON(`{"message":"Message sent successfully! We'll get back to you shortly."}`)},
			RouteHealth:        {JSON(`{"status":"ok","env_loaded":true}`)},
		},
	}

	r := chi.NewRouter()
	r.Post("/api/upload", b.handle(RouteUpload))
	r.Post("/api/verify-payment", b.handle(RouteVerifyPayment))
	r.Post("/api/linkedin-apply", b.handle(RouteDeploy))
	r.Post("/api/stop-bot", b.handle(RouteStop))
	r.Get("/api/history", b.handle(RouteHistory))
	r.Delete("/api/history", b.handle(RouteClearHistory))
	r.Post("/api/contact", b.handle(RouteContact))
	r.Get("/health", b.handle(RouteHealth))

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake backend.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Script replaces the replies for route.
func (b *Backend) Script(route string, replies ...Reply) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scripts[route] = replies
}

// Calls returns how many requests route has received.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r.Route == route {
			n++
		}
	}
	return n
}

// Requests returns every request received on route.
func (b *Backend) Requests(route string) []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Request
	for _, r := range b.requests {
		if r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

func (b *Backend) handle(route string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := Request{Route: route}
		if ct, params, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && strings.HasPrefix(ct, "multipart/") {
			mr := multipart.NewReader(r.Body, params["boundary"])
			if part, err := mr.NextPart(); err == nil {
				rec.Field = part.FormName()
				rec.Filename = part.FileName()
				data, _ := io.ReadAll(part)
				rec.Body = string(data)
			}
		} else if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			rec.Body = string(data)
		}

		b.mu.Lock()
		b.requests = append(b.requests, rec)
		reply := b.next(route)
		b.mu.Unlock()

		if reply.Wait != nil {
			select {
			case <-reply.Wait:
			case <-r.Context().Done():
				return
			}
		}

		if reply.Drop {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			panic(http.ErrAbortHandler)
		}

		w.Header().Set("Content-Type", "application/json")
		status := reply.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply.Body)
	}
}

// next must be called with mu held.
func (b *Backend) next(route string) Reply {
	replies := b.scripts[route]
	if len(replies) == 0 {
		return Fail(http.StatusNotFound, `{"error":"no script"}`)
	}
	reply := replies[0]
	if len(replies) > 1 {
		b.scripts[route] = replies[1:]
	}
	return reply
}
