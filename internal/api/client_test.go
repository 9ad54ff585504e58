package api

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/notepid/campus_connect/internal/apitest"
)

type mutableToken struct {
	mu  sync.Mutex
	tok string
}

func (m *mutableToken) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tok
}

func (m *mutableToken) set(tok string) {
	m.mu.Lock()
	m.tok = tok
	m.mu.Unlock()
}

func TestBearerAttachedToEveryRequest(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/api/groups", http.StatusOK, []gin.H{})
	srv.Reply(http.MethodPost, "/api/groups/:id/leave", http.StatusOK, nil)
	srv.Reply(http.MethodGet, "/api/messages/inbox", http.StatusOK, []gin.H{})

	tokens := &mutableToken{}
	c := New(srv.URL, tokens, 0)
	ctx := context.Background()

	if err := c.Get(ctx, "/api/groups", nil, nil); err != nil {
		t.Fatalf("anonymous get: %v", err)
	}

	tokens.set("abc")
	if err := c.Post(ctx, "/api/groups/4/leave", nil, nil, nil); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := c.Get(ctx, "/api/messages/inbox", nil, nil); err != nil {
		t.Fatalf("inbox: %v", err)
	}

	reqs := srv.Requests()
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(reqs))
	}
	if got := reqs[0].Header.Get("Authorization"); got != "" {
		t.Fatalf("expected no Authorization before login, got %q", got)
	}
	for _, r := range reqs[1:] {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Fatalf("%s %s: expected bearer header, got %q", r.Method, r.Path, got)
		}
	}
	for _, r := range reqs {
		if r.Header.Get(RequestIDHeader) == "" {
			t.Fatalf("%s %s: missing request id", r.Method, r.Path)
		}
	}
	if reqs[1].Header.Get(RequestIDHeader) == reqs[2].Header.Get(RequestIDHeader) {
		t.Fatalf("expected distinct request ids")
	}
}

func TestDoDecodesJSONAndSendsQuery(t *testing.T) {
	srv := apitest.New(t)
	srv.Handle(http.MethodGet, "/api/groups/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"id": 1, "name": c.Query("query")}})
	})

	c := New(srv.URL+"/", nil, 0)
	var out []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	q := map[string][]string{"query": {"calc 1"}}
	if err := c.Get(context.Background(), "/api/groups/search", q, &out); err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(out) != 1 || out[0].Name != "calc 1" {
		t.Fatalf("unexpected result %+v", out)
	}
}

func TestJSONBodyIsSent(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, gin.H{"token": "t"})

	c := New(srv.URL, nil, 0)
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": "a@b.edu", "password": "pw"}
	if err := c.Post(context.Background(), "/api/auth/login", nil, body, &out); err != nil {
		t.Fatalf("login: %v", err)
	}
	r, ok := srv.Last(http.MethodPost, "/api/auth/login")
	if !ok {
		t.Fatalf("login request not recorded")
	}
	if r.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("expected json content type, got %q", r.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(r.Body), `"email":"a@b.edu"`) {
		t.Fatalf("unexpected body %s", r.Body)
	}
	if out.Token != "t" {
		t.Fatalf("expected token t, got %q", out.Token)
	}
}

func TestErrorClassification(t *testing.T) {
	srv := apitest.New(t)
	srv.Reply(http.MethodGet, "/unauthorized", http.StatusUnauthorized, nil)
	srv.Reply(http.MethodGet, "/forbidden", http.StatusForbidden, gin.H{"message": "Only the creator can edit"})
	srv.Reply(http.MethodGet, "/bad", http.StatusBadRequest, gin.H{"message": "Group is full"})
	srv.Reply(http.MethodGet, "/delete", http.StatusBadRequest, gin.H{"success": false, "error": "not creator"})
	srv.Reply(http.MethodGet, "/boom", http.StatusInternalServerError, nil)
	srv.Reply(http.MethodGet, "/missing", http.StatusNotFound, nil)
	srv.Handle(http.MethodGet, "/garbage", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte("{not json"))
	})

	c := New(srv.URL, nil, 0)
	ctx := context.Background()

	cases := []struct {
		path    string
		kind    Kind
		status  int
		message string
	}{
		{"/unauthorized", KindAuth, 401, ""},
		{"/forbidden", KindAuth, 403, "Only the creator can edit"},
		{"/bad", KindValidation, 400, "Group is full"},
		{"/delete", KindValidation, 400, "not creator"},
		{"/boom", KindServer, 500, ""},
		{"/missing", KindNotFound, 404, ""},
		{"/garbage", KindAmbiguous, 200, ""},
	}
	for _, tc := range cases {
		var out map[string]any
		err := c.Get(ctx, tc.path, nil, &out)
		var apiErr *Error
		if !asError(err, &apiErr) {
			t.Fatalf("%s: expected *Error, got %v", tc.path, err)
		}
		if apiErr.Kind != tc.kind || apiErr.Status != tc.status || apiErr.Message != tc.message {
			t.Fatalf("%s: got kind=%v status=%d message=%q", tc.path, apiErr.Kind, apiErr.Status, apiErr.Message)
		}
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := apitest.New(t)
	url := srv.URL
	srv.Close()

	c := New(url, nil, 0)
	err := c.Get(context.Background(), "/api/groups", nil, nil)
	if KindOf(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if got := Describe("load groups", err); got != "Failed to load groups. Cannot connect to server. Make sure the backend is running." {
		t.Fatalf("unexpected description %q", got)
	}
}
