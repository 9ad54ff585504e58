package session

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/notepid/campus_connect/internal/api"
	"github.com/notepid/campus_connect/internal/apitest"
	"github.com/notepid/campus_connect/internal/db"
	"github.com/notepid/campus_connect/internal/user"
)

func signToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "campus.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

type fixture struct {
	srv   *apitest.Server
	store *Store
	svc   *Service
}

func newFixture(t *testing.T, database *db.DB) *fixture {
	t.Helper()
	srv := apitest.New(t)
	store := NewStore(database, srv.URL)
	client := api.New(srv.URL, store, 0)
	return &fixture{srv: srv, store: store, svc: NewService(store, client, user.NewRepo(client))}
}

// serveMe answers /api/users/me only for the bearer token want.
func (f *fixture) serveMe(want string) {
	f.srv.Handle(http.MethodGet, "/api/users/me", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer "+want {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": 7, "username": "jdoe", "email": "jdoe@campus.edu"})
	})
}

func TestLoginStoresTokenAndLoadsUser(t *testing.T) {
	f := newFixture(t, openDB(t))
	tok := signToken(t, "7", time.Now().Add(time.Hour))
	f.srv.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, gin.H{"token": tok, "type": "Bearer", "id": 7})
	f.serveMe(tok)

	u, err := f.svc.Login(context.Background(), " jdoe@campus.edu ", "secret")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if u.Username != "jdoe" || !f.store.LoggedIn() || f.store.Token() != tok || f.store.UserID() != 7 {
		t.Fatalf("unexpected session state user=%+v token=%q", f.store.User(), f.store.Token())
	}

	r, _ := f.srv.Last(http.MethodPost, "/api/auth/login")
	if string(r.Body) != `{"email":"jdoe@campus.edu","password":"secret"}` {
		t.Fatalf("unexpected login body %s", r.Body)
	}
	if r.Header.Get("Authorization") != "" {
		t.Fatalf("expected login to be sent without a token")
	}
}

func TestLoginFailureLeavesSessionEmpty(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.Reply(http.MethodPost, "/api/auth/login", http.StatusUnauthorized, nil)

	_, err := f.svc.Login(context.Background(), "jdoe@campus.edu", "wrong")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := DescribeLogin(err); got != "Invalid email or password." {
		t.Fatalf("unexpected description %q", got)
	}
	if f.store.LoggedIn() || f.store.Token() != "" {
		t.Fatalf("expected no session after failed login")
	}
}

func TestLoginRejectsResponseWithoutToken(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.Reply(http.MethodPost, "/api/auth/login", http.StatusOK, gin.H{"type": "Bearer"})

	_, err := f.svc.Login(context.Background(), "jdoe@campus.edu", "secret")
	if api.KindOf(err) != api.KindAmbiguous {
		t.Fatalf("expected ambiguous error, got %v", err)
	}
	if f.store.LoggedIn() {
		t.Fatalf("expected no session")
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.svc.Login(context.Background(), "  ", "x"); err == nil {
		t.Fatalf("expected error for blank email")
	}
	if n := len(f.srv.Requests()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestRegisterSignsIn(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.Reply(http.MethodPost, "/api/auth/register", http.StatusOK, gin.H{"token": "opaque"})
	f.serveMe("opaque")

	req := &RegisterRequest{Username: "jdoe", Email: "jdoe@campus.edu", Password: "pw", FirstName: "J", LastName: "Doe"}
	if _, err := f.svc.Register(context.Background(), req); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if !f.store.LoggedIn() {
		t.Fatalf("expected session after register")
	}
}

func TestDescribeRegister(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.Reply(http.MethodPost, "/api/auth/register", http.StatusBadRequest, gin.H{"message": "Email already exists"})

	req := &RegisterRequest{Username: "jdoe", Email: "jdoe@campus.edu", Password: "pw", FirstName: "J", LastName: "Doe"}
	_, err := f.svc.Register(context.Background(), req)
	if got := DescribeRegister(err); got != "Email already exists" {
		t.Fatalf("unexpected description %q", got)
	}
	if err := (&RegisterRequest{Email: "x"}).Validate(); err == nil {
		t.Fatalf("expected missing username to fail")
	}
}

func TestLogoutDropsBearer(t *testing.T) {
	database := openDB(t)
	f := newFixture(t, database)
	f.srv.Reply(http.MethodGet, "/api/groups", http.StatusOK, []gin.H{})
	if err := f.store.Set("tok", &user.User{ID: 7}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := f.svc.Logout(); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	client := api.New(f.srv.URL, f.store, 0)
	if err := client.Get(context.Background(), "/api/groups", nil, nil); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	r, _ := f.srv.Last(http.MethodGet, "/api/groups")
	if r.Header.Get("Authorization") != "" {
		t.Fatalf("expected no bearer after logout")
	}
	if saved, _ := database.LoadSession(); saved != nil {
		t.Fatalf("expected persisted session to be cleared")
	}
}

func TestRestoreResumesPersistedSession(t *testing.T) {
	database := openDB(t)
	first := newFixture(t, database)
	tok := signToken(t, "7", time.Now().Add(time.Hour))
	if err := first.store.Set(tok, &user.User{ID: 7, Username: "jdoe"}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	// Same database and origin, new process.
	second := &fixture{srv: first.srv, store: NewStore(database, first.srv.URL)}
	client := api.New(first.srv.URL, second.store, 0)
	second.svc = NewService(second.store, client, user.NewRepo(client))
	second.serveMe(tok)

	u, err := second.svc.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}
	if u.ID != 7 || second.store.Token() != tok || !second.store.LoggedIn() {
		t.Fatalf("unexpected restored session %+v", u)
	}
}

func TestRestoreDiscardsExpiredToken(t *testing.T) {
	database := openDB(t)
	f := newFixture(t, database)
	tok := signToken(t, "7", time.Now().Add(-time.Minute))
	if err := database.SaveSession(&db.SavedSession{Token: tok, UserID: 7, Origin: f.srv.URL}); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}

	if _, err := f.svc.Restore(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if n := len(f.srv.Requests()); n != 0 {
		t.Fatalf("expected no network call for an expired token, got %d", n)
	}
	if saved, _ := database.LoadSession(); saved != nil {
		t.Fatalf("expected expired session to be removed")
	}
}

func TestRestoreDiscardsOtherOrigin(t *testing.T) {
	database := openDB(t)
	f := newFixture(t, database)
	if err := database.SaveSession(&db.SavedSession{Token: "tok", Origin: "http://elsewhere:8080"}); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}
	if _, err := f.svc.Restore(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestRestoreDiscardsRejectedToken(t *testing.T) {
	database := openDB(t)
	f := newFixture(t, database)
	f.serveMe("something-else")
	if err := database.SaveSession(&db.SavedSession{Token: "stale", Origin: f.srv.URL}); err != nil {
		t.Fatalf("SaveSession returned error: %v", err)
	}
	if _, err := f.svc.Restore(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if f.store.Token() != "" {
		t.Fatalf("expected token to be dropped")
	}
}

func TestRestoreWithoutSavedSession(t *testing.T) {
	f := newFixture(t, openDB(t))
	if _, err := f.svc.Restore(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	c, err := ParseClaims(signToken(t, "42", exp))
	if err != nil {
		t.Fatalf("ParseClaims returned error: %v", err)
	}
	if c.Subject != "42" || !c.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected claims %+v", c)
	}
	if c.Expired(time.Now()) || !c.Expired(exp.Add(time.Second)) {
		t.Fatalf("unexpected expiry evaluation")
	}
	if _, err := ParseClaims("not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
