package handlers

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/jmfields/stockroom/internal/models"
	"github.com/jmfields/stockroom/internal/store"
)

// newTestApp builds the full router over an in-memory database. The CSRF
// wrapper is left off so test forms do not need tokens; it sits outside the
// mux in production.
func newTestApp(t *testing.T) (*store.Store, *httptest.Server) {
	t.Helper()

	db, err := store.NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	db.DB.SetMaxOpenConns(1)
	if err := db.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	sessionStore := sessions.NewCookieStore([]byte("test-session-key-0123456789abcdef"))
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Path = "/"

	templates := NewTemplateCache()
	if err := templates.Load("../../templates"); err != nil {
		t.Fatalf("failed to load templates: %v", err)
	}

	ts := httptest.NewServer(NewRouter(db, sessionStore, templates))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { db.DB.Close() })
	return db, ts
}

func seedUser(t *testing.T, db *store.Store, username, password, role string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := db.CreateUser(username, string(hash), role); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
}

func seedAdmin(t *testing.T, db *store.Store) {
	t.Helper()
	seedUser(t, db, "administrator", "localhost", models.RoleAdmin)
}

// newClient returns a cookie-carrying client that follows redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// noFollow returns a client sharing c's cookies that stops at the first
// redirect so its Location can be asserted.
func noFollow(c *http.Client) *http.Client {
	return &http.Client{
		Jar: c.Jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func login(t *testing.T, ts *httptest.Server, c *http.Client, username, password string) {
	t.Helper()
	resp, err := c.PostForm(ts.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login for %s did not land on a page: status %d", username, resp.StatusCode)
	}
}

func postForm(t *testing.T, c *http.Client, target string, form url.Values) string {
	t.Helper()
	resp, err := c.PostForm(target, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", target, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return string(body)
}

func assertRedirect(t *testing.T, resp *http.Response, wantLocation string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, wantLocation) {
		t.Fatalf("expected redirect to %s, got %s", wantLocation, loc)
	}
}
