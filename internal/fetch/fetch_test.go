package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTML_Success(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept-Language")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer srv.Close()

	c := New(Config{})
	html, status, err := c.HTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	if !strings.Contains(html, "ok") {
		t.Errorf("body = %q", html)
	}
	if !strings.Contains(gotUA, "NewelAppraiser") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotAccept == "" {
		t.Error("bot headers not applied")
	}
}

func TestHTML_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Config{})
	html, status, err := c.HTML(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 403")
	}
	if html != "" {
		t.Errorf("body should be empty on failure, got %q", html)
	}
	if status != http.StatusForbidden {
		t.Errorf("status = %d", status)
	}
}

func TestHTML_Truncation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 5000))
	}))
	defer srv.Close()

	c := New(Config{MaxBody: 1024})
	html, _, err := c.HTML(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if len(html) != 1024 {
		t.Errorf("len = %d, want truncation to 1024", len(html))
	}
}

func TestHTML_ContextCanceled(t *testing.T) {
	c := New(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.HTML(ctx, "http://127.0.0.1:1/never")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestTryLogin(t *testing.T) {
	const token = "tok-123"
	mux := http.NewServeMux()
	var sawToken, sawCreds bool
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			sawToken = r.PostFormValue("csrfmiddlewaretoken") == token
			sawCreds = r.PostFormValue("username") == "user" && r.PostFormValue("password") == "secret"
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
			fmt.Fprint(w, "<html><body>My Account</body></html>")
			return
		}
		fmt.Fprintf(w, `<form><input name="csrfmiddlewaretoken" value=%q></form>`, token)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{
		Username: "user",
		Password: "secret",
		LoginURL: srv.URL + "/login/",
	})

	if !c.TryLogin(context.Background()) {
		t.Fatal("TryLogin() = false, want success")
	}
	if !sawToken {
		t.Error("CSRF token not posted")
	}
	if !sawCreds {
		t.Error("credentials not posted")
	}
	if !c.LoggedIn() {
		t.Error("LoggedIn() = false after success")
	}

	// Second call short-circuits on the session flag.
	if !c.TryLogin(context.Background()) {
		t.Error("repeat TryLogin() = false")
	}
}

func TestTryLogin_StillAnonymous(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		// Response still looks like an anonymous login page.
		fmt.Fprint(w, `<html><body>Sign in with your password</body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(Config{Username: "user", Password: "bad", LoginURL: srv.URL + "/login/"})
	if c.TryLogin(context.Background()) {
		t.Error("TryLogin() = true for anonymous-looking response")
	}
}

func TestTryLogin_NoCredentials(t *testing.T) {
	c := New(Config{})
	if c.TryLogin(context.Background()) {
		t.Error("TryLogin() without credentials must be a no-op")
	}
}
