package handlers

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"
)

var csrfInput = regexp.MustCompile(`<input type="hidden" name="csrf_token" value="([^"]+)">`)

func TestCSRF_FormsCarryToken(t *testing.T) {
	d := newTestDeps()
	seedPost(d, 1, alice, "Mine")
	r := newTestRouter(d.service())

	pages := []struct {
		target string
		cookie *http.Cookie
	}{
		{"/register", nil},
		{"/login", nil},
		{"/account", d.sessionFor(t, alice)},
		{"/post/new", d.sessionFor(t, alice)},
		{"/post/1/update", d.sessionFor(t, alice)},
		{"/post/1", d.sessionFor(t, alice)},
	}
	for _, p := range pages {
		t.Run(p.target, func(t *testing.T) {
			var cookies []*http.Cookie
			if p.cookie != nil {
				cookies = append(cookies, p.cookie)
			}
			w := doRequest(r, http.MethodGet, p.target, nil, cookies...)
			if w.Code != http.StatusOK {
				t.Fatalf("status %d", w.Code)
			}
			if !csrfInput.MatchString(w.Body.String()) {
				t.Fatalf("form has no csrf token")
			}
			c := responseCookie(w, csrfCookie)
			if c == nil || !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
				t.Fatalf("csrf cookie: %+v", c)
			}
		})
	}
}

func TestCSRF_RejectsPostsWithoutValidToken(t *testing.T) {
	form := func(token string) url.Values {
		return url.Values{"email": {"alice@x.com"}, "password": {"pw"}, csrfField: {token}}
	}

	t.Run("no token no cookie", func(t *testing.T) {
		d := newTestDeps()
		r := newTestRouter(d.service())
		w := doRequest(r, http.MethodPost, "/login", form(""))
		if w.Code != http.StatusForbidden || d.auth.logins != 0 {
			t.Fatalf("status %d, logins %d", w.Code, d.auth.logins)
		}
	})

	t.Run("cookie without token", func(t *testing.T) {
		d := newTestDeps()
		r := newTestRouter(d.service())
		_, cookie := csrfPair(r)
		w := doRequest(r, http.MethodPost, "/login", form(""), cookie)
		if w.Code != http.StatusForbidden || d.auth.logins != 0 {
			t.Fatalf("status %d, logins %d", w.Code, d.auth.logins)
		}
	})

	t.Run("token from another cookie", func(t *testing.T) {
		d := newTestDeps()
		r := newTestRouter(d.service())
		token, _ := csrfPair(r)
		_, otherCookie := csrfPair(r)
		w := doRequest(r, http.MethodPost, "/login", form(token), otherCookie)
		if w.Code != http.StatusForbidden || d.auth.logins != 0 {
			t.Fatalf("status %d, logins %d", w.Code, d.auth.logins)
		}
	})

	t.Run("mangled token", func(t *testing.T) {
		d := newTestDeps()
		r := newTestRouter(d.service())
		_, cookie := csrfPair(r)
		w := doRequest(r, http.MethodPost, "/login", form("bm90LWEtdG9rZW4="), cookie)
		if w.Code != http.StatusForbidden || d.auth.logins != 0 {
			t.Fatalf("status %d, logins %d", w.Code, d.auth.logins)
		}
	})

	t.Run("token from another server key", func(t *testing.T) {
		d := newTestDeps()
		other := newTestRouter(d.service())
		token, cookie := csrfPair(other)
		r := newTestRouter(d.service())
		w := doRequest(r, http.MethodPost, "/login", form(token), cookie)
		if w.Code != http.StatusForbidden || d.auth.logins != 0 {
			t.Fatalf("status %d, logins %d", w.Code, d.auth.logins)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		d := newTestDeps()
		r := newTestRouter(d.service())
		token, cookie := csrfPair(r)
		w := doRequest(r, http.MethodPost, "/login", form(token), cookie)
		if w.Code != http.StatusFound || d.auth.logins != 1 {
			t.Fatalf("status %d, logins %d", w.Code, d.auth.logins)
		}
	})
}

func TestCSRF_ProtectsEveryForm(t *testing.T) {
	d := newTestDeps()
	seedPost(d, 1, alice, "Mine")
	r := newTestRouter(d.service())

	for _, target := range []string{"/register", "/account", "/post/new", "/post/1/update", "/post/1/delete"} {
		t.Run(target, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, target, url.Values{csrfField: {""}, "title": {"t"}, "content": {"c"}}, d.sessionFor(t, alice))
			if w.Code != http.StatusForbidden {
				t.Fatalf("status: got %d, want 403", w.Code)
			}
			if !strings.Contains(w.Body.String(), "403") {
				t.Fatalf("expected the 403 page")
			}
		})
	}
	if d.auth.registers != 0 || d.account.updates != 0 || len(d.posts.created) != 0 || len(d.posts.updated) != 0 || len(d.posts.deleted) != 0 {
		t.Fatalf("a rejected request reached a handler")
	}
}

func TestCSRF_GetDeleteNeedsNoToken(t *testing.T) {
	d := newTestDeps()
	seedPost(d, 1, alice, "Mine")
	r := newTestRouter(d.service())

	w := doRequest(r, http.MethodGet, "/post/1/delete", nil, d.sessionFor(t, alice))
	if w.Code != http.StatusFound || len(d.posts.deleted) != 1 {
		t.Fatalf("status %d, deleted %v", w.Code, d.posts.deleted)
	}
}
