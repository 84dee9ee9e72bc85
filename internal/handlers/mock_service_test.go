package handlers

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"personal_blog/internal/models"
	"personal_blog/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser *models.User
	registerErr  error
	session      service.Session
	authErr      error

	lastRegister service.RegistrationInput
	lastLogin    service.LoginInput
	registers    int
	logins       int
	endErr       error
	ended        []int64
}

func (m *mockAuth) Register(_ context.Context, in service.RegistrationInput) (*models.User, error) {
	m.registers++
	m.lastRegister = in
	return m.registerUser, m.registerErr
}

func (m *mockAuth) Authenticate(_ context.Context, in service.LoginInput) (service.Session, error) {
	m.logins++
	m.lastLogin = in
	return m.session, m.authErr
}

func (m *mockAuth) EndSessions(_ context.Context, userID int64) error {
	m.ended = append(m.ended, userID)
	return m.endErr
}

type mockAccount struct {
	users     map[int64]*models.User
	lookupErr error
	updateErr error

	lastUpdate  service.AccountInput
	lastPicture string
	updates     int
}

func (m *mockAccount) UserByID(_ context.Context, id int64) (*models.User, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockAccount) UpdateAccount(_ context.Context, current *models.User, in service.AccountInput) (*models.User, error) {
	m.updates++
	m.lastUpdate = in
	if in.Picture != nil {
		b, _ := io.ReadAll(in.Picture)
		m.lastPicture = string(b)
	}
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	u := *current
	u.Username, u.Email = in.Username, in.Email
	return &u, nil
}

type mockPosts struct {
	posts map[int64]*models.Post
	err   error

	created []service.PostInput
	updated []service.PostInput
	deleted []int64
}

func (m *mockPosts) ListPosts(context.Context) ([]models.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Post
	for id := int64(1); id <= int64(len(m.posts)); id++ {
		if p, ok := m.posts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPosts) GetPost(_ context.Context, id int64) (*models.Post, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPosts) EditablePost(ctx context.Context, actor *models.User, id int64) (*models.Post, error) {
	p, err := m.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(actor) {
		return nil, service.ErrForbidden
	}
	return p, nil
}

func (m *mockPosts) CreatePost(_ context.Context, author *models.User, in service.PostInput) (*models.Post, error) {
	m.created = append(m.created, in)
	if m.err != nil {
		return nil, m.err
	}
	return &models.Post{ID: int64(len(m.posts) + 1), Title: in.Title, Content: in.Content, UserID: author.ID}, nil
}

func (m *mockPosts) UpdatePost(ctx context.Context, actor *models.User, id int64, in service.PostInput) (*models.Post, error) {
	p, err := m.EditablePost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	m.updated = append(m.updated, in)
	p.Title, p.Content = in.Title, in.Content
	return p, nil
}

func (m *mockPosts) DeletePost(ctx context.Context, actor *models.User, id int64) error {
	if _, err := m.EditablePost(ctx, actor, id); err != nil {
		return err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

// ---- Helpers ----

var (
	alice = &models.User{ID: 1, Username: "alice", Email: "alice@x.com", ImageFile: models.DefaultImageFile}
	bob   = &models.User{ID: 2, Username: "bob", Email: "bob@x.com", ImageFile: models.DefaultImageFile}
)

type testDeps struct {
	auth     *mockAuth
	account  *mockAccount
	posts    *mockPosts
	sessions *service.SessionManager
}

func newTestDeps() *testDeps {
	return &testDeps{
		auth:     &mockAuth{},
		account:  &mockAccount{users: map[int64]*models.User{alice.ID: alice, bob.ID: bob}},
		posts:    &mockPosts{posts: map[int64]*models.Post{}},
		sessions: service.NewSessionManager("handler-test-secret", time.Hour, 24*time.Hour),
	}
}

func (d *testDeps) service() *service.Service {
	return &service.Service{
		Authorization: d.auth,
		Sessions:      d.sessions,
		Account:       d.account,
		Posts:         d.posts,
	}
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, Options{StaticDir: "testdata", MaxUploadMB: 1})
	return h.InitRoutes()
}

// sessionFor returns a valid session cookie for u.
func (d *testDeps) sessionFor(t *testing.T, u *models.User) *http.Cookie {
	t.Helper()
	s, err := d.sessions.IssueSession(u.ID, u.SessionVersion, false)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: sessionCookie, Value: s.Token}
}

var csrfMeta = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

// csrfPair loads a page and returns the CSRF token it embeds together with
// the cookie that token is bound to.
func csrfPair(r http.Handler) (string, *http.Cookie) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/about", nil))
	m := csrfMeta.FindStringSubmatch(w.Body.String())
	if m == nil {
		return "", nil
	}
	return html.UnescapeString(m[1]), responseCookie(w, csrfCookie)
}

// doRequest sends a form request. POSTs get a valid CSRF token unless form
// already carries a csrf_token value.
func doRequest(r http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	if method == http.MethodPost && !form.Has(csrfField) {
		token, cookie := csrfPair(r)
		withToken := url.Values{csrfField: {token}}
		for k, v := range form {
			withToken[k] = v
		}
		form = withToken
		if cookie != nil {
			cookies = append(cookies, cookie)
		}
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// responseCookie returns the last Set-Cookie for name, or nil.
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

// followFlashes reads the flash cookie a redirect left behind.
func followFlashes(t *testing.T, d *testDeps, w *httptest.ResponseRecorder) []models.Flash {
	t.Helper()
	c := responseCookie(w, flashCookie)
	if c == nil || c.Value == "" {
		return nil
	}
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		t.Fatalf("unescape flash cookie: %v", err)
	}
	flashes, err := d.sessions.ParseFlashes(v)
	if err != nil {
		t.Fatalf("parse flashes: %v", err)
	}
	return flashes
}
