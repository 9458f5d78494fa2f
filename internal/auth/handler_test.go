package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmart/storefront/internal/auth"
	"github.com/freshmart/storefront/internal/shared"
	"github.com/freshmart/storefront/internal/storeapi"
	_ "github.com/freshmart/storefront/testing"
)

type stubBackend struct {
	users      map[string]storeapi.User
	passwords  map[string]string
	registered []storeapi.RegisterPayload
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		users:     map[string]storeapi.User{"ada@example.com": {ID: 7, Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace"}},
		passwords: map[string]string{"ada@example.com": "correct-horse"},
	}
}

func (s *stubBackend) Register(ctx context.Context, p storeapi.RegisterPayload) (storeapi.Created, error) {
	if _, ok := s.users[p.Email]; ok {
		return storeapi.Created{}, &storeapi.APIError{Status: http.StatusConflict, Message: "Email already registered"}
	}
	s.registered = append(s.registered, p)
	id := int64(100 + len(s.registered))
	s.users[p.Email] = storeapi.User{ID: id, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName}
	s.passwords[p.Email] = p.Password
	return storeapi.Created{ID: id}, nil
}

func (s *stubBackend) Login(ctx context.Context, p storeapi.LoginPayload) (storeapi.User, error) {
	if s.passwords[p.Email] != p.Password || p.Password == "" {
		return storeapi.User{}, &storeapi.APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return s.users[p.Email], nil
}

type harness struct {
	handler  *auth.Handler
	sessions *shared.SessionManager
}

func newHarness(t *testing.T, backend auth.Backend) harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	return harness{handler: auth.NewHandler(nil, auth.NewService(backend), sessions, csrf), sessions: sessions}
}

// serve runs one request through the auth routes with a loaded and committed session.
func (h harness) serve(t *testing.T, method, path, body string, cookie *http.Cookie) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(method, "/auth"+path, strings.NewReader(body))
	if cookie != nil {
		req.AddCookie(cookie)
	}
	sess, err := h.sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	req = req.WithContext(ctx)

	router := chiRouter(h.handler)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.NoError(t, h.sessions.Commit(ctx, rec, req, sess))
	return rec, sess
}

func cookieFor(sess *shared.Session) *http.Cookie {
	return &http.Cookie{Name: "test_session", Value: sess.ID}
}

func TestLoginStoresIdentityInSession(t *testing.T) {
	h := newHarness(t, newStubBackend())

	rec, guest := h.serve(t, http.MethodGet, "/me", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := cookieFor(guest)

	var me struct {
		Data auth.Identity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.False(t, me.Data.Authenticated)
	assert.NotEmpty(t, me.Data.CSRFToken)

	rec, sess := h.serve(t, http.MethodPost, "/login", `{"email":" ADA@example.com ","password":"correct-horse"}`, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome back, Ada Lovelace")
	userID, ok := sess.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(7), userID)

	rec, _ = h.serve(t, http.MethodGet, "/me", "", cookie)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.True(t, me.Data.Authenticated)
	assert.Equal(t, "ada@example.com", me.Data.Email)
	assert.Equal(t, "Ada Lovelace", me.Data.Name)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, newStubBackend())
	rec, sess := h.serve(t, http.MethodPost, "/login", `{"email":"ada@example.com","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
	_, ok := sess.UserID()
	assert.False(t, ok)

	rec, _ = h.serve(t, http.MethodPost, "/login", `{"email":"not-an-email","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterSignsIn(t *testing.T) {
	backend := newStubBackend()
	h := newHarness(t, backend)

	rec, sess := h.serve(t, http.MethodPost, "/register", `{"email":"grace@example.com","password":"hopper1906","first_name":"Grace"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, backend.registered, 1)
	userID, ok := sess.UserID()
	require.True(t, ok)
	assert.Equal(t, int64(101), userID)

	rec, _ = h.serve(t, http.MethodPost, "/register", `{"email":"ada@example.com","password":"hopper1906","first_name":"Ada"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Email already registered")

	rec, _ = h.serve(t, http.MethodPost, "/register", `{"email":"x@example.com","password":"short","first_name":"X"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password must be at least 8 characters")
}

func TestLogoutDestroysSession(t *testing.T) {
	h := newHarness(t, newStubBackend())
	rec, sess := h.serve(t, http.MethodPost, "/login", `{"email":"ada@example.com","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := cookieFor(sess)

	rec, sess = h.serve(t, http.MethodPost, "/logout", "", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sess.Destroyed())

	rec, _ = h.serve(t, http.MethodGet, "/me", "", cookie)
	var me struct {
		Data auth.Identity `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.False(t, me.Data.Authenticated)
}
