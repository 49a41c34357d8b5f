package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fibkeeper/internal/cryptox"
	"github.com/dmitrijs2005/fibkeeper/internal/logging"
	"github.com/dmitrijs2005/fibkeeper/internal/server/auth"
	"github.com/dmitrijs2005/fibkeeper/internal/server/fibonacci"
	"github.com/dmitrijs2005/fibkeeper/internal/server/session"
	"github.com/dmitrijs2005/fibkeeper/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (c *client) call(method, path, body string) (int, string) {
	c.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, string(b)
}

func newTestAPI(t *testing.T) *client {
	t.Helper()

	hash, err := cryptox.HashPassword([]byte("Squ!r3"), bcrypt.MinCost)
	require.NoError(t, err)
	backend, err := auth.NewBackend("tester", hash, []byte("secret"))
	require.NoError(t, err)

	// plain-HTTP test server, so the cookie cannot be Secure
	sessions := session.NewManager(session.NewStore(), backend, "secret", time.Hour, false)
	s := NewHTTPServer(":0", logging.NewNopLogger(), fibonacci.NewCounter(), users.NewDirectory(), backend, sessions)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &client{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func TestAPI_EndToEnd(t *testing.T) {
	c := newTestAPI(t)

	code, body := c.call(http.MethodGet, "/hello", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Hello World!", body)

	code, _ = c.call(http.MethodPost, "/next", "")
	assert.Equal(t, http.StatusUnauthorized, code, "anonymous clients are turned away")

	code, body = c.call(http.MethodPost, "/login", `{"username":"tester","password":"wrong"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotContains(t, body, "Squ!r3")

	code, body = c.call(http.MethodPost, "/login", `{"username":"tester","password":"Squ!r3"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Empty(t, body)

	for _, want := range []string{"1", "1", "2", "3", "5"} {
		code, body = c.call(http.MethodPost, "/next", "")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, want, body)
	}

	code, body = c.call(http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", body)

	code, _ = c.call(http.MethodPost, "/users", `{"id":"u1","name":"Ann","age":30}`)
	assert.Equal(t, http.StatusOK, code)

	code, body = c.call(http.MethodGet, "/user/u1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "{\n  \"id\": \"u1\",\n  \"name\": \"Ann\",\n  \"age\": 30\n}", body)

	code, body = c.call(http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[\n  {\n    \"id\": \"u1\",\n    \"name\": \"Ann\",\n    \"age\": 30\n  }\n]", body)

	code, body = c.call(http.MethodGet, "/user/u2", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "user does not exist for the given ID", body)

	code, _ = c.call(http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusOK, code)

	code, _ = c.call(http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusUnauthorized, code, "logout returns the client to Anonymous")
}

func TestAPI_RejectsLooseJSON(t *testing.T) {
	c := newTestAPI(t)

	code, _ := c.call(http.MethodPost, "/login", `{"USERNAME":"tester","PassWord":"Squ!r3"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = c.call(http.MethodPost, "/next", "")
	assert.Equal(t, http.StatusUnauthorized, code, "wrong-case keys must not log in")

	code, body := c.call(http.MethodPost, "/login", `{"username":"tester","password":"Squ!r3"}`)
	require.Equal(t, http.StatusOK, code, body)

	code, _ = c.call(http.MethodPost, "/users", `{"ID":"u9","Name":"Eve","AGE":7}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = c.call(http.MethodPost, "/users", `{"id":"u8","name":"Bob","age":7} trailing garbage`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = c.call(http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", body)
}

func TestHTTPServer_Run_StopsOnCancel(t *testing.T) {
	s := NewHTTPServer("127.0.0.1:0", logging.NewNopLogger(), fibonacci.NewCounter(), users.NewDirectory(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * shutdownTimeout):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHTTPServer_Run_BadAddress(t *testing.T) {
	s := NewHTTPServer("256.0.0.1:-1", logging.NewNopLogger(), nil, nil, nil, nil)

	err := s.Run(context.Background())
	require.Error(t, err)
}
