package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-school/config"
	"github.com/goliatone/go-school/persistence"
	"github.com/goliatone/go-school/server"
)

const (
	adminEmail    = "admin@school.local"
	adminPassword = "super-secret"
)

func testEnvironment(extra map[string]string) map[string]string {
	environ := map[string]string{
		"JWT_SECRET":     "0123456789abcdef0123456789abcdef",
		"DB_DRIVER":      "sqlite",
		"DB_DSN":         persistence.MemoryDSN(uuid.NewString()),
		"DB_SEED":        "true",
		"ADMIN_EMAIL":    adminEmail,
		"ADMIN_PASSWORD": adminPassword,
		"BCRYPT_COST":    "4",
	}
	for k, v := range extra {
		environ[k] = v
	}
	return environ
}

func newTestServer(t *testing.T, extra map[string]string) *server.Server {
	t.Helper()

	cfg, err := config.FromEnvironment(testEnvironment(extra))
	require.NoError(t, err)

	srv, err := server.New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	return srv
}

func doRequest(t *testing.T, srv *server.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := srv.App().Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	res.Body.Close()

	return res, raw
}

func login(t *testing.T, srv *server.Server) string {
	t.Helper()

	res, raw := doRequest(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))

	var payload struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	require.NotEmpty(t, payload.Token)
	assert.Equal(t, "owner", payload.User["role"])

	return payload.Token
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	res, raw := doRequest(t, srv, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Welcome to School API!", string(raw))

	res, raw = doRequest(t, srv, http.MethodGet, "/api/test", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var listing struct {
		Routes []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(raw, &listing))
	assert.Contains(t, listing.Routes, "POST /api/auth/login")

	res, raw = doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(raw), `"status":"ok"`)
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/students", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	res, err := srv.App().Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://localhost:5173", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", res.Header.Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestSeededOwnerFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	token := login(t, srv)

	res, raw := doRequest(t, srv, http.MethodGet, "/api/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode, string(raw))

	res, raw = doRequest(t, srv, http.MethodPost, "/api/teachers", token, map[string]string{
		"name":  "Grace Hopper",
		"email": "grace@school.local",
		"phone": "202-456-1111",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(raw))

	var teacher map[string]any
	require.NoError(t, json.Unmarshal(raw, &teacher))
	teacherID, _ := teacher["id"].(string)
	require.NotEmpty(t, teacherID)
	assert.Equal(t, "+12024561111", teacher["phone"])

	res, raw = doRequest(t, srv, http.MethodPost, "/api/courses", token, map[string]string{
		"title":      "Compilers",
		"teacher_id": teacherID,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, string(raw))

	res, raw = doRequest(t, srv, http.MethodGet, "/api/courses?page=1&limit=5", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))

	var page struct {
		Data       []map[string]any `json:"data"`
		Total      int              `json:"total"`
		TotalPages int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Compilers", page.Data[0]["title"])
}

func TestLogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t, nil)
	token := login(t, srv)

	res, _ := doRequest(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = doRequest(t, srv, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = doRequest(t, srv, http.MethodGet, "/api/students", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRedisRevocationStore(t *testing.T) {
	mr := miniredis.RunT(t)
	srv := newTestServer(t, map[string]string{"REDIS_URL": "redis://" + mr.Addr() + "/0"})
	token := login(t, srv)

	res, _ := doRequest(t, srv, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.NotEmpty(t, mr.Keys())

	res, _ = doRequest(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRedisUnreachable(t *testing.T) {
	cfg, err := config.FromEnvironment(testEnvironment(map[string]string{
		"REDIS_URL": "redis://127.0.0.1:1/0",
	}))
	require.NoError(t, err)

	_, err = server.New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSharedDatabase(t *testing.T) {
	db, err := persistence.OpenMemory(context.Background())
	require.NoError(t, err)
	defer db.Close()

	cfg, err := config.FromEnvironment(testEnvironment(nil))
	require.NoError(t, err)

	srv, err := server.New(context.Background(), cfg, server.WithDB(db))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	// the caller keeps ownership of the handle
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestNamedRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	names := map[string]string{}
	for _, rt := range srv.Routes() {
		if rt.Name != "" {
			names[rt.Name] = string(rt.Method) + " " + rt.Path
		}
	}

	assert.Equal(t, "POST /api/auth/login", names["sign-in.post"])
	assert.Equal(t, "GET /api/students/:id", names["students.get"])
	assert.Equal(t, "POST /api/courses/:id/students", names["courses.enroll"])
	assert.Equal(t, "GET /health", names["health"])
}
