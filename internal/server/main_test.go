package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"musefeed/internal/config"
	"musefeed/internal/database"
	"musefeed/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-at-least-32-characters-long"

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	server *Server
	app    *fiber.App
}

// newTestEnv builds a server on an in-memory SQLite database. Pass a Redis
// client to route realtime events through pub/sub.
func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{Env: "test", Port: "0", JWTSecret: testSecret, AllowedOrigins: "http://localhost:5173"}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testEnv{t: t, db: db, server: s, app: s.App()}
}

func newMiniRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func (e *testEnv) user(name string) uint {
	e.t.Helper()
	u := &models.User{Username: name}
	require.NoError(e.t, e.db.Create(u).Error)
	return u.ID
}

func (e *testEnv) media(name string) uint {
	e.t.Helper()
	m := &models.Media{Name: name, Artist: "Various"}
	require.NoError(e.t, e.db.Create(m).Error)
	return m.ID
}

func (e *testEnv) token(userID uint) string {
	e.t.Helper()
	tok, err := e.server.auth.IssueToken(userID, time.Hour)
	require.NoError(e.t, err)
	return tok
}

// do sends a request as userID (0 for anonymous) and decodes the JSON body.
func (e *testEnv) do(method, path string, userID uint, body any) (int, map[string]any) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+e.token(userID))
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	if len(raw) > 0 {
		require.NoError(e.t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

// createPost creates a post through the API and returns its id.
func (e *testEnv) createPost(userID uint, content string, mediaID *uint) uint {
	e.t.Helper()
	status, body := e.do(http.MethodPost, "/api/posts", userID, map[string]any{"content": content, "media_id": mediaID})
	require.Equal(e.t, http.StatusCreated, status, body)
	return uint(body["post"].(map[string]any)["id"].(float64))
}

func newRawRequest(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func ptr[T any](v T) *T { return &v }
