package server

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	song := env.media("Blue Monday")

	tests := []struct {
		name           string
		userID         uint
		body           map[string]any
		expectedStatus int
		expectedCode   string
	}{
		{"success", alice, map[string]any{"content": "hello world"}, http.StatusCreated, ""},
		{"with media", alice, map[string]any{"content": "listen", "media_id": song}, http.StatusCreated, ""},
		{"missing content", alice, map[string]any{"content": "   "}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown media", alice, map[string]any{"content": "listen", "media_id": 999}, http.StatusNotFound, "NOT_FOUND"},
		{"anonymous", 0, map[string]any{"content": "hello"}, http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(http.MethodPost, "/api/posts", tt.userID, tt.body)
			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectedCode != "" {
				assert.Equal(t, false, body["success"])
				assert.Equal(t, tt.expectedCode, body["code"])
				return
			}
			assert.Equal(t, true, body["success"])
			assert.Equal(t, "Post created successfully", body["message"])
			post := body["post"].(map[string]any)
			assert.Equal(t, tt.body["content"], post["content"])
			assert.Equal(t, "alice", post["user"].(map[string]any)["username"])
		})
	}
}

func TestCreatePost_ResolvesMedia(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	song := env.media("Blue Monday")

	id := env.createPost(alice, "listen", ptr(song))

	status, body := env.do(http.MethodGet, "/api/posts/"+strconv.Itoa(int(id)), 0, nil)
	require.Equal(t, http.StatusOK, status)
	post := body["post"].(map[string]any)
	assert.Equal(t, "Blue Monday", post["media"].(map[string]any)["name"])
}

func TestCreatePost_MalformedBody(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")

	req := newRawRequest(http.MethodPost, "/api/posts", "{not json", env.token(alice))
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetPosts_NewestFirstWithLikedFlag(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	bob := env.user("bob")

	first := env.createPost(alice, "first", nil)
	second := env.createPost(bob, "second", nil)

	status, _ := env.do(http.MethodPost, "/api/posts/"+strconv.Itoa(int(first))+"/like", bob, nil)
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(http.MethodGet, "/api/posts", bob, nil)
	require.Equal(t, http.StatusOK, status)
	posts := body["posts"].([]any)
	require.Len(t, posts, 2)
	assert.Equal(t, float64(second), posts[0].(map[string]any)["id"])
	assert.Equal(t, float64(first), posts[1].(map[string]any)["id"])
	assert.Equal(t, true, posts[1].(map[string]any)["liked"])
	assert.Equal(t, float64(1), posts[1].(map[string]any)["likes_count"])

	// anonymous callers never see a liked flag
	_, body = env.do(http.MethodGet, "/api/posts", 0, nil)
	assert.Equal(t, false, body["posts"].([]any)[1].(map[string]any)["liked"])
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	id := env.createPost(alice, "hello", nil)

	status, body := env.do(http.MethodGet, "/api/posts/"+strconv.Itoa(int(id)), 0, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", body["post"].(map[string]any)["content"])

	status, body = env.do(http.MethodGet, "/api/posts/999", 0, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, body = env.do(http.MethodGet, "/api/posts/abc", 0, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid ID", body["message"])
}

func TestUpdatePost_OwnerOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	bob := env.user("bob")
	id := env.createPost(alice, "draft", nil)
	path := "/api/posts/" + strconv.Itoa(int(id))

	status, body := env.do(http.MethodPut, path, bob, map[string]any{"content": "hijacked"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, body = env.do(http.MethodPut, path, alice, map[string]any{"content": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, body = env.do(http.MethodPut, path, alice, map[string]any{"content": "final"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "final", body["post"].(map[string]any)["content"])

	_, body = env.do(http.MethodGet, path, 0, nil)
	assert.Equal(t, "final", body["post"].(map[string]any)["content"])
}

func TestDeletePost_CascadesAndOwnerOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	bob := env.user("bob")
	id := env.createPost(alice, "short lived", nil)
	path := "/api/posts/" + strconv.Itoa(int(id))

	status, _ := env.do(http.MethodPost, path+"/comments", bob, map[string]any{"content": "nice"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = env.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := env.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "short lived", body["post"].(map[string]any)["content"])

	status, _ = env.do(http.MethodGet, path, 0, nil)
	assert.Equal(t, http.StatusNotFound, status)

	_, body = env.do(http.MethodGet, "/api/comments", 0, nil)
	assert.Empty(t, body["comments"])
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	id := env.createPost(alice, "like me", nil)
	path := "/api/posts/" + strconv.Itoa(int(id)) + "/like"

	status, body := env.do(http.MethodPost, path, alice, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["liked"])
	assert.Equal(t, float64(1), data["likes_count"])

	_, body = env.do(http.MethodPost, path, alice, nil)
	data = body["data"].(map[string]any)
	assert.Equal(t, false, data["liked"])
	assert.Equal(t, float64(0), data["likes_count"])

	status, _ = env.do(http.MethodPost, "/api/posts/999/like", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(http.MethodPost, path, 0, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSearchPosts(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user("alice")
	song := env.media("Jazz Standards")

	viaContent := env.createPost(alice, "late night jazz", nil)
	viaMedia := env.createPost(alice, "on repeat", ptr(song))
	env.createPost(alice, "unrelated", nil)

	status, body := env.do(http.MethodGet, "/api/posts/search?q=JAZZ", 0, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, float64(viaContent), data[0].(map[string]any)["id"])
	assert.Equal(t, float64(viaMedia), data[1].(map[string]any)["id"])

	status, body = env.do(http.MethodGet, "/api/posts/search?q=%20%20", 0, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	status, body = env.do(http.MethodGet, "/api/posts/search?q=%25", 0, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"])
}
