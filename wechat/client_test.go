package wechat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		AppID:     "wx1234567890",
		AppSecret: "secret",
		BaseURL:   srv.URL,
	})
	require.NoError(t, err)
	client.retryInterval = time.Millisecond
	return client, srv
}

func tokenHandler(t *testing.T, mux *http.ServeMux, calls *int) {
	t.Helper()
	mux.HandleFunc("/cgi-bin/token", func(w http.ResponseWriter, r *http.Request) {
		*calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "client_credential", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "wx1234567890", r.URL.Query().Get("appid"))
		assert.Equal(t, "secret", r.URL.Query().Get("secret"))
		json.NewEncoder(w).Encode(map[string]any{"access_token": "TOKEN", "expires_in": 7200})
	})
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{AppID: "only-id"})
	assert.Error(t, err)

	_, err = NewClient(Config{AppSecret: "only-secret"})
	assert.Error(t, err)
}

func TestAccessTokenCached(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	client, _ := newTestClient(t, mux)

	ctx := context.Background()
	tok, err := client.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TOKEN", tok)

	tok, err = client.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TOKEN", tok)
	assert.Equal(t, 1, calls, "second call must use the cache")
}

func TestInvalidateTokenForcesRefetch(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	client, _ := newTestClient(t, mux)

	ctx := context.Background()
	_, err := client.AccessToken(ctx)
	require.NoError(t, err)

	client.InvalidateToken()
	_, err = client.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestAccessTokenAPIErrorNotRetried(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/token", func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"errcode": 40001, "errmsg": "invalid credential"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.AccessToken(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 40001, apiErr.Code)
	assert.Contains(t, apiErr.UserMessage(), "secret")
	assert.Equal(t, 1, calls, "platform errors are final")
}

func TestAccessTokenRetriesServerErrors(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/token", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "TOKEN2", "expires_in": 7200})
	})
	client, _ := newTestClient(t, mux)

	tok, err := client.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TOKEN2", tok)
	assert.Equal(t, 3, calls)
}

func TestAccessTokenGivesUpAfterThreeTries(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/token", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _ := newTestClient(t, mux)

	_, err := client.AccessToken(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 3, calls)
}

func TestUploadMedia(t *testing.T) {
	dir := t.TempDir()
	mediaFile := filepath.Join(dir, "cover.jpg")
	require.NoError(t, os.WriteFile(mediaFile, []byte("fake-jpeg-bytes"), 0o644))

	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	mux.HandleFunc("/cgi-bin/material/add_material", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "TOKEN", r.URL.Query().Get("access_token"))
		assert.Equal(t, "thumb", r.URL.Query().Get("type"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("media")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cover.jpg", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "fake-jpeg-bytes", string(data))

		json.NewEncoder(w).Encode(map[string]any{"media_id": "MEDIA1", "url": "https://mmbiz.example/1"})
	})
	client, _ := newTestClient(t, mux)

	res, err := client.UploadMedia(context.Background(), mediaFile, "thumb")
	require.NoError(t, err)
	assert.Equal(t, "MEDIA1", res.MediaID)
	assert.Equal(t, "https://mmbiz.example/1", res.URL)
}

func TestUploadMediaAPIError(t *testing.T) {
	dir := t.TempDir()
	mediaFile := filepath.Join(dir, "big.jpg")
	require.NoError(t, os.WriteFile(mediaFile, []byte("x"), 0o644))

	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	mux.HandleFunc("/cgi-bin/material/add_material", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"errcode": 45011, "errmsg": "api minute-quota reach limit"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.UploadMedia(context.Background(), mediaFile, "image")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 45011, apiErr.Code)
}

func TestUploadMediaMissingFile(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	client, _ := newTestClient(t, mux)

	_, err := client.UploadMedia(context.Background(), "/nonexistent/file.jpg", "image")
	assert.Error(t, err)
}

func TestUploadDraftWireShape(t *testing.T) {
	calls := 0
	var body string
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	mux.HandleFunc("/cgi-bin/draft/add", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		body = string(data)
		json.NewEncoder(w).Encode(map[string]any{"media_id": "DRAFT1"})
	})
	client, _ := newTestClient(t, mux)

	mediaID, err := client.UploadDraft(context.Background(), []Article{{
		Title:        "微信文章",
		Content:      "<p>正文 & more</p>",
		ThumbMediaID: "THUMB",
	}})
	require.NoError(t, err)
	assert.Equal(t, "DRAFT1", mediaID)

	// The create endpoint takes a list of articles.
	assert.Contains(t, body, `"articles":[`)
	// Literal UTF-8 and unescaped markup, not \uXXXX sequences.
	assert.Contains(t, body, "微信文章")
	assert.Contains(t, body, "<p>正文 & more</p>")
	assert.NotContains(t, body, `\u`)
}

func TestUploadDraftAPIError(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	mux.HandleFunc("/cgi-bin/draft/add", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"errcode": 42001, "errmsg": "access_token expired"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.UploadDraft(context.Background(), []Article{{Title: "T"}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 42001, apiErr.Code)
	assert.Contains(t, apiErr.UserMessage(), "expired")
}

func TestUpdateDraftWireShape(t *testing.T) {
	calls := 0
	var payload map[string]json.RawMessage
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	mux.HandleFunc("/cgi-bin/draft/update", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]any{"errcode": 0, "errmsg": "ok"})
	})
	client, _ := newTestClient(t, mux)

	err := client.UpdateDraft(context.Background(), "DRAFT1", 0, Article{Title: "新标题", Content: "<p>x</p>"})
	require.NoError(t, err)

	// Unlike create, update sends articles as a single object and index as a
	// string.
	assert.Equal(t, `"DRAFT1"`, string(payload["media_id"]))
	assert.Equal(t, `"0"`, string(payload["index"]))
	assert.True(t, strings.HasPrefix(string(payload["articles"]), "{"),
		"articles must be an object, got %s", payload["articles"])
}

func TestGetDraft(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	mux.HandleFunc("/cgi-bin/draft/get", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MediaID string `json:"media_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "DRAFT1", req.MediaID)
		json.NewEncoder(w).Encode(map[string]any{
			"news_item": []map[string]any{{"title": "取回标题", "content": "<p>body</p>"}},
		})
	})
	client, _ := newTestClient(t, mux)

	article, err := client.GetDraft(context.Background(), "DRAFT1")
	require.NoError(t, err)
	assert.Equal(t, "取回标题", article.Title)
	assert.Equal(t, "<p>body</p>", article.Content)
}

func TestGetDraftEmpty(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	tokenHandler(t, mux, &calls)
	mux.HandleFunc("/cgi-bin/draft/get", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"news_item": []any{}})
	})
	client, _ := newTestClient(t, mux)

	article, err := client.GetDraft(context.Background(), "EMPTY")
	require.NoError(t, err)
	assert.Equal(t, Article{}, article)
}
