// Package wechat is the HTTP client for the WeChat Official Account API:
// credential exchange, permanent media upload, and the draft endpoints.
package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultBaseURL is the production API origin.
	DefaultBaseURL = "https://api.weixin.qq.com"
	// DefaultTimeout bounds every request issued by a Client.
	DefaultTimeout = 30 * time.Second

	tokenPath       = "/cgi-bin/token"
	uploadMediaPath = "/cgi-bin/material/add_material"
	addDraftPath    = "/cgi-bin/draft/add"
	updateDraftPath = "/cgi-bin/draft/update"
	getDraftPath    = "/cgi-bin/draft/get"
)

// Config holds the Official Account credentials and endpoint settings.
type Config struct {
	AppID     string
	AppSecret string
	BaseURL   string
	Timeout   time.Duration
}

// Article is one draft article as the platform understands it.
type Article struct {
	Title              string `json:"title"`
	Author             string `json:"author"`
	Digest             string `json:"digest"`
	Content            string `json:"content"`
	ContentSourceURL   string `json:"content_source_url"`
	ThumbMediaID       string `json:"thumb_media_id"`
	NeedOpenComment    int    `json:"need_open_comment"`
	OnlyFansCanComment int    `json:"only_fans_can_comment"`
	URL                string `json:"url,omitempty"`
}

// MediaResult is what a material upload returns. URL is only set for the
// image media type.
type MediaResult struct {
	MediaID string
	URL     string
}

// Client talks to the platform over a shared http.Client. The access token
// is cached for the client's lifetime and never refreshed on its own: a
// client that outlives the token keeps presenting it until a request fails.
// Call InvalidateToken, or build a new client, to force a fresh exchange.
type Client struct {
	cfg           Config
	httpClient    *http.Client
	accessToken   string
	retryInterval time.Duration
}

// NewClient validates the config and builds a client. The token is fetched
// lazily on first use.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("wechat config must include app id and app secret")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	slog.Info("wechat client ready", "app_id", truncateID(cfg.AppID), "base_url", cfg.BaseURL)
	return &Client{
		cfg:           cfg,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		retryInterval: time.Second,
	}, nil
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "***"
}

// InvalidateToken drops the cached access token so the next call performs a
// fresh credential exchange. There is no automatic refresh on expiry.
func (c *Client) InvalidateToken() {
	c.accessToken = ""
}

// AccessToken returns the cached token or performs the credential exchange.
// The exchange is retried up to three times with exponential backoff on
// transport failures and retryable statuses (429/5xx); a platform error
// response is final.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if c.accessToken != "" {
		slog.Debug("using cached access_token")
		return c.accessToken, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInterval

	token, err := backoff.Retry(ctx, func() (string, error) {
		t, err := c.fetchAccessToken(ctx)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		return t, nil
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(3))
	if err != nil {
		return "", err
	}

	c.accessToken = token
	slog.Info("access_token acquired")
	return token, nil
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (c *Client) fetchAccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+tokenPath, nil)
	if err != nil {
		return "", err
	}
	q := req.URL.Query()
	q.Set("grant_type", "client_credential")
	q.Set("appid", c.cfg.AppID)
	q.Set("secret", c.cfg.AppSecret)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "token exchange", Err: err}
	}
	defer resp.Body.Close()

	if retryableStatus(resp.StatusCode) {
		return "", &NetworkError{Op: "token exchange", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var data struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		ErrCode     int    `json:"errcode"`
		ErrMsg      string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", &NetworkError{Op: "token exchange", Err: err}
	}
	if data.AccessToken == "" {
		return "", &APIError{Code: data.ErrCode, Message: "failed to get access_token: " + data.ErrMsg}
	}
	return data.AccessToken, nil
}

// UploadMedia uploads a local file to the permanent media store. mediaType
// is "image" or "thumb"; the platform returns a CDN URL for images.
func (c *Client) UploadMedia(ctx context.Context, filePath, mediaType string) (MediaResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return MediaResult{}, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return MediaResult{}, fmt.Errorf("open media file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("media", filepath.Base(filePath))
	if err != nil {
		return MediaResult{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return MediaResult{}, err
	}
	if err := writer.Close(); err != nil {
		return MediaResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+uploadMediaPath, &body)
	if err != nil {
		return MediaResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	q := req.URL.Query()
	q.Set("access_token", token)
	q.Set("type", mediaType)
	req.URL.RawQuery = q.Encode()

	slog.Info("uploading media", "file", filepath.Base(filePath), "type", mediaType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return MediaResult{}, &NetworkError{Op: "media upload", Err: err}
	}
	defer resp.Body.Close()

	var data struct {
		MediaID string `json:"media_id"`
		URL     string `json:"url"`
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return MediaResult{}, &NetworkError{Op: "media upload", Err: err}
	}
	if data.MediaID == "" {
		return MediaResult{}, &APIError{Code: data.ErrCode, Message: "failed to upload media: " + data.ErrMsg}
	}

	slog.Info("media uploaded", "media_id", data.MediaID)
	return MediaResult{MediaID: data.MediaID, URL: data.URL}, nil
}

// UploadDraft creates a draft from the given articles and returns its media
// id. Not retried: the platform does not guarantee idempotency, and a blind
// retry could create duplicate drafts.
func (c *Client) UploadDraft(ctx context.Context, articles []Article) (string, error) {
	payload := struct {
		Articles []Article `json:"articles"`
	}{Articles: articles}

	var out struct {
		MediaID string `json:"media_id"`
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := c.postJSON(ctx, addDraftPath, "draft upload", payload, &out); err != nil {
		return "", err
	}
	if out.ErrCode != 0 {
		return "", &APIError{Code: out.ErrCode, Message: "failed to upload draft: " + out.ErrMsg}
	}

	slog.Info("draft uploaded", "media_id", out.MediaID)
	return out.MediaID, nil
}

// GetDraft fetches a draft. The platform wraps it in a one-element news_item
// list; an empty list yields a zero Article, not an error.
func (c *Client) GetDraft(ctx context.Context, mediaID string) (Article, error) {
	payload := struct {
		MediaID string `json:"media_id"`
	}{MediaID: mediaID}

	var out struct {
		NewsItem []Article `json:"news_item"`
		ErrCode  int       `json:"errcode"`
		ErrMsg   string    `json:"errmsg"`
	}
	if err := c.postJSON(ctx, getDraftPath, "draft fetch", payload, &out); err != nil {
		return Article{}, err
	}
	if out.ErrCode != 0 {
		return Article{}, &APIError{Code: out.ErrCode, Message: "failed to get draft: " + out.ErrMsg}
	}
	if len(out.NewsItem) == 0 {
		slog.Warn("draft has no articles", "media_id", mediaID)
		return Article{}, nil
	}
	return out.NewsItem[0], nil
}

// UpdateDraft overwrites one article of an existing draft. Unlike the create
// endpoint, update expects articles as a single object and index as a
// string-encoded integer; that asymmetry is the platform's, not ours.
func (c *Client) UpdateDraft(ctx context.Context, mediaID string, index int, article Article) error {
	payload := struct {
		MediaID  string  `json:"media_id"`
		Index    string  `json:"index"`
		Articles Article `json:"articles"`
	}{MediaID: mediaID, Index: strconv.Itoa(index), Articles: article}

	var out struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := c.postJSON(ctx, updateDraftPath, "draft update", payload, &out); err != nil {
		return err
	}
	if out.ErrCode != 0 {
		return &APIError{Code: out.ErrCode, Message: "failed to update draft: " + out.ErrMsg}
	}

	slog.Info("draft updated", "media_id", mediaID, "index", index)
	return nil
}

// postJSON sends a JSON payload with HTML escaping off: the platform
// requires literal UTF-8 text in titles and body, not escape sequences.
// Draft POSTs are never retried.
func (c *Client) postJSON(ctx context.Context, path, op string, payload, out any) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode %s payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+path+"?"+url.Values{"access_token": {token}}.Encode(), &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	return nil
}
