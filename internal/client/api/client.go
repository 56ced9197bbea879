// Package api is the HTTP client the fileshare CLI uses to talk to the CloudShareIt API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrUnauthorized = errors.New("unauthorized")

type (
	Principal struct {
		UUID        string    `json:"uuid"`
		Email       string    `json:"email"`
		Name        string    `json:"name"`
		DisplayName string    `json:"display_name"`
		CreatedAt   time.Time `json:"created_at"`
	}
	Session struct {
		Token     string    `json:"access_token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      Principal `json:"user"`
	}
	File struct {
		ID         string    `json:"id"`
		Name       string    `json:"name"`
		Size       int64     `json:"size"`
		SizeHuman  string    `json:"size_human"`
		MimeType   string    `json:"mime_type"`
		Kind       string    `json:"kind"`
		ShareURL   string    `json:"share_url"`
		AccessURL  string    `json:"access_url"`
		UploadedAt time.Time `json:"uploaded_at"`
	}
)

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is reports 401 responses as ErrUnauthorized.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", "", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var s Session
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/login", "", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/v1/auth/logout", token, nil, nil)
}

func (c *Client) Me(ctx context.Context, token string) (*Principal, error) {
	var p Principal
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upload streams body as the "file" part of a multipart request.
func (c *Client) Upload(ctx context.Context, token, name string, body io.Reader) (*File, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, body)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/files", token, pr)
	if err != nil {
		_ = pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var f File
	if err = c.do(req, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) List(ctx context.Context, token, query string) ([]File, error) {
	p := "/api/v1/files"
	if query != "" {
		p += "?" + url.Values{"q": {query}}.Encode()
	}

	var resp struct {
		Data []File `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, p, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Get(ctx context.Context, token, id string) (*File, error) {
	var f File
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/files/"+url.PathEscape(id), token, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) Delete(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/files/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) newRequest(ctx context.Context, method, p, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+p, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, p, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, p, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return &Error{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
