// Package api talks to the school-communications backend: one shared
// transport plus a client per resource. All requests carry the bearer
// token; all failures surface as *Error or an abort/network error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolcomm/client/internal/storage"
)

// TokenSource yields the current bearer token; the session store
// implements it.
type TokenSource interface {
	Token() string
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Tokens is consulted first; Fallback covers requests issued before
	// the session store is hydrated.
	Tokens   TokenSource
	Fallback storage.KV
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Tokens:     tokens,
	}
}

// Request performs one HTTP exchange. A *Form body is sent as multipart
// with the form's own boundary; any other non-nil body is JSON. Non-2xx
// responses are decoded into *Error. The caller owns the response body.
func (c *Client) Request(ctx context.Context, method, path string, body any, header http.Header) (*http.Response, error) {
	var reqBody io.Reader
	contentType := ""

	switch b := body.(type) {
	case nil:
	case *Form:
		reqBody = b.Reader()
		contentType = b.ContentType()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("api: encode body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if token := c.token(); token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	res, err := c.httpClient().Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s %s", ErrAborted, method, path)
		}
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		defer res.Body.Close()
		return nil, decodeError(res)
	}
	return res, nil
}

func (c *Client) token() string {
	if c.Tokens != nil {
		if token := c.Tokens.Token(); token != "" {
			return token
		}
	}
	if c.Fallback != nil {
		if token, err := c.Fallback.Get("token"); err == nil {
			return token
		}
	}
	return ""
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func decodeError(res *http.Response) error {
	apiErr := &Error{Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}

	body, _ := io.ReadAll(res.Body)
	var data ErrorData
	if err := json.Unmarshal(body, &data); err == nil {
		apiErr.Data = data
	} else {
		apiErr.Data.Raw = string(body)
	}
	if apiErr.Data.Message != "" {
		apiErr.Message = apiErr.Data.Message
	}
	return apiErr
}

// GetJSON issues a GET and decodes the 2xx body.
func GetJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	res, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return zero, err
	}
	defer res.Body.Close()
	return decodeJSON[T](res.Body)
}

// SendJSON issues a mutating request with an optional JSON payload and
// decodes the 2xx body. Empty bodies decode to the zero value.
func SendJSON[T any](ctx context.Context, c *Client, method, path string, payload any) (T, error) {
	var zero T
	res, err := c.Request(ctx, method, path, payload, nil)
	if err != nil {
		return zero, err
	}
	defer res.Body.Close()
	return decodeJSON[T](res.Body)
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	data, err := io.ReadAll(r)
	if err != nil {
		return out, fmt.Errorf("api: read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("api: decode body: %w", err)
	}
	return out, nil
}
