package api

import (
	"bytes"
	"context"
	"encoding/json"
	eum "eum/errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/ratelimit"
)

// Client talks to the EUM REST backend. A Client is safe for concurrent use.
// The bearer token of a call comes from its context (ContextWithToken) and
// falls back to the client's own token.
type Client struct {
	base    string
	http    *http.Client
	limiter ratelimit.Limiter
	token   atomic.Pointer[string]
}

var client *Client

func InitAPI() {
	timeout := time.Duration(viper.GetInt64("api.timeout")) * time.Second
	client = NewClient(viper.GetString("api.base_url"), timeout, viper.GetInt("api.rps"))
}

func GetClient() *Client {
	return client
}

func NewClient(baseURL string, timeout time.Duration, rps int) *Client {
	limiter := ratelimit.NewUnlimited()
	if rps > 0 {
		limiter = ratelimit.New(rps)
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// WithToken returns a copy sharing the transport and limiter whose calls carry
// token unless their context says otherwise.
func (c *Client) WithToken(token string) *Client {
	cp := &Client{base: c.base, http: c.http, limiter: c.limiter}
	cp.token.Store(&token)
	return cp
}

func (c *Client) Token() string {
	if t := c.token.Load(); t != nil {
		return *t
	}
	return ""
}

// FileUpload is one attachment sent along with a post.
type FileUpload struct {
	Name   string
	Reader io.Reader
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	c.limiter.Take()

	u := c.base + path
	if len(query) != 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "api:do: NewRequest")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token, ok := TokenFromContext(ctx)
	if !ok {
		token = c.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(eum.ErrTimeout, err.Error())
		}
		return nil, errors.Wrapf(err, "api:do: %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "api:do: read body of %s %s", method, path)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Wrapf(eum.ErrUnauthorized, "api:do: %s %s: status %d", method, path, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(eum.ErrNotFound, "api:do: %s %s: status %d", method, path, resp.StatusCode)
	default:
		return nil, errors.Wrapf(eum.ErrBackend, "api:do: %s %s: status %d: %s", method, path, resp.StatusCode, snippet(data))
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, "")
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if payload == nil {
		return c.do(ctx, method, path, nil, nil, "")
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "api:sendJSON: Marshal")
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(buf), "application/json")
}

// sendForm sends payload as a JSON part named "post" next to the attachments,
// the layout the community endpoints expect for posts with files.
func (c *Client) sendForm(ctx context.Context, method, path string, payload any, files []FileUpload) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="post"; filename="blob"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, errors.Wrap(err, "api:sendForm: CreatePart")
	}
	if err := json.NewEncoder(part).Encode(payload); err != nil {
		return nil, errors.Wrap(err, "api:sendForm: Encode")
	}

	for _, f := range files {
		fw, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, errors.Wrap(err, "api:sendForm: CreateFormFile")
		}
		if _, err := io.Copy(fw, f.Reader); err != nil {
			return nil, errors.Wrapf(err, "api:sendForm: copy %s", f.Name)
		}
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "api:sendForm: Close")
	}

	return c.do(ctx, method, path, nil, &buf, w.FormDataContentType())
}

func snippet(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
