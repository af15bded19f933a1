// Package appwrite is the backend driver for a hosted Appwrite project,
// spoken to over its REST API.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"campusbite/backend"
)

type Collections struct {
	Users         string `mapstructure:"users"`
	Restaurants   string `mapstructure:"restaurants"`
	Foods         string `mapstructure:"foods"`
	Orders        string `mapstructure:"orders"`
	Deliveries    string `mapstructure:"deliveries"`
	Notifications string `mapstructure:"notifications"`
}

type Config struct {
	Endpoint    string // e.g. https://cloud.appwrite.io/v1
	ProjectID   string
	DatabaseID  string
	BucketID    string
	Collections Collections
	Timeout     time.Duration
}

// Client talks to one Appwrite project as one device: it keeps the session
// cookie and secret of the account signed in through it.
type Client struct {
	cfg  Config
	http *http.Client

	mu        sync.Mutex
	secret    string
	accountID string
}

func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.ProjectID == "" {
		return nil, errors.New("appwrite: endpoint and project id are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout, Jar: jar},
	}, nil
}

// Backend returns the backend surface served by c.
func (c *Client) Backend() *backend.Client {
	return &backend.Client{
		Auth:          &Auth{c: c},
		Users:         &Users{col: c.collection(c.cfg.Collections.Users)},
		Restaurants:   &Restaurants{col: c.collection(c.cfg.Collections.Restaurants)},
		Foods:         &Foods{col: c.collection(c.cfg.Collections.Foods)},
		Orders:        &Orders{col: c.collection(c.cfg.Collections.Orders)},
		Deliveries:    &Deliveries{col: c.collection(c.cfg.Collections.Deliveries)},
		Notifications: &Notifications{col: c.collection(c.cfg.Collections.Notifications)},
		Files:         &Files{c: c},
	}
}

func (c *Client) session() (secret, accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secret, c.accountID
}

func (c *Client) setSession(secret, accountID string) {
	c.mu.Lock()
	c.secret = secret
	c.accountID = accountID
	c.mu.Unlock()
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	return c.send(ctx, method, path, query, rd, "application/json", out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.cfg.Endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-Appwrite-Project", c.cfg.ProjectID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if secret, _ := c.session(); secret != "" {
		req.Header.Set("X-Appwrite-Session", secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%s %s: %w", method, path, backend.ErrTimeout)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w", method, path, err)
	}
	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	_ = json.Unmarshal(data, &body)
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	return &backend.Error{Code: status, Type: body.Type, Message: body.Message}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
