// Package api is the HTTP client for the Smart Doctor Assistant backend.
//
// The backend is a REST service; bodies are JSON and failures arrive as
// {"detail": "..."}. The client never inspects the tokens it carries:
// a token is valid exactly as long as the backend keeps accepting it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultBaseURL matches the backend's development address.
const DefaultBaseURL = "http://localhost:8000"

// Client talks to one backend instance. The zero value is not usable;
// construct with New.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for the backend at baseURL. A zero timeout means
// requests wait as long as the backend takes.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL + path
}

// do stamps the request with an ID and runs it.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-Request-ID", ulid.Make().String())
	return c.HTTP.Do(req)
}

// Register creates an account. The backend answers with the created user,
// which the caller has no use for; only errors matter here.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) error {
	b, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/register/"), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	return nil
}

// Login exchanges credentials for a bearer token. The backend speaks the
// OAuth2 password flow, so the email travels as the "username" field of a
// form-urlencoded body.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/token/"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeError(resp)
	}

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.AccessToken == "" {
		return "", errors.New("backend: empty access token")
	}
	return decoded.AccessToken, nil
}

// Me returns the profile the backend associates with token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/users/me/"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// History returns the stored conversation for token's user, oldest first,
// reduced to the role/content pairs the transcript shows.
func (c *Client) History(ctx context.Context, token string) ([]Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/history/"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var entries []historyEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}
	msgs := make([]Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, Message{Role: e.Role, Content: e.Content})
	}
	return msgs, nil
}

// Chat sends userMessage along with the transcript so far and returns the
// backend's authoritative replacement transcript.
func (c *Client) Chat(ctx context.Context, token, userMessage string, history []Message) ([]Message, error) {
	if history == nil {
		history = []Message{}
	}
	b, err := json.Marshal(chatRequest{UserMessage: userMessage, ChatHistory: history})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat/"), bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded.UpdatedChatHistory, nil
}
