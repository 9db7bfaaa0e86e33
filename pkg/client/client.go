// Package client is a typed client for the feedback portal API. It carries a bearer
// token obtained from Login or Register and surfaces server errors as *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// APIError is a non-2xx response. Message is the server's {"error"} text.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Feedback struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	IsAnonymous bool      `json:"isAnonymous"`
	CreatedBy   *string   `json:"createdBy"`
	AssignedTo  *string   `json:"assignedTo"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewFeedback struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	Category    string `json:"category,omitempty"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type FeedbackPage struct {
	Page    int        `json:"page"`
	Limit   int        `json:"limit"`
	Total   int        `json:"total"`
	Results []Feedback `json:"results"`
}

// ListParams are the listing filters; zero values are omitted.
type ListParams struct {
	Page     int
	Limit    int
	Status   string
	Category string
	Q        string
	Sort     string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	for key, val := range map[string]string{"status": p.Status, "category": p.Category, "q": p.Q, "sort": p.Sort} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

type CommentAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Comment struct {
	ID         string        `json:"id"`
	FeedbackID string        `json:"feedbackId"`
	Body       string        `json:"body"`
	Author     CommentAuthor `json:"author"`
	CreatedAt  time.Time     `json:"createdAt"`
}

type Thread struct {
	FeedbackID string    `json:"feedbackId"`
	State      string    `json:"state"`
	Results    []Comment `json:"results"`
	Total      int       `json:"total"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client for baseURL, e.g. http://localhost:5000/api/v1.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) SetToken(token string) { c.token = token }
func (c *Client) Token() string        { return c.token }

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var out AuthResult
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) CreateFeedback(ctx context.Context, in NewFeedback) (*Feedback, error) {
	var out struct {
		Feedback Feedback `json:"feedback"`
	}
	if err := c.do(ctx, http.MethodPost, "/feedback", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Feedback, nil
}

func (c *Client) ListFeedback(ctx context.Context, p ListParams) (*FeedbackPage, error) {
	var out FeedbackPage
	if err := c.do(ctx, http.MethodGet, "/feedback", p.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id, status string) (*Feedback, error) {
	var out struct {
		Feedback Feedback `json:"feedback"`
	}
	in := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/feedback/"+url.PathEscape(id)+"/status", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Feedback, nil
}

func (c *Client) ListComments(ctx context.Context, feedbackID string) (*Thread, error) {
	var out Thread
	if err := c.do(ctx, http.MethodGet, "/feedback/"+url.PathEscape(feedbackID)+"/comments", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddComment(ctx context.Context, feedbackID, body string) (*Comment, error) {
	var out struct {
		Comment Comment `json:"comment"`
	}
	in := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPost, "/feedback/"+url.PathEscape(feedbackID)+"/comments", nil, in, &out); err != nil {
		return nil, err
	}
	return &out.Comment, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
