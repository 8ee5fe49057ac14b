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
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	uploadTimeout  = 120 * time.Second
)

// TokenProvider supplies the bearer token for outgoing requests. A nil
// provider or an empty token means the request goes out unauthenticated.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// APIError is a non-2xx response reduced to a status code and a
// human-readable message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusUnauthorized
}

// errorBody is the subset of an error response body we extract a message
// from. The backend uses "detail"; some endpoints use "message".
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Client makes REST calls to the Academic Repository backend.
type Client struct {
	baseURL      string
	tokens       TokenProvider
	client       *http.Client
	uploadClient *http.Client
}

// NewClient creates a client targeting the given base URL
// (e.g. "http://127.0.0.1:8000/api/v1").
func NewClient(baseURL string, tokens TokenProvider) *Client {
	return &Client{
		baseURL:      baseURL,
		tokens:       tokens,
		client:       &http.Client{Timeout: defaultTimeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
	}
}

// --- Auth ---

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenPair, error) {
	var out TokenPair
	if err := c.post(ctx, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns its token pair.
func (c *Client) Register(ctx context.Context, reg Registration) (*TokenPair, error) {
	var out TokenPair
	if err := c.post(ctx, "/auth/register", reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token travels as the bearer credential on this one call.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)
	var out RefreshResponse
	if err := c.do(c.client, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the authenticated user.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out User
	if err := c.get(ctx, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Dashboard ---

// DashboardStats fetches /dashboard/stats and decodes the role-shaped
// counters into the common view model.
func (c *Client) DashboardStats(ctx context.Context, scope Scope) (*StatsView, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/dashboard/stats", scopeQuery(scope), &raw); err != nil {
		return nil, err
	}
	return decodeStats(scope.Role, raw)
}

// RecentDocuments fetches /dashboard/recent-documents.
func (c *Client) RecentDocuments(ctx context.Context, scope Scope) ([]RecentDocument, error) {
	var out []RecentDocument
	if err := c.get(ctx, "/dashboard/recent-documents", scopeQuery(scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecentActivity fetches /dashboard/recent-activity.
func (c *Client) RecentActivity(ctx context.Context, scope Scope) ([]ActivityItem, error) {
	var out []ActivityItem
	if err := c.get(ctx, "/dashboard/recent-activity", scopeQuery(scope), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeStats(role Role, raw json.RawMessage) (*StatsView, error) {
	switch role {
	case RoleStaff:
		var s StaffStats
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode staff stats: %w", err)
		}
		v := s.View()
		return &v, nil
	case RoleSupervisor:
		var s SupervisorStats
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode supervisor stats: %w", err)
		}
		v := s.View()
		return &v, nil
	case RoleAdmin:
		var s AdminStats
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode admin stats: %w", err)
		}
		v := s.View()
		return &v, nil
	default:
		var s StudentStats
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode student stats: %w", err)
		}
		v := s.View()
		return &v, nil
	}
}

func scopeQuery(scope Scope) url.Values {
	q := url.Values{}
	if scope.Role != "" {
		q.Set("role", string(scope.Role))
	}
	if scope.UserID != "" {
		q.Set("user_id", scope.UserID)
	}
	if scope.DepartmentID != "" {
		q.Set("department_id", scope.DepartmentID)
	}
	return q
}

// --- Documents ---

// ListDocuments fetches a filtered page of documents.
func (c *Client) ListDocuments(ctx context.Context, f DocumentFilter) (*DocumentPage, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Department != "" {
		q.Set("department", f.Department)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	var out DocumentPage
	if err := c.get(ctx, "/documents", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument fetches a single document by ID.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var out Document
	if err := c.get(ctx, "/documents/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument uploads a file with its metadata as multipart form data.
// Uploads get a longer timeout than other calls.
func (c *Client) UploadDocument(ctx context.Context, title, description, department, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", title)
	_ = mw.WriteField("description", description)
	_ = mw.WriteField("department", department)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := c.setAuth(ctx, req); err != nil {
		return nil, err
	}
	var out Document
	if err := c.do(c.uploadClient, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadDocument streams a document's file into w and returns the number
// of bytes written.
func (c *Client) DownloadDocument(ctx context.Context, id string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents/"+id+"/download", nil)
	if err != nil {
		return 0, err
	}
	if err := c.setAuth(ctx, req); err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, responseError(resp)
	}
	return io.Copy(w, resp.Body)
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.delete(ctx, "/documents/"+id)
}

// SubmitReview posts a review decision for a document.
func (c *Client) SubmitReview(ctx context.Context, sub ReviewSubmission) (*Review, error) {
	var out Review
	if err := c.post(ctx, "/reviews", sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Users / admin ---

// ListUsers fetches a filtered page of users.
func (c *Client) ListUsers(ctx context.Context, f UserFilter) (*UserPage, error) {
	q := url.Values{}
	if f.Role != "" {
		q.Set("role", string(f.Role))
	}
	if f.Department != "" {
		q.Set("department", f.Department)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	var out UserPage
	if err := c.get(ctx, "/users", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches a single user by ID.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var out User
	if err := c.get(ctx, "/users/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser creates a user (admin only).
func (c *Client) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	var out User
	if err := c.post(ctx, "/users", nu, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser applies a partial update to a user (admin only).
func (c *Client) UpdateUser(ctx context.Context, id string, up UserUpdate) (*User, error) {
	var out User
	if err := c.put(ctx, "/users/"+id, up, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes a user (admin only).
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.delete(ctx, "/users/"+id)
}

// UserOverview fetches the aggregate user counters.
func (c *Client) UserOverview(ctx context.Context) (*UserOverview, error) {
	var out UserOverview
	if err := c.get(ctx, "/users/stats/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Departments fetches the department list.
func (c *Client) Departments(ctx context.Context) ([]Department, error) {
	var out []Department
	if err := c.get(ctx, "/users/departments/list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Request plumbing ---

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if err := c.setAuth(ctx, req); err != nil {
		return err
	}
	return c.do(c.client, req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if err := c.setAuth(ctx, req); err != nil {
		return err
	}
	return c.do(c.client, req, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.setAuth(ctx, req); err != nil {
		return err
	}
	return c.do(c.client, req, out)
}

func (c *Client) do(hc *http.Client, req *http.Request, out interface{}) error {
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return responseError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setAuth(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// responseError reduces a non-2xx response to an APIError, preferring the
// body's message field, then detail, then a generic string.
func responseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var eb errorBody
	msg := ""
	if json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			msg = eb.Message
		} else if eb.Detail != "" {
			msg = eb.Detail
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
		if msg == "" {
			msg = "request failed"
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
