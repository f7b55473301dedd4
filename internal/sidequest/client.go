package sidequest

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

	"github.com/google/uuid"
)

// Gateway is the backend surface the sync layer depends on. It is a thin
// transport: no retries, no caching, typed errors only.
type Gateway interface {
	GetBoard(ctx context.Context) (Board, error)
	RefreshBoard(ctx context.Context) (Board, error)
	NeedsRefresh(ctx context.Context) (bool, error)
	TransitionQuest(ctx context.Context, id string, status Status, feedback *Feedback) (Quest, error)
	GetProfile(ctx context.Context) (Profile, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error)
	ResetProfile(ctx context.Context) (Profile, error)
	CompleteOnboarding(ctx context.Context) (OnboardingResult, error)
	History(ctx context.Context, query HistoryQuery) (HistoryPage, error)
	HistoryStats(ctx context.Context) (HistoryStats, error)
}

// TokenSource supplies the bearer credential for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Ensure Client implements Gateway at compile time.
var _ Gateway = (*Client)(nil)

// Client talks to the SideQuest HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    TokenSource
	userAgent string
}

const (
	defaultAPIURL    = "http://127.0.0.1:5002/api"
	defaultUserAgent = "sidequest/0.1"
	requestTimeout   = 30 * time.Second
	maxErrorBody     = 200
)

const (
	pathBoard        = "/sidequest/quests/board"
	pathBoardRefresh = "/sidequest/quests/refresh"
	pathNeedsRefresh = "/sidequest/quests/needs-refresh"
	pathQuests       = "/sidequest/quests"
	pathHistory      = "/sidequest/quests/history"
	pathHistoryStats = "/sidequest/history/stats"
	pathProfile      = "/sidequest/me"
	pathProfileReset = "/sidequest/me/reset"
	pathOnboarding   = "/sidequest/onboarding/complete"
	pathHealth       = "/sidequest/health"
	pathSignIn       = "/sidequest/auth/anonymous/signin"
)

// Option customises a Client.
type Option func(*Client)

// WithTokenSource sets the credential source used for authenticated calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// NewClient builds a Client for the API rooted at apiURL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetBoard retrieves the current board; the backend refreshes or tops it up first when needed.
func (c *Client) GetBoard(ctx context.Context) (Board, error) {
	var board Board
	if err := c.do(ctx, request{method: http.MethodPost, path: pathBoard, auth: true}, &board); err != nil {
		return Board{}, err
	}
	return board, nil
}

// RefreshBoard forces the backend to regenerate the board.
func (c *Client) RefreshBoard(ctx context.Context) (Board, error) {
	var board Board
	if err := c.do(ctx, request{method: http.MethodPost, path: pathBoardRefresh, auth: true}, &board); err != nil {
		return Board{}, err
	}
	return board, nil
}

// NeedsRefresh reports whether the backend considers the board stale.
func (c *Client) NeedsRefresh(ctx context.Context) (bool, error) {
	var payload NeedsRefreshResponse
	if err := c.do(ctx, request{method: http.MethodGet, path: pathNeedsRefresh, auth: true}, &payload); err != nil {
		return false, err
	}
	return payload.NeedsRefresh, nil
}

// TransitionQuest asks the backend to move a quest to status and returns its canonical record.
func (c *Client) TransitionQuest(ctx context.Context, id string, status Status, feedback *Feedback) (Quest, error) {
	if strings.TrimSpace(id) == "" {
		return Quest{}, &ValidationError{Field: "id", Reason: "quest id required"}
	}
	req := request{
		method:  http.MethodPut,
		path:    pathQuests + "/" + url.PathEscape(id) + "/status",
		body:    TransitionRequest{Status: status, Feedback: feedback},
		auth:    true,
		questID: id,
	}
	var quest Quest
	if err := c.do(ctx, req, &quest); err != nil {
		return Quest{}, err
	}
	return quest, nil
}

// GetProfile retrieves the canonical profile.
func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, request{method: http.MethodGet, path: pathProfile, auth: true}, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// UpdateProfile applies a partial update and returns the canonical profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	var profile Profile
	req := request{method: http.MethodPut, path: pathProfile, body: update, auth: true}
	if err := c.do(ctx, req, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// ResetProfile restores server defaults.
func (c *Client) ResetProfile(ctx context.Context) (Profile, error) {
	var profile Profile
	req := request{method: http.MethodPost, path: pathProfileReset, body: struct{}{}, auth: true}
	if err := c.do(ctx, req, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// CompleteOnboarding marks onboarding as done for the current user.
func (c *Client) CompleteOnboarding(ctx context.Context) (OnboardingResult, error) {
	var result OnboardingResult
	req := request{method: http.MethodPost, path: pathOnboarding, body: struct{}{}, auth: true}
	if err := c.do(ctx, req, &result); err != nil {
		return OnboardingResult{}, err
	}
	return result, nil
}

// History retrieves a page of past quests.
func (c *Client) History(ctx context.Context, query HistoryQuery) (HistoryPage, error) {
	values := url.Values{}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		values.Set("offset", strconv.Itoa(query.Offset))
	}
	if query.Status != "" {
		values.Set("status", string(query.Status))
	}
	if query.Category != "" {
		values.Set("category", string(query.Category))
	}
	var page HistoryPage
	req := request{method: http.MethodGet, path: pathHistory, query: values, auth: true}
	if err := c.do(ctx, req, &page); err != nil {
		return HistoryPage{}, err
	}
	return page, nil
}

// HistoryStats retrieves streak and success-rate statistics.
func (c *Client) HistoryStats(ctx context.Context) (HistoryStats, error) {
	var stats HistoryStats
	if err := c.do(ctx, request{method: http.MethodGet, path: pathHistoryStats, auth: true}, &stats); err != nil {
		return HistoryStats{}, err
	}
	return stats, nil
}

// Health pings the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, path: pathHealth}, nil)
}

// SignInAnonymous exchanges a device id for a session token.
func (c *Client) SignInAnonymous(ctx context.Context, deviceID string) (SignInResponse, error) {
	if strings.TrimSpace(deviceID) == "" {
		return SignInResponse{}, &ValidationError{Field: "device_id", Reason: "device id required"}
	}
	var resp SignInResponse
	req := request{
		method: http.MethodPost,
		path:   pathSignIn,
		body:   map[string]string{"deviceId": deviceID},
	}
	if err := c.do(ctx, req, &resp); err != nil {
		return SignInResponse{}, err
	}
	if resp.Token == "" {
		return SignInResponse{}, &AuthError{Reason: "sign-in returned no token"}
	}
	return resp, nil
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	auth    bool
	questID string
}

func (c *Client) do(ctx context.Context, r request, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	op := r.method + " " + r.path
	rel := &url.URL{Path: strings.TrimSuffix(c.baseURL.Path, "/") + r.path}
	if len(r.query) > 0 {
		rel.RawQuery = r.query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.auth {
		if err := c.authorize(ctx, req); err != nil {
			return err
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return statusError(op, r.questID, resp.StatusCode, raw)
	}
	if dest == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := decodeBody(raw, dest); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return &AuthError{Reason: "not authenticated", Err: ErrNoSession}
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return &AuthError{Reason: "not authenticated", Err: err}
		}
		return &AuthError{Reason: "token unavailable", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// decodeBody decodes either a bare payload or one wrapped in {"data": ...}.
func decodeBody(raw []byte, dest any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Success != nil && len(env.Data) > 0 {
		raw = env.Data
	}
	return json.Unmarshal(raw, dest)
}

func statusError(op, questID string, status int, raw []byte) error {
	msg := errorMessage(raw)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status, Reason: msg}
	case status == http.StatusNotFound && questID != "":
		return &NotFoundError{ID: questID}
	case status == http.StatusConflict:
		return &ConflictError{ID: questID, Reason: msg}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = fmt.Sprintf("api returned status %d", status)
		}
		return &ValidationError{Reason: msg}
	}
	terr := &TransportError{Op: op, Status: status}
	if msg != "" {
		terr.Err = errors.New(msg)
	}
	return terr
}

func errorMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		return env.Error.Message
	}
	var flat struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat.Message
	}
	// Plain-text bodies from proxies and http.Error.
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
