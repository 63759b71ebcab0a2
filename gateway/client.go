package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-feed-cache/feed"
	"github.com/goliatone/go-feed-cache/internal/httpapi"
	"github.com/goliatone/go-feed-cache/mutation"
	"github.com/goliatone/go-feed-cache/session"
)

// Client talks to the feed API over HTTP. The viewer in the request
// context is forwarded in the identity headers.
type Client struct {
	baseURL  string
	http     *http.Client
	pageSize int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithPageSize sets the page size requested from the feed endpoint.
func WithPageSize(n int) ClientOption {
	return func(cl *Client) {
		cl.pageSize = n
	}
}

// NewClient returns a gateway for the API at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ mutation.Gateway = (*Client)(nil)
	_ Querier          = (*Client)(nil)
)

// Send posts m and decodes the typed output. Network failures are
// reported as transport errors; API failures keep the category the server
// sent.
func (c *Client) Send(ctx context.Context, m mutation.Mutation) mutation.Result {
	out, ok := mutation.NewOutput(m.Type)
	if !ok {
		return mutation.Failed(mutation.NewValidationError(fmt.Errorf("unknown mutation type %q", m.Type), m.Type))
	}

	body, err := sonic.Marshal(m.Payload)
	if err != nil {
		return mutation.Failed(mutation.NewValidationError(err, m.Type))
	}

	if err := c.do(ctx, http.MethodPost, httpapi.MutationPath+url.PathEscape(string(m.Type)), body, out); err != nil {
		return mutation.Failed(err)
	}
	return mutation.Succeeded(deref(out))
}

func (c *Client) Profile(ctx context.Context, id string) (feed.Profile, error) {
	var profile feed.Profile
	err := c.do(ctx, http.MethodGet, httpapi.ProfilePath+url.PathEscape(id), nil, &profile)
	return profile, err
}

func (c *Client) FeedPage(ctx context.Context, filter feed.Filter, cursor *feed.Cursor) (feed.Page, error) {
	query := url.Values{}
	if filter.UserID != "" {
		query.Set("userId", filter.UserID)
	}
	if filter.OnlyFollowing {
		query.Set("onlyFollowing", "true")
	}
	if cursor != nil {
		query.Set("cursorId", cursor.ID)
		query.Set("cursorCreatedAt", cursor.CreatedAt.Format(time.RFC3339Nano))
	}
	if c.pageSize > 0 {
		query.Set("limit", strconv.Itoa(c.pageSize))
	}

	path := httpapi.FeedPath
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page feed.Page
	err := c.do(ctx, http.MethodGet, path, nil, &page)
	return page, err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return mutation.NewTransportError(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if id, ok := session.FromContext(ctx); ok {
		req.Header.Set(httpapi.UserHeader, id.UserID)
		if id.Name != "" {
			req.Header.Set(httpapi.UserNameHeader, id.Name)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return mutation.NewTransportError(err, "gateway unreachable")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return mutation.NewTransportError(err, "read response")
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, data)
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return mutation.NewTransportError(err, "decode response")
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body httpapi.ErrorBody
	if err := sonic.Unmarshal(data, &body); err == nil && body.Error.Category != "" {
		return body.Error.ToError()
	}

	category := goerrors.HTTPStatusToCategory(status)
	if status >= http.StatusInternalServerError {
		category = goerrors.CategoryExternal
	}
	return goerrors.New(fmt.Sprintf("gateway answered %d", status), category).
		WithCode(status).
		WithTextCode(goerrors.HTTPStatusToTextCode(status))
}

func deref(v any) any {
	switch out := v.(type) {
	case *mutation.CreateTweetOutput:
		return *out
	case *mutation.ToggleFollowOutput:
		return *out
	case *mutation.ToggleLikeOutput:
		return *out
	}
	return v
}
