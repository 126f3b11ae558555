package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Checker answers whether an account is approved for CV operations.
type Checker interface {
	IsApproved(ctx context.Context, userID string) (bool, error)
}

// Client calls the user service's approval endpoint. Requests carry a
// service-level bearer token obtained via the client-credentials grant,
// not the end user's own token.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds an approval client against the user service.
func NewClient(ctx context.Context, baseURL, tokenURL, clientID, clientSecret string) *Client {
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	httpClient := cc.Client(ctx)
	httpClient.Timeout = 5 * time.Second

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// IsApproved asks the user service whether userID exists and is approved.
func (c *Client) IsApproved(ctx context.Context, userID string) (bool, error) {
	endpoint := c.baseURL + "/api/v1/user/isApproved?userId=" + url.QueryEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("approval check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("approval check: unexpected status %d", resp.StatusCode)
	}

	var approved bool
	if err := json.NewDecoder(resp.Body).Decode(&approved); err != nil {
		return false, fmt.Errorf("approval check: decode: %w", err)
	}
	return approved, nil
}

// StaticChecker approves a fixed set of users, or everyone when AllowAll is
// set. Used in dev mode and tests.
type StaticChecker struct {
	AllowAll bool
	Approved map[string]bool
}

// IsApproved implements Checker.
func (s *StaticChecker) IsApproved(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.AllowAll {
		return true, nil
	}
	return s.Approved[userID], nil
}

var (
	_ Checker = (*Client)(nil)
	_ Checker = (*StaticChecker)(nil)
)
