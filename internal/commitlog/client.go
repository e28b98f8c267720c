// internal/commitlog/client.go
package commitlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"commit-watcher/internal/model"
)

const (
	// DefaultBaseURL is the fixed host of the remote commit feed.
	DefaultBaseURL = "http://www.commitlogsfromlastnight.com/"

	// DefaultRepo is the repository identifier used when none is configured.
	DefaultRepo = "all"

	// DefaultBranch is the branch used by the default listing calls.
	DefaultBranch = "master"
)

// Client fetches commits from the remote commit feed.
//
// All fetch operations are fail-soft: transport failures, unparseable
// responses and empty result sets all degrade to an empty result. Callers
// cannot distinguish "network down" from "no commits found"; failures are
// reported on the logger only.
type Client struct {
	http    *http.Client
	logger  *slog.Logger
	baseURL string
	repo    string
	branch  string
}

// NewClient creates and configures a new Client instance. Empty baseURL,
// repo or branch fall back to the package defaults.
func NewClient(baseURL, repo, branch string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if repo == "" {
		repo = DefaultRepo
	}
	if branch == "" {
		branch = DefaultBranch
	}

	return &Client{
		http:    &http.Client{},
		logger:  logger,
		baseURL: baseURL,
		repo:    repo,
		branch:  branch,
	}
}

// GetCommit fetches a single commit by identifier. The second return value is
// false when the server reports no results or the request fails.
func (c *Client) GetCommit(ctx context.Context, id int) (*model.Commit, bool) {
	result, ok := c.fetch(ctx, fmt.Sprintf("%s%d?format=json", c.baseURL, id))
	if !ok || result.Total < 1 || len(result.Results) == 0 {
		return nil, false
	}
	return &result.Results[0], true
}

// GetCommits fetches one page of commits for the default branch.
func (c *Client) GetCommits(ctx context.Context, page int) []model.Commit {
	return c.GetBranchCommits(ctx, c.branch, page)
}

// GetBranchCommits fetches one page of commits for an explicit branch.
func (c *Client) GetBranchCommits(ctx context.Context, branch string, page int) []model.Commit {
	url := fmt.Sprintf("%sr/%s/%s?p=%d&format=json",
		c.baseURL, c.repo, normalizeBranch(branch), normalizePage(page))
	return c.list(ctx, url)
}

// GetUserCommits fetches one page of commits authored by username on the
// default branch.
func (c *Client) GetUserCommits(ctx context.Context, username string, page int) []model.Commit {
	return c.GetUserBranchCommits(ctx, username, c.branch, page)
}

// GetUserBranchCommits fetches one page of commits authored by username on an
// explicit branch. The query-before-path shape of this URL is the literal
// template the remote service consumes.
func (c *Client) GetUserBranchCommits(ctx context.Context, username, branch string, page int) []model.Commit {
	url := fmt.Sprintf("%s%s?p=%d&format=json/%s/%s",
		c.baseURL, username, normalizePage(page), c.repo, normalizeBranch(branch))
	return c.list(ctx, url)
}

// Close releases the underlying network client.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// list runs a listing fetch and degrades every failure mode to an empty slice.
func (c *Client) list(ctx context.Context, url string) []model.Commit {
	result, ok := c.fetch(ctx, url)
	if !ok || result.Total < 1 {
		return nil
	}
	return result.Results
}

// fetch issues a GET request and decodes the standard result envelope. The
// returned bool is false on any transport or decode failure.
func (c *Client) fetch(ctx context.Context, url string) (model.CommitResult, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Warn("Failed to build commit feed request", "url", url, "error", err)
		return model.CommitResult{}, false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Commit feed request failed", "url", url, "error", err)
		return model.CommitResult{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Commit feed returned unexpected status", "url", url, "status", resp.StatusCode)
		return model.CommitResult{}, false
	}

	var result model.CommitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Warn("Failed to decode commit feed response", "url", url, "error", err)
		return model.CommitResult{}, false
	}

	return result, true
}

// normalizeBranch strips at most one leading and one trailing slash. The
// characters in between are passed through untouched.
func normalizeBranch(branch string) string {
	branch = strings.TrimPrefix(branch, "/")
	return strings.TrimSuffix(branch, "/")
}

// normalizePage clamps the page number into [1, math.MaxInt32].
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	if page > math.MaxInt32 {
		return math.MaxInt32
	}
	return page
}
