// Package github reads public profile and repository data from the GitHub REST API.
package github

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gaborage/go-scriptkit/cache"
	"github.com/gaborage/go-scriptkit/http"
)

const (
	// DefaultBaseURL is the public GitHub API
	DefaultBaseURL = "https://api.github.com"
	// AcceptHeader selects the v3 REST media type
	AcceptHeader = "application/vnd.github.v3+json"
	// TopRepoCount is how many repositories Stats ranks
	TopRepoCount = 3
	reposPerPage = 100
)

// User is a GitHub account profile
type User struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	Location    string    `json:"location"`
	PublicRepos int       `json:"public_repos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repo is a repository owned by a user
type Repo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Stars       int    `json:"stargazers_count"`
	Forks       int    `json:"forks_count"`
	Fork        bool   `json:"fork"`
	HTMLURL     string `json:"html_url"`
}

// Stats aggregates a user's profile and repositories
type Stats struct {
	User       User
	RepoCount  int
	TopRepos   []Repo
	TotalStars int
	TotalForks int
	Languages  []string
}

// Client queries the GitHub REST API
type Client struct {
	exec  http.Executor
	cache cache.Cache
	ttl   time.Duration
}

// NewClient wraps an executor whose base URL points at the GitHub API. The
// executor should carry AcceptHeader and, optionally, a bearer token; see
// Configure.
func NewClient(exec http.Executor) *Client {
	return &Client{exec: exec}
}

// WithCache keeps fetched profiles and repository lists in store for ttl.
func (c *Client) WithCache(store cache.Cache, ttl time.Duration) *Client {
	c.cache = store
	c.ttl = ttl
	return c
}

// Configure adds the GitHub media type and the token, when set, to b
func Configure(b *http.Builder, token string) *http.Builder {
	b = b.WithDefaultHeader("Accept", AcceptHeader)
	if token != "" {
		b = b.WithBearerToken(token)
	}
	return b
}

// User fetches the profile of login
func (c *Client) User(ctx context.Context, login string) (*User, error) {
	return cache.GetOrLoad(ctx, c.cache, cacheKey("user", login), c.ttl, func(ctx context.Context) (*User, error) {
		var user User
		req := c.exec.NewRequest(nethttp.MethodGet, "/users/"+url.PathEscape(login))
		req.Into = &user
		if _, err := c.exec.Execute(ctx, req); err != nil {
			return nil, fmt.Errorf("fetch github user %s: %w", login, err)
		}
		return &user, nil
	})
}

// Repos lists the public repositories of login (first page, up to 100)
func (c *Client) Repos(ctx context.Context, login string) ([]Repo, error) {
	return cache.GetOrLoad(ctx, c.cache, cacheKey("repos", login), c.ttl, func(ctx context.Context) ([]Repo, error) {
		var repos []Repo
		req := c.exec.NewRequest(nethttp.MethodGet, "/users/"+url.PathEscape(login)+"/repos")
		req.Params = http.Params{"per_page": reposPerPage}
		req.Into = &repos
		if _, err := c.exec.Execute(ctx, req); err != nil {
			return nil, fmt.Errorf("list github repos of %s: %w", login, err)
		}
		return repos, nil
	})
}

// GitHub logins are case-insensitive
func cacheKey(kind, login string) string {
	return "github:" + kind + ":" + strings.ToLower(login)
}

// Stats fetches the profile and repositories of login concurrently and
// summarizes them. The first failure cancels the other request.
func (c *Client) Stats(ctx context.Context, login string) (*Stats, error) {
	var (
		user  *User
		repos []Repo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = c.User(gctx, login)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = c.Repos(gctx, login)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := Summarize(repos)
	stats.User = *user
	return stats, nil
}

// Summarize ranks repos by stars and totals stars, forks and languages
func Summarize(repos []Repo) *Stats {
	stats := &Stats{RepoCount: len(repos)}
	languages := make(map[string]struct{})
	for _, r := range repos {
		stats.TotalStars += r.Stars
		stats.TotalForks += r.Forks
		if r.Language != "" {
			languages[r.Language] = struct{}{}
		}
	}

	stats.Languages = make([]string, 0, len(languages))
	for lang := range languages {
		stats.Languages = append(stats.Languages, lang)
	}
	sort.Strings(stats.Languages)

	ranked := make([]Repo, len(repos))
	copy(ranked, repos)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stars > ranked[j].Stars
	})
	stats.TopRepos = ranked[:min(TopRepoCount, len(ranked))]
	return stats
}
