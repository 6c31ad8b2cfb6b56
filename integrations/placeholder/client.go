// Package placeholder is a client for the JSONPlaceholder fake REST API.
package placeholder

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strconv"

	"github.com/gaborage/go-scriptkit/http"
)

// DefaultBaseURL is the public JSONPlaceholder instance
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// User is a JSONPlaceholder user
type User struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Company  Company `json:"company"`
}

// Company is the employer attached to a User
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
}

// Post is a JSONPlaceholder post
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// NewPost is the payload for CreatePost
type NewPost struct {
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Client reads and writes JSONPlaceholder resources
type Client struct {
	exec http.Executor
}

// NewClient wraps an executor whose base URL points at a JSONPlaceholder instance
func NewClient(exec http.Executor) *Client {
	return &Client{exec: exec}
}

// User fetches a single user by id
func (c *Client) User(ctx context.Context, id int) (*User, error) {
	var user User
	req := c.exec.NewRequest(nethttp.MethodGet, "/users/"+strconv.Itoa(id))
	req.Into = &user
	if _, err := c.exec.Execute(ctx, req); err != nil {
		return nil, fmt.Errorf("fetch user %d: %w", id, err)
	}
	return &user, nil
}

// Posts lists the posts written by userID
func (c *Client) Posts(ctx context.Context, userID int) ([]Post, error) {
	var posts []Post
	req := c.exec.NewRequest(nethttp.MethodGet, "/posts")
	req.Params = http.Params{"userId": userID}
	req.Into = &posts
	if _, err := c.exec.Execute(ctx, req); err != nil {
		return nil, fmt.Errorf("list posts of user %d: %w", userID, err)
	}
	return posts, nil
}

// CreatePost submits post and returns the stored copy with its assigned id
func (c *Client) CreatePost(ctx context.Context, post NewPost) (*Post, error) {
	var created Post
	req := c.exec.NewRequest(nethttp.MethodPost, "/posts")
	req.Payload = post
	req.Into = &created
	if _, err := c.exec.Execute(ctx, req); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &created, nil
}
