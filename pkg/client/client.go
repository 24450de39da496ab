// Package client is a Go client for the reelstack API. It keeps the
// session cookie in a jar, so one Client instance corresponds to one
// signed-in user.
package client

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/reelstack/apiserver/types"
)

const defaultTimeout = 30 * time.Second

// Client talks to a reelstack API server.
type Client struct {
	http *resty.Client
}

// ErrorResponse mirrors the server's error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Session is the display summary returned by login and session lookups.
type Session struct {
	UserID     int    `json:"userId"`
	UserName   string `json:"userName"`
	UserAvatar string `json:"userAvatar"`
}

// New constructs a Client for the given base URL.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetTimeout(defaultTimeout)

	return &Client{http: httpClient}, nil
}

func apiError(resp *resty.Response) error {
	if errResp, ok := resp.Error().(*ErrorResponse); ok && errResp.Error != "" {
		return fmt.Errorf("api: %s (%s)", errResp.Error, resp.Status())
	}
	return fmt.Errorf("api: %s", resp.Status())
}

// Login signs in and stores the session cookie on the client.
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) (Session, error) {
	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":      email,
			"password":   password,
			"rememberMe": rememberMe,
		}).
		SetResult(&session).
		SetError(&ErrorResponse{}).
		Post("/auth/login")
	if err != nil {
		return Session{}, err
	}
	if resp.IsError() {
		return Session{}, apiError(resp)
	}
	return session, nil
}

// Logout destroys the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&ErrorResponse{}).
		Post("/auth/logout")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}

// Session returns the current session's display summary.
func (c *Client) Session(ctx context.Context) (Session, error) {
	var session Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&session).
		SetError(&ErrorResponse{}).
		Get("/auth/session")
	if err != nil {
		return Session{}, err
	}
	if resp.IsError() {
		return Session{}, apiError(resp)
	}
	return session, nil
}

// Movies fetches the catalog.
func (c *Client) Movies(ctx context.Context) ([]types.Movie, error) {
	var movies []types.Movie
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&movies).
		SetError(&ErrorResponse{}).
		Get("/movies")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return movies, nil
}

// Favorites fetches the signed-in user's favorited movies.
func (c *Client) Favorites(ctx context.Context) ([]types.Movie, error) {
	var movies []types.Movie
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&movies).
		SetError(&ErrorResponse{}).
		Get("/favorites")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return movies, nil
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// AddFavorite adds a movie id to the favorites set and returns the new set.
func (c *Client) AddFavorite(ctx context.Context, movieID string) ([]string, error) {
	return c.mutateFavorites(ctx, "/favorites/add", movieID)
}

// RemoveFavorite removes a movie id from the favorites set and returns the
// new set.
func (c *Client) RemoveFavorite(ctx context.Context, movieID string) ([]string, error) {
	return c.mutateFavorites(ctx, "/favorites/remove", movieID)
}

func (c *Client) mutateFavorites(ctx context.Context, path, movieID string) ([]string, error) {
	var result favoritesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"movieId": movieID}).
		SetResult(&result).
		SetError(&ErrorResponse{}).
		Post(path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return result.Favorites, nil
}
