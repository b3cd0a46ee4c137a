// Package library wraps the Open Library search API used by the book
// search screen. The remote semantics are opaque; this is only the data
// contract the client consumes.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public Open Library endpoint.
const DefaultBaseURL = "https://openlibrary.org"

// Book is one search hit, reduced to what the screen renders.
type Book struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	FirstYear int    `json:"firstYear,omitempty"`
}

// Client queries the Open Library search endpoint.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a Client. An empty baseURL falls back to the public
// endpoint; timeout bounds the whole request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// searchResponse mirrors the slice of the Open Library payload we read.
type searchResponse struct {
	Docs []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
	} `json:"docs"`
}

// Search returns up to limit books matching query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Book, error) {
	if limit <= 0 {
		limit = 20
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("fields", "key,title,author_name,first_publish_year")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("library: build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("library: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("library: search: unexpected status %d", resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("library: decode response: %w", err)
	}

	books := make([]Book, 0, len(payload.Docs))
	for _, d := range payload.Docs {
		b := Book{Key: d.Key, Title: d.Title, FirstYear: d.FirstPublishYear}
		if len(d.AuthorName) > 0 {
			b.Author = d.AuthorName[0]
		}
		books = append(books, b)
	}
	return books, nil
}
