package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go/v4"

	"toonarchive/internal/backoff"
)

var traktAPIBaseURL = "https://api.trakt.tv"

const (
	traktAPIVersion = "2"
	pageLimit       = 50
	// Pause between page requests to stay inside Trakt's informal limits.
	pagePause = 150 * time.Millisecond
)

// setBaseURL overrides the API base URL for testing
func setBaseURL(u string) {
	traktAPIBaseURL = u
}

// Client handles Trakt API interactions for list discovery and export
type Client struct {
	httpClient *http.Client
	clientID   string
	backoff    backoff.Policy
	pause      time.Duration
}

// IDs holds external identifiers for a media item
type IDs struct {
	Trakt *int64 `json:"trakt,omitempty"`
	Slug  string `json:"slug,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  *int64 `json:"tmdb,omitempty"`
	TVDB  *int64 `json:"tvdb,omitempty"`
}

// UserList represents one of a user's curated lists
type UserList struct {
	Name string `json:"name"`
	IDs  IDs    `json:"ids"`
}

// mediaObject is the show/movie payload nested in a list item
type mediaObject struct {
	Title string `json:"title"`
	Year  *int   `json:"year"`
	IDs   IDs    `json:"ids"`
}

// ListItemRow represents one raw entry of /lists/{id}/items
type ListItemRow struct {
	Rank     *int         `json:"rank"`
	ID       *int64       `json:"id"`
	ListedAt string       `json:"listed_at"`
	Type     string       `json:"type"` // "show", "movie", "episode", ...
	Show     *mediaObject `json:"show,omitempty"`
	Movie    *mediaObject `json:"movie,omitempty"`
}

// NewClient creates a new Trakt API client
func NewClient(clientID string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		clientID:   clientID,
		backoff:    backoff.Default(),
		pause:      pagePause,
	}
}

// setTraktHeaders adds required Trakt API headers to a request
func (c *Client) setTraktHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", traktAPIVersion)
	req.Header.Set("trakt-api-key", c.clientID)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
}

// Probe verifies the client id against a public endpoint before the
// export starts, so a bad credential fails fast instead of mid-run.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, traktAPIBaseURL+"/movies/popular", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setTraktHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("trakt api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("trakt client id rejected: %s - %s", resp.Status, string(respBody))
	}
	return nil
}

// UserLists retrieves the public lists of a user
func (c *Client) UserLists(ctx context.Context, user string) ([]UserList, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, traktAPIBaseURL+"/users/"+url.PathEscape(user)+"/lists", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setTraktHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trakt api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trakt user lists failed: %s - %s", resp.Status, string(respBody))
	}

	var lists []UserList
	if err := json.NewDecoder(resp.Body).Decode(&lists); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return lists, nil
}

// ListIDForSlug resolves a list slug to its numeric Trakt id
func ListIDForSlug(lists []UserList, slug string) (int64, error) {
	for _, l := range lists {
		if l.IDs.Slug == slug && l.IDs.Trakt != nil {
			return *l.IDs.Trakt, nil
		}
	}
	return 0, fmt.Errorf("no numeric list id for slug %q", slug)
}

// listItemsPage fetches one page of /lists/{id}/items with the shared
// backoff policy. 401 and 404 are terminal; 429 and 5xx retry.
func (c *Client) listItemsPage(ctx context.Context, listID int64, page int) ([]ListItemRow, error) {
	u := fmt.Sprintf("%s/lists/%d/items?extended=min&page=%d&limit=%d", traktAPIBaseURL, listID, page, pageLimit)

	return retry.DoWithData(func() ([]ListItemRow, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
		}
		c.setTraktHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Timeouts and connection failures are retryable.
			return nil, fmt.Errorf("trakt api request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var items []ListItemRow
			if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return items, nil
		case resp.StatusCode == http.StatusUnauthorized:
			return nil, retry.Unrecoverable(fmt.Errorf("trakt unauthorized: check TRAKT_CLIENT_ID"))
		case resp.StatusCode == http.StatusNotFound:
			return nil, retry.Unrecoverable(fmt.Errorf("trakt list %d not found", listID))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("trakt HTTP %d on page %d", resp.StatusCode, page)
		default:
			respBody, _ := io.ReadAll(resp.Body)
			return nil, retry.Unrecoverable(fmt.Errorf("trakt list items failed: %s - %s", resp.Status, string(respBody)))
		}
	}, c.backoff.Options(ctx)...)
}

// FetchListItems retrieves every item of a list, requesting fixed-size
// pages from 1 until a page comes back empty.
func (c *Client) FetchListItems(ctx context.Context, listID int64) ([]ListItemRow, error) {
	var all []ListItemRow
	for page := 1; ; page++ {
		batch, err := c.listItemsPage(ctx, listID, page)
		if err != nil {
			return nil, fmt.Errorf("list %d page %d: %w", listID, page, err)
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
		time.Sleep(c.pause)
	}
	return all, nil
}
