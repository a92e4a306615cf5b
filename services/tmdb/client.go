package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"toonarchive/internal/backoff"
)

var tmdbAPIBaseURL = "https://api.themoviedb.org/3"

// setBaseURL overrides the API base URL for testing
func setBaseURL(u string) {
	tmdbAPIBaseURL = u
}

// Client handles TMDB API lookups for movie and TV details
type Client struct {
	httpClient *http.Client
	apiKey     string
	language   string
	backoff    backoff.Policy
}

// Genre is a TMDB genre entry
type Genre struct {
	Name string `json:"name"`
}

// Network is a TMDB broadcaster entry
type Network struct {
	Name string `json:"name"`
}

// Details holds the union of the movie and TV detail schemas. Which
// fields are populated depends on the endpoint that answered.
type Details struct {
	// Movie schema
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Runtime     *int   `json:"runtime"`

	// TV schema
	Name             string    `json:"name"`
	FirstAirDate     string    `json:"first_air_date"`
	EpisodeRunTime   []int     `json:"episode_run_time"`
	Networks         []Network `json:"networks"`
	OriginCountry    []string  `json:"origin_country"`
	NumberOfSeasons  *int      `json:"number_of_seasons"`
	NumberOfEpisodes *int      `json:"number_of_episodes"`

	// Shared
	Status           string   `json:"status"`
	Genres           []Genre  `json:"genres"`
	VoteAverage      *float64 `json:"vote_average"`
	VoteCount        *int     `json:"vote_count"`
	Popularity       *float64 `json:"popularity"`
	OriginalLanguage string   `json:"original_language"`
}

// NewClient creates a new TMDB API client
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 45 * time.Second},
		apiKey:     apiKey,
		language:   "en-US",
		backoff:    backoff.Default(),
	}
}

// MovieDetails fetches /movie/{id}. A 404 returns (nil, nil): the id
// simply is not a movie, which is a normal branch outcome for the
// enricher's kind fallback.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Details, error) {
	return c.get(ctx, fmt.Sprintf("/movie/%d", id))
}

// TVDetails fetches /tv/{id}. Same 404 contract as MovieDetails.
func (c *Client) TVDetails(ctx context.Context, id int64) (*Details, error) {
	return c.get(ctx, fmt.Sprintf("/tv/%d", id))
}

// get performs a TMDB GET with the shared backoff policy. Rate-limit
// and server errors retry; exhausting the retries surfaces the last
// cause and fails the stage.
func (c *Client) get(ctx context.Context, path string) (*Details, error) {
	u := fmt.Sprintf("%s%s?api_key=%s&language=%s", tmdbAPIBaseURL, path, c.apiKey, c.language)

	return retry.DoWithData(func() (*Details, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("tmdb api request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var details Details
			if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
				return nil, retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
			}
			return &details, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return nil, fmt.Errorf("tmdb HTTP %d on %s", resp.StatusCode, path)
		default:
			respBody, _ := io.ReadAll(resp.Body)
			return nil, retry.Unrecoverable(fmt.Errorf("tmdb %s failed: %s - %s", path, resp.Status, string(respBody)))
		}
	}, c.backoff.Options(ctx)...)
}
