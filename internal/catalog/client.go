package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/reelstack/apiserver/config"
	"github.com/reelstack/apiserver/types"
)

const defaultRequestTimeout = 15 * time.Second

// Client fetches movie search results from the upstream catalog provider
// and transforms them into the internal movie shape.
type Client struct {
	http    *resty.Client
	term    string
	country string
	limit   int
}

func NewClient(cfg config.CatalogConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(defaultRequestTimeout)

	return &Client{
		http:    httpClient,
		term:    cfg.Term,
		country: cfg.Country,
		limit:   cfg.Limit,
	}
}

// searchResponse is the provider's envelope.
type searchResponse struct {
	ResultCount int             `json:"resultCount"`
	Results     []providerMovie `json:"results"`
}

// providerMovie is the subset of provider fields the catalog consumes.
type providerMovie struct {
	TrackID          json.Number `json:"trackId"`
	TrackName        string      `json:"trackName"`
	ShortDescription string      `json:"shortDescription"`
	LongDescription  string      `json:"longDescription"`
	ReleaseDate      time.Time   `json:"releaseDate"`
	ArtistName       string      `json:"artistName"`
	ArtworkURL100    string      `json:"artworkUrl100"`
	PreviewURL       string      `json:"previewUrl"`
	PrimaryGenreName string      `json:"primaryGenreName"`
	TrackPrice       float64     `json:"trackPrice"`
	TrackHDPrice     float64     `json:"trackHdPrice"`
}

func (p providerMovie) toMovie() types.Movie {
	return types.Movie{
		ExternalID:      p.TrackID.String(),
		Title:           p.TrackName,
		Description:     p.ShortDescription,
		LongDescription: p.LongDescription,
		ReleaseDate:     p.ReleaseDate,
		Director:        p.ArtistName,
		// The provider has no cast field; the client renders the long
		// description in its place.
		Cast:     p.LongDescription,
		Image:    p.ArtworkURL100,
		VideoURL: p.PreviewURL,
		Genre:    p.PrimaryGenreName,
		Price:    p.TrackPrice,
		HDPrice:  p.TrackHDPrice,
	}
}

// Search fetches one fixed-size page of movies from the provider.
func (c *Client) Search(ctx context.Context) ([]types.Movie, error) {
	var response searchResponse

	// The provider serves JSON with a text/javascript content type, so
	// force JSON decoding regardless.
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"term":    c.term,
			"country": c.country,
			"media":   "movie",
			"limit":   strconv.Itoa(c.limit),
		}).
		ForceContentType("application/json").
		SetResult(&response).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("catalog search: provider returned %s", resp.Status())
	}

	movies := make([]types.Movie, 0, len(response.Results))
	for _, result := range response.Results {
		movies = append(movies, result.toMovie())
	}
	return movies, nil
}
