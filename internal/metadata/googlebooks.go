// file: internal/metadata/googlebooks.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-f2a3b4c5d6e7

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jdfalk/library-catalog/internal/fetcher"
	"github.com/jdfalk/library-catalog/internal/isbn"
	"github.com/jdfalk/library-catalog/internal/metrics"
)

// GoogleBooksClient fetches metadata from the Google Books Volume API.
// The API key is optional (free tier works without one, ~1000 req/day).
// It is the only source that supports title searches.
type GoogleBooksClient struct {
	fetch   Getter
	policy  fetcher.RetryPolicy
	baseURL string
	apiKey  string
}

// NewGoogleBooksClient creates a new Google Books API client.
func NewGoogleBooksClient(apiKey string) *GoogleBooksClient {
	baseURL := os.Getenv("GOOGLE_BOOKS_BASE_URL")
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/books/v1"
	}
	return NewGoogleBooksClientWithBaseURL(baseURL, apiKey)
}

// NewGoogleBooksClientWithBaseURL creates a client with a custom base URL (for testing).
func NewGoogleBooksClientWithBaseURL(baseURL, apiKey string) *GoogleBooksClient {
	return &GoogleBooksClient{
		fetch:   fetcher.New(),
		policy:  fetcher.DefaultPolicy,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// SetFetcher replaces the HTTP fetcher.
func (c *GoogleBooksClient) SetFetcher(f Getter) {
	c.fetch = f
}

// SetRetryPolicy replaces the retry policy used for every request.
func (c *GoogleBooksClient) SetRetryPolicy(p fetcher.RetryPolicy) {
	c.policy = p
}

// Name returns the display name for this metadata source.
func (c *GoogleBooksClient) Name() string {
	return "Google Books"
}

type googleBooksResponse struct {
	TotalItems int              `json:"totalItems"`
	Items      []googleBooksVol `json:"items"`
}

type googleBooksVol struct {
	ID         string                `json:"id"`
	VolumeInfo googleBooksVolumeInfo `json:"volumeInfo"`
}

type googleBooksVolumeInfo struct {
	Title               string                  `json:"title"`
	Subtitle            string                  `json:"subtitle"`
	Authors             []string                `json:"authors"`
	Publisher           string                  `json:"publisher"`
	PublishedDate       string                  `json:"publishedDate"`
	Description         string                  `json:"description"`
	IndustryIdentifiers []googleBooksIndustryID `json:"industryIdentifiers"`
	PageCount           int                     `json:"pageCount"`
	Categories          []string                `json:"categories"`
	ImageLinks          *googleBooksImageLinks  `json:"imageLinks"`
}

type googleBooksIndustryID struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type googleBooksImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// Provider labels for lookup metrics.
const (
	googleBooksISBNLabel  = "google_books"
	googleBooksTitleLabel = "google_books_title"
)

// FetchByIdentifier looks up a canonical identifier and returns the best
// matching volume, or nil.
func (c *GoogleBooksClient) FetchByIdentifier(ctx context.Context, id string) *BookMetadata {
	if !isbn.IsCanonical(id) {
		log.Printf("[WARN] Google Books: refusing non-canonical identifier %q", id)
		return nil
	}

	vols, err := c.search(ctx, "isbn:"+id)
	if err != nil {
		c.logFailure(googleBooksISBNLabel, "isbn "+id, err)
		return nil
	}

	best, ok := SelectBest(vols, Query{Identifier: id}, volumeSignals)
	if !ok {
		log.Printf("[DEBUG] Google Books: no volumes for isbn %s", id)
		metrics.IncProviderLookup(googleBooksISBNLabel, "miss")
		return nil
	}

	meta := volumeToMetadata(best.VolumeInfo, id, SourceGoogleBooksISBN)
	metrics.IncProviderLookup(googleBooksISBNLabel, "hit")
	return &meta
}

// FetchByTitle searches by title and returns the best matching volume, or
// nil. Titles shorter than three characters are not searched.
func (c *GoogleBooksClient) FetchByTitle(ctx context.Context, title string) *BookMetadata {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < minTitleLength {
		log.Printf("[DEBUG] Google Books: title %q too short to search", title)
		return nil
	}

	vols, err := c.search(ctx, "intitle:"+title)
	if err != nil {
		c.logFailure(googleBooksTitleLabel, fmt.Sprintf("title %q", title), err)
		return nil
	}

	best, ok := SelectBest(vols, Query{Title: title}, volumeSignals)
	if !ok {
		log.Printf("[DEBUG] Google Books: no volumes for title %q", title)
		metrics.IncProviderLookup(googleBooksTitleLabel, "miss")
		return nil
	}

	meta := volumeToMetadata(best.VolumeInfo, volumeIdentifier(best.VolumeInfo), SourceGoogleBooksTitle)
	metrics.IncProviderLookup(googleBooksTitleLabel, "hit")
	return &meta
}

func (c *GoogleBooksClient) search(ctx context.Context, query string) ([]googleBooksVol, error) {
	params := url.Values{}
	params.Set("q", query)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	searchURL := fmt.Sprintf("%s/volumes?%s", c.baseURL, params.Encode())

	body, err := c.fetch.Fetch(ctx, searchURL, fetcher.RequestOptions{}, c.policy)
	if err != nil {
		return nil, err
	}

	var gbResp googleBooksResponse
	if err := json.Unmarshal(body, &gbResp); err != nil {
		return nil, fmt.Errorf("failed to decode Google Books response: %w", err)
	}
	return gbResp.Items, nil
}

// logFailure records a failed search under label, the metrics provider
// label of the query kind.
func (c *GoogleBooksClient) logFailure(label, what string, err error) {
	if errors.Is(err, fetcher.ErrNotFound) {
		log.Printf("[DEBUG] Google Books: %s not found", what)
		metrics.IncProviderLookup(label, "miss")
		return
	}
	log.Printf("[WARN] Google Books: lookup for %s failed: %v", what, err)
	metrics.IncProviderLookup(label, "error")
}

func volumeSignals(v googleBooksVol) Signals {
	vi := v.VolumeInfo
	ids := make([]string, 0, len(vi.IndustryIdentifiers))
	for _, id := range vi.IndustryIdentifiers {
		ids = append(ids, id.Identifier)
	}
	return Signals{
		Identifiers:   ids,
		HasCover:      vi.ImageLinks != nil && (vi.ImageLinks.Thumbnail != "" || vi.ImageLinks.SmallThumbnail != ""),
		Description:   vi.Description,
		AuthorCount:   len(vi.Authors),
		Publisher:     vi.Publisher,
		PublishedDate: vi.PublishedDate,
		Title:         vi.Title,
	}
}

// volumeIdentifier picks the canonical ISBN-13, falling back to ISBN-10.
func volumeIdentifier(vi googleBooksVolumeInfo) string {
	var isbn10 string
	for _, id := range vi.IndustryIdentifiers {
		normalized := isbn.Normalize(id.Identifier)
		if !isbn.IsCanonical(normalized) {
			continue
		}
		switch id.Type {
		case "ISBN_13":
			return normalized
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = normalized
			}
		}
	}
	return isbn10
}

func volumeToMetadata(vi googleBooksVolumeInfo, identifier string, tag SourceTag) BookMetadata {
	title := vi.Title
	if vi.Subtitle != "" && title != "" {
		title = title + ": " + vi.Subtitle
	}

	thumbnail := ""
	if vi.ImageLinks != nil {
		thumbnail = vi.ImageLinks.Thumbnail
		if thumbnail == "" {
			thumbnail = vi.ImageLinks.SmallThumbnail
		}
		// Google serves the same images over https.
		if strings.HasPrefix(thumbnail, "http://") {
			thumbnail = "https://" + strings.TrimPrefix(thumbnail, "http://")
		}
	}

	return BookMetadata{
		Title:         title,
		Authors:       strings.Join(vi.Authors, ", "),
		Publisher:     vi.Publisher,
		PublishedDate: vi.PublishedDate,
		Thumbnail:     thumbnail,
		Description:   vi.Description,
		Identifier:    identifier,
		PageCount:     vi.PageCount,
		Categories:    strings.Join(vi.Categories, ", "),
		Source:        tag,
	}
}
