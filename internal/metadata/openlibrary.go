// file: internal/metadata/openlibrary.go
// version: 2.0.0
// guid: e55c97a4-0624-4707-9847-cac8e107388b

package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/jdfalk/library-catalog/internal/fetcher"
	"github.com/jdfalk/library-catalog/internal/isbn"
	"github.com/jdfalk/library-catalog/internal/metrics"
)

// DefaultUserAgent identifies this client to Open Library, which asks
// API consumers to send a descriptive User-Agent.
const DefaultUserAgent = "LibraryCatalog/1.0 (+https://github.com/jdfalk/library-catalog)"

// maxCategories limits how many Open Library subjects become categories.
const maxCategories = 5

// OpenLibraryClient handles metadata fetching from the Open Library Books API.
type OpenLibraryClient struct {
	fetch     Getter
	policy    fetcher.RetryPolicy
	baseURL   string
	userAgent string
}

// NewOpenLibraryClient creates a new Open Library API client
func NewOpenLibraryClient(userAgent string) *OpenLibraryClient {
	baseURL := os.Getenv("OPENLIBRARY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	return NewOpenLibraryClientWithBaseURL(baseURL, userAgent)
}

// NewOpenLibraryClientWithBaseURL creates a client with a custom base URL.
func NewOpenLibraryClientWithBaseURL(baseURL, userAgent string) *OpenLibraryClient {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &OpenLibraryClient{
		fetch:     fetcher.New(),
		policy:    fetcher.DefaultPolicy,
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// SetFetcher replaces the HTTP fetcher.
func (c *OpenLibraryClient) SetFetcher(f Getter) {
	c.fetch = f
}

// SetRetryPolicy replaces the retry policy used for every request.
func (c *OpenLibraryClient) SetRetryPolicy(p fetcher.RetryPolicy) {
	c.policy = p
}

// Name returns the display name for this metadata source.
func (c *OpenLibraryClient) Name() string {
	return "Open Library"
}

type olNamed struct {
	Name string `json:"name"`
}

type olCover struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type olExcerpt struct {
	Text string `json:"text"`
}

// olBook matches one value of api/books?jscmd=data
type olBook struct {
	Title         string      `json:"title"`
	Subtitle      string      `json:"subtitle"`
	Authors       []olNamed   `json:"authors"`
	Publishers    []olNamed   `json:"publishers"`
	PublishDate   string      `json:"publish_date"`
	Cover         *olCover    `json:"cover"`
	NumberOfPages int         `json:"number_of_pages"`
	Subjects      []olNamed   `json:"subjects"`
	Notes         interface{} `json:"notes"` // string or {"type": "/type/text", "value": "..."}
	Excerpts      []olExcerpt `json:"excerpts"`
}

// FetchByIdentifier looks up a canonical identifier and returns the first
// record, or nil.
func (c *OpenLibraryClient) FetchByIdentifier(ctx context.Context, id string) *BookMetadata {
	if !isbn.IsCanonical(id) {
		log.Printf("[WARN] Open Library: refusing non-canonical identifier %q", id)
		return nil
	}

	bibkey := "ISBN:" + id
	apiURL := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data", c.baseURL, bibkey)

	body, err := c.fetch.Fetch(ctx, apiURL, fetcher.RequestOptions{
		Headers: map[string]string{"User-Agent": c.userAgent},
	}, c.policy)
	if err != nil {
		if errors.Is(err, fetcher.ErrNotFound) {
			log.Printf("[DEBUG] Open Library: ISBN %s not found", id)
			metrics.IncProviderLookup("open_library", "miss")
			return nil
		}
		log.Printf("[WARN] Open Library: lookup for ISBN %s failed: %v", id, err)
		metrics.IncProviderLookup("open_library", "error")
		return nil
	}

	var books map[string]olBook
	if err := json.Unmarshal(body, &books); err != nil {
		log.Printf("[WARN] Open Library: failed to decode response for ISBN %s: %v", id, err)
		metrics.IncProviderLookup("open_library", "error")
		return nil
	}

	book, ok := firstBook(books, bibkey)
	if !ok {
		log.Printf("[DEBUG] Open Library: no records for ISBN %s", id)
		metrics.IncProviderLookup("open_library", "miss")
		return nil
	}

	meta := bookToMetadata(book, id)
	metrics.IncProviderLookup("open_library", "hit")
	return &meta
}

// firstBook prefers the requested bibkey and otherwise takes the first key
// in sorted order so the choice is deterministic.
func firstBook(books map[string]olBook, bibkey string) (olBook, bool) {
	if len(books) == 0 {
		return olBook{}, false
	}
	if b, ok := books[bibkey]; ok {
		return b, true
	}
	keys := make([]string, 0, len(books))
	for k := range books {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return books[keys[0]], true
}

func bookToMetadata(b olBook, id string) BookMetadata {
	title := b.Title
	if b.Subtitle != "" && title != "" {
		title = title + ": " + b.Subtitle
	}

	authors := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	publisher := ""
	if len(b.Publishers) > 0 {
		publisher = b.Publishers[0].Name
	}

	thumbnail := ""
	if b.Cover != nil {
		switch {
		case b.Cover.Medium != "":
			thumbnail = b.Cover.Medium
		case b.Cover.Large != "":
			thumbnail = b.Cover.Large
		default:
			thumbnail = b.Cover.Small
		}
	}

	description := descriptionText(b.Notes)
	if description == "" && len(b.Excerpts) > 0 {
		description = b.Excerpts[0].Text
	}

	categories := make([]string, 0, maxCategories)
	for _, s := range b.Subjects {
		if len(categories) == maxCategories {
			break
		}
		if s.Name != "" {
			categories = append(categories, s.Name)
		}
	}

	return BookMetadata{
		Title:         title,
		Authors:       strings.Join(authors, ", "),
		Publisher:     publisher,
		PublishedDate: b.PublishDate,
		Thumbnail:     thumbnail,
		Description:   description,
		Identifier:    id,
		PageCount:     b.NumberOfPages,
		Categories:    strings.Join(categories, ", "),
		Source:        SourceOpenLibrary,
	}
}

// descriptionText extracts a plain string from an Open Library text field,
// which may be a string or a {"type": "/type/text", "value": "..."} object.
func descriptionText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		if s, ok := t["value"].(string); ok {
			return s
		}
	}
	return ""
}
