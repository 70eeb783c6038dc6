// file: internal/testutil/mock_providers.go
// version: 2.0.0
// guid: c3d4e5f6-a7b8-9012-cdef-345678901abc

package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// MockProviderServer creates an httptest.Server that serves canned provider
// responses. The responses map keys are matched against the request URL
// using Contains; unmatched requests get a 404.
func MockProviderServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for pattern, body := range responses {
			if strings.Contains(r.URL.String(), pattern) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
				return
			}
		}
		http.NotFound(w, r)
	}))
}

// MockGoogleBooksServer creates an httptest.Server that mimics the Google Books volumes API.
func MockGoogleBooksServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return MockProviderServer(t, responses)
}

// MockOpenLibraryServer creates an httptest.Server that mimics the Open Library books API.
func MockOpenLibraryServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	return MockProviderServer(t, responses)
}

// CountingServer always answers with status and body, and counts requests.
func CountingServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	return srv, &hits
}

// HobbitISBN is the canonical ISBN-13 used by the canned responses.
const HobbitISBN = "9780547928227"

// GoogleBooksHobbitISBNResponse lists two volumes for an isbn: query. The
// first is a study guide that does not carry the requested ISBN.
const GoogleBooksHobbitISBNResponse = `{
	"kind": "books#volumes",
	"totalItems": 2,
	"items": [{
		"id": "guide1",
		"volumeInfo": {
			"title": "Study Guide: The Hobbit",
			"authors": ["Guide Writer"],
			"publisher": "Guides Inc",
			"publishedDate": "2019",
			"description": "A complete companion to the novel with chapter summaries and discussion questions.",
			"industryIdentifiers": [{"type": "ISBN_13", "identifier": "9781111111111"}],
			"imageLinks": {"thumbnail": "http://books.google.com/guide.jpg"}
		}
	}, {
		"id": "hobbit1",
		"volumeInfo": {
			"title": "The Hobbit",
			"subtitle": "Or There and Back Again",
			"authors": ["J.R.R. Tolkien"],
			"publisher": "Houghton Mifflin Harcourt",
			"publishedDate": "2012-09-18",
			"description": "Bilbo Baggins is a hobbit who enjoys a comfortable, unambitious life.",
			"industryIdentifiers": [
				{"type": "ISBN_10", "identifier": "054792822X"},
				{"type": "ISBN_13", "identifier": "9780547928227"}
			],
			"pageCount": 300,
			"categories": ["Fiction", "Fantasy"],
			"imageLinks": {
				"smallThumbnail": "http://books.google.com/hobbit-small.jpg",
				"thumbnail": "http://books.google.com/hobbit.jpg"
			}
		}
	}]
}`

// GoogleBooksHobbitTitleResponse lists two volumes for an intitle: query.
// The second is the closer title match.
const GoogleBooksHobbitTitleResponse = `{
	"kind": "books#volumes",
	"totalItems": 2,
	"items": [{
		"id": "atlas1",
		"volumeInfo": {
			"title": "Atlas of Middle Earth",
			"authors": ["Karen Wynn Fonstad"],
			"publisher": "Houghton Mifflin",
			"publishedDate": "2001",
			"industryIdentifiers": [{"type": "ISBN_13", "identifier": "9780618126996"}]
		}
	}, {
		"id": "hobbit1",
		"volumeInfo": {
			"title": "The Hobbit",
			"authors": ["J.R.R. Tolkien"],
			"publisher": "Houghton Mifflin Harcourt",
			"publishedDate": "2012-09-18",
			"industryIdentifiers": [
				{"type": "ISBN_10", "identifier": "054792822X"},
				{"type": "ISBN_13", "identifier": "9780547928227"}
			]
		}
	}]
}`

// GoogleBooksEmptyResponse returns no volumes.
const GoogleBooksEmptyResponse = `{"kind":"books#volumes","totalItems":0}`

// OpenLibraryHobbitResponse is a jscmd=data response for HobbitISBN.
const OpenLibraryHobbitResponse = `{
	"ISBN:9780547928227": {
		"title": "The Hobbit",
		"authors": [{"name": "J.R.R. Tolkien", "url": "https://openlibrary.org/authors/OL26320A"}],
		"publishers": [{"name": "Houghton Mifflin Harcourt"}, {"name": "Mariner Books"}],
		"publish_date": "2012",
		"number_of_pages": 300,
		"subjects": [
			{"name": "Fantasy"}, {"name": "Dragons"}, {"name": "Wizards"},
			{"name": "Dwarves"}, {"name": "Hobbits"}, {"name": "Middle Earth"}
		],
		"notes": {"type": "/type/text", "value": "Anniversary edition."},
		"cover": {
			"small": "https://covers.openlibrary.org/b/id/1-S.jpg",
			"medium": "https://covers.openlibrary.org/b/id/1-M.jpg",
			"large": "https://covers.openlibrary.org/b/id/1-L.jpg"
		}
	}
}`

// OpenLibraryEmptyResponse is what the books API returns for unknown ISBNs.
const OpenLibraryEmptyResponse = `{}`
