// file: internal/metadata/types.go
// version: 2.0.0
// guid: 734df8e1-629e-4458-b069-1b8e1741e94f

package metadata

// SourceTag records where a BookMetadata value came from.
type SourceTag string

const (
	// SourceGoogleBooksISBN is an identifier lookup against Google Books.
	SourceGoogleBooksISBN SourceTag = "google-books-isbn"
	// SourceGoogleBooksTitle is a free-text title search against Google Books.
	SourceGoogleBooksTitle SourceTag = "google-books-title"
	// SourceOpenLibrary is an identifier lookup against Open Library.
	SourceOpenLibrary SourceTag = "open-library"
	// SourceCache marks metadata served from the persistent cache.
	SourceCache SourceTag = "cache"
)

// BookMetadata is the provider-independent shape used to pre-fill a book
// record. Values are treated as immutable; use WithSource to re-tag a copy.
// Unavailable fields are present with their zero value.
type BookMetadata struct {
	Title         string    `json:"title" yaml:"title"`
	Authors       string    `json:"authors" yaml:"authors"`
	Publisher     string    `json:"publisher" yaml:"publisher"`
	PublishedDate string    `json:"publishedDate" yaml:"publishedDate"`
	Thumbnail     string    `json:"thumbnail" yaml:"thumbnail"`
	Description   string    `json:"description" yaml:"description"`
	Identifier    string    `json:"identifier" yaml:"identifier"`
	PageCount     int       `json:"pageCount" yaml:"pageCount"`
	Categories    string    `json:"categories" yaml:"categories"`
	Source        SourceTag `json:"source" yaml:"source"`
}

// WithSource returns a copy of m tagged with the given source.
func (m BookMetadata) WithSource(tag SourceTag) BookMetadata {
	m.Source = tag
	return m
}
