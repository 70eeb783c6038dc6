// file: internal/metadata/source.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7a8b-9c0d-e1f2a3b4c5d6

package metadata

import (
	"context"

	"github.com/jdfalk/library-catalog/internal/fetcher"
)

// Source is a pluggable metadata provider queried by canonical identifier.
// Implementations never return errors: failures are logged and reported as
// a nil result.
type Source interface {
	Name() string
	FetchByIdentifier(ctx context.Context, id string) *BookMetadata
}

// TitleSource is a Source that also supports free-text title queries.
type TitleSource interface {
	Source
	FetchByTitle(ctx context.Context, title string) *BookMetadata
}

// Getter performs the HTTP GET behind every adapter.
type Getter interface {
	Fetch(ctx context.Context, url string, opts fetcher.RequestOptions, policy fetcher.RetryPolicy) ([]byte, error)
}

// minTitleLength is the shortest title worth sending to a provider.
const minTitleLength = 3
