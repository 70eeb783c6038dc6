// file: internal/cache/codec.go
// version: 1.0.0
// guid: 92ae83f6-da1f-4212-8d79-0459ab01ec8d

package cache

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/jdfalk/library-catalog/internal/metadata"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errCorruptEntry marks a stored value that decodes but is not an entry.
var errCorruptEntry = errors.New("corrupt cache entry")

// Entry is the serialized form of one cached resolution.
type Entry struct {
	Identifier string                `json:"identifier"`
	Metadata   metadata.BookMetadata `json:"metadata"`
	StoredAt   int64                 `json:"storedAt"` // epoch millis
}

func encodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(e)
}

func decodeEntry(b []byte) (Entry, error) {
	if !jsoniter.ConfigFastest.Valid(b) {
		return Entry{}, errCorruptEntry
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return Entry{}, err
	}
	if e.Identifier == "" || e.StoredAt <= 0 {
		return Entry{}, errCorruptEntry
	}
	return e, nil
}
