// Package index assembles the FST, postings, compressed strings, and
// document records produced by the earlier pipeline stages into one
// serializable Image, enforcing the invariants spec.md §3 pins on it.
package index

import "github.com/docfind-go/docfind/pkg/aggregate"

// CurrentVersion is the image format version C6 writes and C8 gates on.
const CurrentVersion uint16 = 1

// DocRecord is the stored, per-document set of string_id references.
type DocRecord struct {
	Title    uint32
	Category uint32
	Href     uint32
	Body     uint32
}

// Image is the complete, immutable search index: everything the query
// engine (C8) needs to answer a query, with no further dependency on the
// original documents.
type Image struct {
	Version        uint16
	FST            []byte
	Postings       [][]aggregate.Posting // slot -> posting list, as emitted by the FST
	CompressorBlob []byte
	Strings        [][]byte // index 0 holds string_id 1
	Docs           []DocRecord
}
