// Package bridge is the host-facing entry point (C9): it guards lazy
// deserialization of the embedded image with a one-shot latch and
// converts query results into the host's native value representation.
package bridge

import (
	"sync"

	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/pkg/query"
	"github.com/docfind-go/docfind/pkg/serialize"
)

// HostResult is the JSON-object shape the browser binding returns from
// search(): {title, category, href, body, score}.
type HostResult struct {
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Href     string  `json:"href"`
	Body     string  `json:"body"`
	Score    float32 `json:"score"`
}

// Bridge owns the one-shot initialization latch described in spec.md
// §4.8 and §9: the first Search call triggers deserialization of the
// image bytes it was constructed with; every later call, success or
// Poisoned, skips straight to the engine (or the poison).
type Bridge struct {
	data []byte

	once sync.Once
	mu   sync.Mutex

	engine           *query.Engine
	loadErr          error
	firstSurfaceDone bool
}

// New constructs a Bridge over the image bytes at [INDEX_BASE,
// INDEX_BASE+INDEX_LEN) in the host's linear memory. Deserialization does
// not happen until the first Search call.
func New(data []byte) *Bridge {
	return &Bridge{data: data}
}

func (b *Bridge) load() {
	img, err := serialize.Decode(b.data)
	if err != nil {
		b.mu.Lock()
		b.loadErr = err
		b.mu.Unlock()
		return
	}

	eng, err := query.NewEngine(img)
	if err != nil {
		b.mu.Lock()
		b.loadErr = err
		b.mu.Unlock()
		return
	}

	b.mu.Lock()
	b.engine = eng
	b.mu.Unlock()
}

// ensureReady runs the one-shot load and reports whether the bridge is
// usable. A load failure's original error code (IndexVersionMismatch or
// IndexCorrupt) is surfaced exactly once, on the call that triggered the
// load; every call after that — including further calls that raced into
// the same failed load — sees the generic IndexCorrupt the Poisoned
// state implies.
func (b *Bridge) ensureReady() error {
	b.once.Do(b.load)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.loadErr == nil {
		return nil
	}
	if !b.firstSurfaceDone {
		b.firstSurfaceDone = true
		return b.loadErr
	}
	return dferrors.IndexCorrupt("index is poisoned from a prior load failure", b.loadErr)
}

// Search deserializes the image on first call (if not already loaded or
// poisoned) and returns ranked results converted to the host's native
// value representation. explicitMaxResults distinguishes "caller didn't
// pass max_results" (apply the default of 10) from "caller passed 0"
// (an empty result set is a valid, non-error answer).
func (b *Bridge) Search(needle string, maxResults uint32, explicitMaxResults bool) ([]HostResult, error) {
	if err := b.ensureReady(); err != nil {
		return nil, err
	}

	results, err := b.engine.Search(needle, maxResults, explicitMaxResults)
	if err != nil {
		return nil, err
	}

	out := make([]HostResult, len(results))
	for i, r := range results {
		out[i] = HostResult{
			Title:    r.Title,
			Category: r.Category,
			Href:     r.Href,
			Body:     r.Body,
			Score:    r.Score,
		}
	}
	return out, nil
}
