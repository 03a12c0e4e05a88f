// Package ingest reads the input document array and normalizes it into the
// document model the rest of the build pipeline shares.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	dferrors "github.com/docfind-go/docfind/internal/errors"
)

// Document is one ingested record. Fields are stored original-cased for
// display; LowerX fields hold the lowercased form used for extraction.
type Document struct {
	// DocID is the zero-based ingestion-order identifier. Stable for the
	// lifetime of the index.
	DocID uint32

	Title    string
	Category string
	Href     string
	Body     string

	LowerTitle    string
	LowerCategory string
	LowerBody     string
}

// rawDocument mirrors the JSON shape of one input record. Category may be
// either a string or an array of strings (an Open Question spec.md resolves
// by concatenating array elements with spaces).
type rawDocument struct {
	Title    json.RawMessage `json:"title"`
	Category json.RawMessage `json:"category"`
	Href     json.RawMessage `json:"href"`
	Body     json.RawMessage `json:"body"`
}

// Ingest parses data as a JSON array of document records and normalizes
// each into a Document. Empty input (an empty array) yields a zero-length,
// valid result. Non-array input, or a record with no textual fields at
// all, fails with ErrCodeInputMalformed carrying the offending byte offset.
func Ingest(data []byte) ([]Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, inputMalformed("failed to parse document array", 0, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, inputMalformed("input must be a JSON array of documents", dec.InputOffset(), nil)
	}

	var docs []Document
	var docID uint32

	for dec.More() {
		offset := dec.InputOffset()

		var raw rawDocument
		if err := dec.Decode(&raw); err != nil {
			return nil, inputMalformed(fmt.Sprintf("document %d is not a valid object", docID), offset, err)
		}

		doc, err := normalize(raw, docID, offset)
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
		docID++
	}

	if _, err := dec.Token(); err != nil {
		return nil, inputMalformed("unterminated document array", dec.InputOffset(), err)
	}

	return docs, nil
}

func normalize(raw rawDocument, docID uint32, offset int64) (Document, error) {
	title, err := stringField(raw.Title, "title", offset)
	if err != nil {
		return Document{}, err
	}
	category, err := categoryField(raw.Category, offset)
	if err != nil {
		return Document{}, err
	}
	href, err := stringField(raw.Href, "href", offset)
	if err != nil {
		return Document{}, err
	}
	body, err := stringField(raw.Body, "body", offset)
	if err != nil {
		return Document{}, err
	}

	if title == "" && category == "" && href == "" && body == "" {
		return Document{}, inputMalformed(
			fmt.Sprintf("document %d has no textual fields", docID), offset, nil)
	}

	return Document{
		DocID:         docID,
		Title:         title,
		Category:      category,
		Href:          href,
		Body:          body,
		LowerTitle:    strings.ToLower(title),
		LowerCategory: strings.ToLower(category),
		LowerBody:     strings.ToLower(body),
	}, nil
}

// stringField decodes a JSON field that is absent, null, or a string.
// Any other JSON type (number, object, array, bool) is rejected.
func stringField(raw json.RawMessage, field string, offset int64) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", inputMalformed(fmt.Sprintf("field %q must be a string", field), offset, err)
	}
	return s, nil
}

// categoryField accepts either a string or an array of strings, joining
// array elements with spaces per spec.md's category Open Question.
func categoryField(raw json.RawMessage, offset int64) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var parts []string
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", inputMalformed("field \"category\" must be a string or array of strings", offset, err)
	}
	return strings.Join(parts, " "), nil
}

func inputMalformed(message string, offset int64, cause error) error {
	return dferrors.InputMalformed(message, cause).WithDetail("byte_offset", fmt.Sprintf("%d", offset))
}
