//go:build ignore

// Package main generates a synthetic documents.json corpus for benchmarking
// the docfind build pipeline.
// Usage: go run scripts/generate-test-corpus.go -docs 1000 -output testdata/bench/documents.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
)

var (
	numDocs    = flag.Int("docs", 1000, "Number of documents to generate")
	outputPath = flag.String("output", "testdata/bench/documents.json", "Output file path")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
	multiCat   = flag.Float64("multi-category-frac", 0.2, "Fraction of documents with an array category")
)

// rawDocument mirrors the JSON shape pkg/ingest expects: Category may be a
// string or an array of strings.
type rawDocument struct {
	Title    string      `json:"title"`
	Category interface{} `json:"category"`
	Href     string      `json:"href"`
	Body     string      `json:"body"`
}

var (
	nouns = []string{
		"Handler", "Manager", "Service", "Controller", "Processor",
		"Engine", "Client", "Server", "Worker", "Factory",
		"Builder", "Parser", "Validator", "Formatter", "Converter",
		"Cache", "Store", "Queue", "Pool", "Buffer",
		"Router", "Dispatcher", "Scheduler", "Monitor", "Logger",
	}
	categories = []string{
		"guides", "reference", "tutorials", "api", "releases",
		"faq", "troubleshooting", "concepts", "integrations", "changelog",
	}
	sentences = []string{
		"This section explains how the %s integrates with the rest of the system.",
		"Use the %s when you need predictable, well-documented behavior.",
		"The %s supports configuration through environment variables and flags.",
		"Refer to the companion %s for advanced usage patterns.",
		"Most teams start with the default %s settings before customizing further.",
		"The %s exposes a small, stable surface area intended for long-term use.",
		"Errors raised by the %s are documented alongside their recovery steps.",
		"Performance of the %s scales linearly with input size in typical workloads.",
	}
)

func randomWord(pool []string) string {
	return pool[rand.Intn(len(pool))]
}

func buildBody(noun string) string {
	body := ""
	n := 3 + rand.Intn(5)
	for i := 0; i < n; i++ {
		body += fmt.Sprintf(randomWord(sentences), noun) + " "
	}
	return body
}

func buildDocument(index int) rawDocument {
	noun := randomWord(nouns)
	cat := randomWord(categories)

	var category interface{} = cat
	if rand.Float64() < *multiCat {
		second := randomWord(categories)
		category = []string{cat, second}
	}

	return rawDocument{
		Title:    fmt.Sprintf("%s overview", noun),
		Category: category,
		Href:     fmt.Sprintf("/docs/%s/%d", cat, index),
		Body:     buildBody(noun),
	}
}

func main() {
	flag.Parse()
	rand.Seed(*seed)

	if err := os.MkdirAll(filepath.Dir(*outputPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output directory: %v\n", err)
		os.Exit(1)
	}

	docs := make([]rawDocument, *numDocs)
	for i := range docs {
		docs[i] = buildDocument(i)
	}

	f, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		fmt.Fprintf(os.Stderr, "error writing documents: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d documents in %s\n", *numDocs, *outputPath)
}
