package compress

import "github.com/docfind-go/docfind/pkg/ingest"

// BuildSample concatenates every document string (title, category, href,
// body, in that order) up to capBytes, the training input spec.md's
// sample_bytes Open Question configures (default 16 MiB, full corpus if
// smaller).
func BuildSample(docs []ingest.Document, capBytes int64) []byte {
	var sample []byte
	for _, doc := range docs {
		for _, field := range []string{doc.Title, doc.Category, doc.Href, doc.Body} {
			if field == "" {
				continue
			}
			remaining := capBytes - int64(len(sample))
			if remaining <= 0 {
				return sample
			}
			if int64(len(field)) > remaining {
				sample = append(sample, field[:remaining]...)
				return sample
			}
			sample = append(sample, field...)
		}
	}
	return sample
}
