package ui

import (
	"encoding/json"
	"fmt"
	"io"
)

// ArtifactInfo summarizes a built docfind artifact for `docfind inspect`.
type ArtifactInfo struct {
	Path string `json:"path"`

	// Envelope header fields (C6).
	Version uint16 `json:"version"`

	// Content stats.
	Documents int `json:"documents"`
	Keywords  int `json:"keywords"`

	// Sizes (in bytes).
	ImageSize  int64 `json:"image_size"`
	ModuleSize int64 `json:"module_size"`

	// WASM template globals (C7).
	IndexBase uint32 `json:"index_base"`
	IndexLen  uint32 `json:"index_len"`
}

// ArtifactRenderer displays artifact inspection output.
type ArtifactRenderer struct {
	out     io.Writer
	styles  Styles
	noColor bool
}

// NewArtifactRenderer creates an artifact renderer.
func NewArtifactRenderer(out io.Writer, noColor bool) *ArtifactRenderer {
	return &ArtifactRenderer{
		out:     out,
		styles:  GetStyles(noColor),
		noColor: noColor,
	}
}

// Render displays artifact info to the terminal.
func (r *ArtifactRenderer) Render(info ArtifactInfo) error {
	_, _ = fmt.Fprintf(r.out, "%s\n\n", r.styles.Header.Render("Artifact: "+info.Path))

	_, _ = fmt.Fprintf(r.out, "  Version:    %d\n", info.Version)
	_, _ = fmt.Fprintf(r.out, "  Documents:  %d\n", info.Documents)
	_, _ = fmt.Fprintf(r.out, "  Keywords:   %d\n", info.Keywords)
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Sizes:")
	_, _ = fmt.Fprintf(r.out, "    Index image: %s\n", FormatBytes(info.ImageSize))
	_, _ = fmt.Fprintf(r.out, "    Module:      %s\n", FormatBytes(info.ModuleSize))
	_, _ = fmt.Fprintln(r.out)

	_, _ = fmt.Fprintln(r.out, "  Template globals:")
	_, _ = fmt.Fprintf(r.out, "    INDEX_BASE: %d\n", info.IndexBase)
	_, _ = fmt.Fprintf(r.out, "    INDEX_LEN:  %d\n", info.IndexLen)

	return nil
}

// RenderJSON outputs artifact info as JSON.
func (r *ArtifactRenderer) RenderJSON(info ArtifactInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// FormatBytes formats bytes to human-readable format.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
