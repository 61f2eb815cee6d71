package source

import "strings"

// Asset is one downloadable file attached to a release.
type Asset struct {
	// Name is the filename as published.
	Name string
	// DownloadURL is the direct browser download link.
	DownloadURL string
	// Size is the file size in bytes.
	Size int64
}

// Release is the latest published version of a source, narrowed to one asset.
type Release struct {
	// Version is the tag with a single leading "v" removed.
	Version string
	// DownloadURL points to the selected asset.
	DownloadURL string
	// Size is the selected asset size in bytes.
	Size int64
	// Date is the publish timestamp, passed through verbatim.
	Date string
	// Description is the changelog text; it may be empty.
	Description string
}

// NormalizeVersion strips one leading "v" from a release tag.
func NormalizeVersion(tag string) string {
	return strings.TrimPrefix(tag, "v")
}
