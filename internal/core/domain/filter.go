package domain

import (
	"fmt"
	"strings"
)

// FileFilter restricts file searches to a family of file extensions.
type FileFilter int

// Available file filters. FilterAll applies no restriction.
const (
	FilterAll FileFilter = iota
	FilterDocuments
	FilterSpreadsheets
	FilterPresentations
	FilterCode
	FilterImages
	FilterVideos
	FilterAudio
	FilterOther
)

// AllFileFilters lists every filter in display order.
func AllFileFilters() []FileFilter {
	return []FileFilter{
		FilterAll,
		FilterDocuments,
		FilterSpreadsheets,
		FilterPresentations,
		FilterCode,
		FilterImages,
		FilterVideos,
		FilterAudio,
		FilterOther,
	}
}

var filterNames = map[FileFilter]string{
	FilterAll:           "all",
	FilterDocuments:     "documents",
	FilterSpreadsheets:  "spreadsheets",
	FilterPresentations: "presentations",
	FilterCode:          "code",
	FilterImages:        "images",
	FilterVideos:        "videos",
	FilterAudio:         "audio",
	FilterOther:         "other",
}

// filterExtensions holds the extension family of each concrete filter.
// FilterOther is derived from the union of these.
var filterExtensions = map[FileFilter][]string{
	FilterDocuments:     {"doc", "docx", "odt", "pdf", "rtf", "txt"},
	FilterSpreadsheets:  {"xls", "xlsx", "ods", "csv"},
	FilterPresentations: {"ppt", "pptx", "odp", "key"},
	FilterCode: {
		"c", "cc", "cpp", "cs", "css", "go", "h", "hpp", "html", "java", "js", "json",
		"jsx", "kt", "lua", "md", "php", "pl", "py", "rb", "rs", "scala", "sh", "sql",
		"swift", "ts", "tsx", "xml", "yaml", "yml",
	},
	FilterImages: {"jpg", "jpeg", "png", "gif", "bmp", "svg", "tif", "tiff", "webp", "heic", "psd"},
	FilterVideos: {"mp4", "mov", "avi", "mkv", "webm", "wmv", "mpg", "mpeg", "m4v"},
	FilterAudio:  {"mp3", "wav", "ogg", "flac", "aac", "m4a", "wma"},
}

// String returns the lower-case name of the filter.
func (f FileFilter) String() string {
	if name, ok := filterNames[f]; ok {
		return name
	}
	return fmt.Sprintf("filter(%d)", int(f))
}

// Label returns a human-readable name for menus.
func (f FileFilter) Label() string {
	name := f.String()
	if f == FilterAll {
		return "All file types"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// IsValid returns true if the filter is one of the known values.
func (f FileFilter) IsValid() bool {
	_, ok := filterNames[f]
	return ok
}

// Extensions returns the search qualifier for the filter as space-joined
// ext: tokens. FilterAll returns an empty string. FilterOther excludes
// every extension covered by another filter.
func (f FileFilter) Extensions() string {
	if f == FilterOther {
		tokens := make([]string, 0, 64)
		for _, other := range AllFileFilters() {
			for _, ext := range filterExtensions[other] {
				tokens = append(tokens, "-ext:"+ext)
			}
		}
		return strings.Join(tokens, " ")
	}

	exts := filterExtensions[f]
	tokens := make([]string, len(exts))
	for i, ext := range exts {
		tokens[i] = "ext:" + ext
	}
	return strings.Join(tokens, " ")
}

// Matches reports whether a file extension belongs to the filter.
func (f FileFilter) Matches(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	switch f {
	case FilterAll:
		return true
	case FilterOther:
		for _, other := range AllFileFilters() {
			if other != FilterOther && other != FilterAll && other.Matches(ext) {
				return false
			}
		}
		return true
	default:
		for _, candidate := range filterExtensions[f] {
			if candidate == ext {
				return true
			}
		}
		return false
	}
}

// ParseFileFilter converts a filter name into a FileFilter.
// The empty string maps to FilterAll.
func ParseFileFilter(s string) (FileFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for f, name := range filterNames {
		if name == s {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("%w: unknown file filter %q", ErrInvalidInput, s)
}
