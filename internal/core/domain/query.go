package domain

import "strings"

// RawQuery is the text currently in the search box.
type RawQuery struct {
	// Text is the user-entered search text.
	Text string

	// Cursor is the cursor position within Text, in runes.
	Cursor int
}

// IsBlank returns true if the query has no searchable content.
func (q RawQuery) IsBlank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// SearchRequest is what is actually sent to the search backends.
type SearchRequest struct {
	// Terms is the raw text plus an optional file-extension qualifier.
	Terms string

	// IsOrSearch matches any of the terms rather than all of them.
	IsOrSearch bool
}

// IsEmpty returns true if the request carries no terms.
func (r SearchRequest) IsEmpty() bool {
	return r.Terms == ""
}

// Normalize builds a SearchRequest from user text and a file filter.
//
// Blank text yields an empty request. FilterAll leaves the text untouched;
// any other filter appends a space and the filter's extension qualifier.
//
// Text that already ends with " " plus the qualifier is returned unchanged,
// so normalizing twice with the same filter is stable. For such text the
// terms are the text itself rather than text + " " + qualifier; a user who
// typed the qualifier by hand gets it once, not twice.
func Normalize(text string, filter FileFilter) SearchRequest {
	if strings.TrimSpace(text) == "" {
		return SearchRequest{}
	}

	terms := text
	if qualifier := filter.Extensions(); filter != FilterAll && qualifier != "" {
		suffix := " " + qualifier
		if !strings.HasSuffix(text, suffix) {
			terms = text + suffix
		}
	}

	return SearchRequest{Terms: terms, IsOrSearch: true}
}

// Terms is a normalized request split back into its parts.
type Terms struct {
	// Words are the plain search words, lower-cased.
	Words []string

	// Include lists extensions from ext: qualifiers.
	Include []string

	// Exclude lists extensions from -ext: qualifiers.
	Exclude []string
}

// ParseTerms splits normalized search terms into words and extension
// qualifiers. Backends that evaluate searches locally use it.
func ParseTerms(terms string) Terms {
	var t Terms
	for _, field := range strings.Fields(terms) {
		lower := strings.ToLower(field)
		switch {
		case strings.HasPrefix(lower, "-ext:"):
			if ext := strings.TrimPrefix(lower, "-ext:"); ext != "" {
				t.Exclude = append(t.Exclude, ext)
			}
		case strings.HasPrefix(lower, "ext:"):
			if ext := strings.TrimPrefix(lower, "ext:"); ext != "" {
				t.Include = append(t.Include, ext)
			}
		default:
			if word := strings.Trim(lower, `"`); word != "" {
				t.Words = append(t.Words, word)
			}
		}
	}
	return t
}

// AllowsExtension reports whether a file extension passes the qualifiers.
func (t Terms) AllowsExtension(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, excluded := range t.Exclude {
		if excluded == ext {
			return false
		}
	}
	if len(t.Include) == 0 {
		return true
	}
	for _, included := range t.Include {
		if included == ext {
			return true
		}
	}
	return false
}
