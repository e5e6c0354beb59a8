package domain

import "strings"

// DocumentKind tells whether a DocumentSource carries the document itself or
// a reference to fetch it from.
type DocumentKind int

const (
	// DocumentInline marks a literal document body.
	DocumentInline DocumentKind = iota + 1
	// DocumentRemote marks a URL the document must be fetched from.
	DocumentRemote
)

// String implements fmt.Stringer.
func (k DocumentKind) String() string {
	switch k {
	case DocumentInline:
		return "inline"
	case DocumentRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// remotePrefix is the prefix that turns submitted input into a URL reference.
const remotePrefix = "http"

// DocumentSource is the input of a single validation request: either an
// inline document body or a remote document URL. The zero value is an empty
// inline document.
type DocumentSource struct {
	kind DocumentKind
	body []byte
	url  string
}

// InlineDocument builds a source holding the document body itself.
func InlineDocument(body []byte) DocumentSource {
	return DocumentSource{kind: DocumentInline, body: body}
}

// RemoteDocument builds a source referring to a document at url.
func RemoteDocument(url string) DocumentSource {
	return DocumentSource{kind: DocumentRemote, url: url}
}

// ParseDocumentSource decides once, at ingestion, whether input is a URL or a
// literal document. Input whose whitespace-trimmed form starts with "http" is
// a remote reference; anything else is kept verbatim as an inline body.
func ParseDocumentSource(input string) DocumentSource {
	if trimmed := strings.TrimSpace(input); strings.HasPrefix(trimmed, remotePrefix) {
		return RemoteDocument(trimmed)
	}

	return InlineDocument([]byte(input))
}

// Kind returns the source variant.
func (s DocumentSource) Kind() DocumentKind {
	if s.kind == 0 {
		return DocumentInline
	}

	return s.kind
}

// Body returns the inline document body; it is nil for remote sources.
func (s DocumentSource) Body() []byte { return s.body }

// URL returns the remote document URL; it is empty for inline sources.
func (s DocumentSource) URL() string { return s.url }
