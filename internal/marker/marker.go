package marker

import "regexp"

// Kind identifies the marker variant governing a code block.
type Kind int

const (
	// KindSnippet expects its body to be replaced by a named source region.
	KindSnippet Kind = iota
	// KindInvalid is an intentionally non-compiling example; content is fixed.
	KindInvalid
	// KindGenerated freezes a verbatim excerpt of a source file line range.
	KindGenerated
	// KindPseudo is an illustrative fragment exempt from compilation checks.
	KindPseudo
	// KindUnmarked is a compilable-language fence with no governing marker.
	// Always a verification failure.
	KindUnmarked
)

// String returns the lowercase name used in reports.
func (k Kind) String() string {
	switch k {
	case KindSnippet:
		return "snippet"
	case KindInvalid:
		return "invalid"
	case KindGenerated:
		return "generated"
	case KindPseudo:
		return "pseudo"
	case KindUnmarked:
		return "unmarked"
	}
	return "unknown"
}

// Marker is one classified code block in a document.
// Line numbers are 1-based and span the whole construct: for a snippet,
// the directive line through the endSnippet trailer; for comment markers,
// the comment line through the closing fence; for unmarked blocks, the
// opening fence through the closing fence.
type Marker struct {
	Kind Kind

	// ID names the bound region (snippet, invalid, pseudo).
	ID string

	// Path, TargetStart and TargetEnd identify the frozen excerpt
	// (generated only). Lines are 1-based inclusive.
	Path        string
	TargetStart int
	TargetEnd   int

	// StartLine and EndLine span the construct within the document.
	StartLine int
	EndLine   int

	// Indent is the leading whitespace of the directive line (snippet only).
	// Inserted content is re-based to this column.
	Indent string

	// Body is the current fenced content, without the fence lines and
	// without the marker's indentation. Empty if no fence is present yet.
	Body string

	// Fence is the language tag on the block's opening fence, if any.
	Fence string
}

// StructuralError records malformed marker syntax at a document line.
// Structural errors are collected, never raised; one broken marker must not
// abort the rest of the document.
type StructuralError struct {
	Line int
	Msg  string
}

// idPattern is the only accepted shape for snippet, invalid and pseudo IDs.
var idPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidID reports whether id is a well-formed marker identifier.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
