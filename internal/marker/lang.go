package marker

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// LangSet decides whether a fence language tag counts as compilable code.
// Tags are canonicalized through chroma's lexer alias table so that "cs",
// "c#" and "csharp" classify identically.
type LangSet struct {
	canonical map[string]bool
}

// NewLangSet builds a set from configured language tags.
func NewLangSet(tags []string) *LangSet {
	s := &LangSet{canonical: make(map[string]bool, len(tags))}
	for _, tag := range tags {
		s.canonical[canonicalLang(tag)] = true
	}
	return s
}

// Contains reports whether tag canonicalizes to a configured language.
// The empty tag (a bare fence) is never compilable.
func (s *LangSet) Contains(tag string) bool {
	if tag == "" {
		return false
	}
	return s.canonical[canonicalLang(tag)]
}

func canonicalLang(tag string) string {
	if lex := lexers.Get(tag); lex != nil {
		return strings.ToLower(lex.Config().Name)
	}
	// Unknown to chroma: fall back to a case-insensitive literal match.
	return strings.ToLower(strings.TrimSpace(tag))
}
