// Package region indexes named, delimited spans of source code within the
// samples tree. Region content is opaque text: the indexer never parses or
// validates the language inside a region.
package region

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Region is a named excerpt of one source file. Lines are 1-based and span
// the content between the delimiters, exclusive of the delimiter lines.
type Region struct {
	File      string // relative to the samples root
	Name      string
	StartLine int
	EndLine   int
	Content   string
}

// FileError records a structural problem confined to one source file.
// One broken file never blocks indexing of the rest of the tree.
type FileError struct {
	File string
	Line int
	Msg  string
}

func (e FileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// Syntax is a region delimiter pair. Start must expose exactly one capture
// group holding the region name; End matches the closing delimiter.
type Syntax struct {
	Start *regexp.Regexp
	End   *regexp.Regexp
}

// builtins maps language names to their conventional delimiter syntax.
// The delimiter style is configurable because the samples tree's language
// is an external input, not a property of this tool.
var builtins = map[string]*Syntax{
	"csharp": {
		Start: regexp.MustCompile(`^\s*#region\s+(\S+)\s*$`),
		End:   regexp.MustCompile(`^\s*#endregion\b`),
	},
	"go": {
		Start: regexp.MustCompile(`^\s*//\s*region:\s*(\S+)\s*$`),
		End:   regexp.MustCompile(`^\s*//\s*endregion\b`),
	},
}

// BuiltinSyntax returns the delimiter syntax registered under name.
func BuiltinSyntax(name string) (*Syntax, error) {
	syn, ok := builtins[name]
	if !ok {
		names := make([]string, 0, len(builtins))
		for n := range builtins {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("unknown region syntax %q (built-in: %s)", name, strings.Join(names, ", "))
	}
	return syn, nil
}

// CustomSyntax compiles a delimiter pair from configuration patterns.
func CustomSyntax(start, end string) (*Syntax, error) {
	startRe, err := regexp.Compile(start)
	if err != nil {
		return nil, fmt.Errorf("compiling region start pattern: %w", err)
	}
	if startRe.NumSubexp() < 1 {
		return nil, fmt.Errorf("region start pattern %q must capture the region name in a group", start)
	}
	endRe, err := regexp.Compile(end)
	if err != nil {
		return nil, fmt.Errorf("compiling region end pattern: %w", err)
	}
	return &Syntax{Start: startRe, End: endRe}, nil
}
