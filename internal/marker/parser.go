package marker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Result holds the outcome of parsing one document.
type Result struct {
	// Markers in document order.
	Markers []Marker
	// Structural errors, in document order.
	Structural []StructuralError
}

var (
	directiveRe = regexp.MustCompile(`^(\s*)snippet:\s*(\S+)\s*$`)
	trailerRe   = regexp.MustCompile(`^\s*endSnippet\s*$`)
	commentRe   = regexp.MustCompile(`^\s*<!--\s*(invalid|pseudo|generated):\s*(.+?)\s*-->\s*$`)
	generatedRe = regexp.MustCompile(`^(.+)#L(\d+)-L(\d+)$`)
	fenceOpenRe = regexp.MustCompile("^(\\s*)(`{3,})([^`]*)$")
)

// Parser scans Markdown documents for typed code-block markers.
// A Parser is stateless apart from its language set and safe for
// concurrent use.
type Parser struct {
	Langs *LangSet
}

// Parse classifies every marker and fenced code block in text.
// It never fails: malformed constructs become structural errors and
// scanning continues on the next line. Output order is document order.
func (p *Parser) Parse(text string) *Result {
	res := &Result{}
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) {
		line := lines[i]

		if m := directiveRe.FindStringSubmatch(line); m != nil {
			i = p.parseSnippet(lines, i, m[1], m[2], res)
			continue
		}

		if trailerRe.MatchString(line) {
			res.Structural = append(res.Structural, StructuralError{
				Line: i + 1,
				Msg:  "endSnippet trailer with no open snippet directive",
			})
			i++
			continue
		}

		if m := commentRe.FindStringSubmatch(line); m != nil {
			i = p.parseComment(lines, i, m[1], m[2], res)
			continue
		}

		if m := fenceOpenRe.FindStringSubmatch(line); m != nil {
			i = p.parseBareFence(lines, i, m, res)
			continue
		}

		i++
	}

	return res
}

// parseSnippet consumes a snippet directive through its endSnippet trailer.
// Returns the line index to resume scanning at.
func (p *Parser) parseSnippet(lines []string, start int, indent, id string, res *Result) int {
	// A second directive before the trailer terminates this one: the inner
	// directive must not be swallowed into the outer marker's span, where a
	// later rewrite would silently delete it.
	trailer := -1
	next := len(lines)
	for j := start + 1; j < len(lines); j++ {
		if trailerRe.MatchString(lines[j]) {
			trailer = j
			break
		}
		if directiveRe.MatchString(lines[j]) {
			next = j
			break
		}
	}
	if trailer < 0 {
		if next < len(lines) {
			res.Structural = append(res.Structural, StructuralError{
				Line: start + 1,
				Msg:  fmt.Sprintf("snippet %q has no endSnippet trailer before the next snippet directive", id),
			})
			return next
		}
		res.Structural = append(res.Structural, StructuralError{
			Line: start + 1,
			Msg:  fmt.Sprintf("snippet %q has no endSnippet trailer before end of document", id),
		})
		return start + 1
	}

	if !ValidID(id) {
		res.Structural = append(res.Structural, StructuralError{
			Line: start + 1,
			Msg:  fmt.Sprintf("malformed snippet id %q: must match [a-z0-9-]+", id),
		})
		return trailer + 1
	}

	m := Marker{
		Kind:      KindSnippet,
		ID:        id,
		StartLine: start + 1,
		EndLine:   trailer + 1,
		Indent:    indent,
	}

	// A directive freshly added by hand carries no fence yet; one that has
	// been resolved before holds exactly one fenced block. Either is fine.
	if body, tag, ok := innerFence(lines[start+1 : trailer]); ok {
		m.Body = body
		m.Fence = tag
	}

	res.Markers = append(res.Markers, m)
	return trailer + 1
}

// parseComment consumes an invalid/pseudo/generated HTML comment and the
// fenced block it governs.
func (p *Parser) parseComment(lines []string, start int, kind, arg string, res *Result) int {
	// The governed fence must follow the comment, blank lines permitted.
	fenceAt := start + 1
	for fenceAt < len(lines) && strings.TrimSpace(lines[fenceAt]) == "" {
		fenceAt++
	}
	var open []string
	if fenceAt < len(lines) {
		open = fenceOpenRe.FindStringSubmatch(lines[fenceAt])
	}
	if open == nil {
		res.Structural = append(res.Structural, StructuralError{
			Line: start + 1,
			Msg:  fmt.Sprintf("%s marker is not followed by a fenced code block", kind),
		})
		return start + 1
	}

	closeAt := findFenceClose(lines, fenceAt+1, len(open[2]))
	if closeAt < 0 {
		res.Structural = append(res.Structural, StructuralError{
			Line: fenceAt + 1,
			Msg:  "unterminated code fence",
		})
		return len(lines)
	}

	m := Marker{
		StartLine: start + 1,
		EndLine:   closeAt + 1,
		Fence:     fenceTag(open[3]),
		Body:      stripIndent(lines[fenceAt+1:closeAt], open[1]),
	}

	switch kind {
	case "invalid", "pseudo":
		if !ValidID(arg) {
			res.Structural = append(res.Structural, StructuralError{
				Line: start + 1,
				Msg:  fmt.Sprintf("malformed %s id %q: must match [a-z0-9-]+", kind, arg),
			})
			return closeAt + 1
		}
		m.ID = arg
		m.Kind = KindInvalid
		if kind == "pseudo" {
			m.Kind = KindPseudo
		}
	case "generated":
		g := generatedRe.FindStringSubmatch(arg)
		if g == nil {
			res.Structural = append(res.Structural, StructuralError{
				Line: start + 1,
				Msg:  fmt.Sprintf("malformed generated reference %q: want path#L<start>-L<end>", arg),
			})
			return closeAt + 1
		}
		m.Kind = KindGenerated
		m.Path = g[1]
		m.TargetStart, _ = strconv.Atoi(g[2])
		m.TargetEnd, _ = strconv.Atoi(g[3])
		if m.TargetStart < 1 || m.TargetEnd < m.TargetStart {
			res.Structural = append(res.Structural, StructuralError{
				Line: start + 1,
				Msg:  fmt.Sprintf("invalid generated line range L%d-L%d", m.TargetStart, m.TargetEnd),
			})
			return closeAt + 1
		}
	}

	res.Markers = append(res.Markers, m)
	return closeAt + 1
}

// parseBareFence consumes a fenced block with no governing marker.
// Compilable-language fences become Unmarked markers; everything else
// (prose fences, diagrams, shell transcripts) is skipped.
func (p *Parser) parseBareFence(lines []string, start int, open []string, res *Result) int {
	closeAt := findFenceClose(lines, start+1, len(open[2]))
	if closeAt < 0 {
		res.Structural = append(res.Structural, StructuralError{
			Line: start + 1,
			Msg:  "unterminated code fence",
		})
		return len(lines)
	}

	tag := fenceTag(open[3])
	if p.Langs.Contains(tag) {
		res.Markers = append(res.Markers, Marker{
			Kind:      KindUnmarked,
			StartLine: start + 1,
			EndLine:   closeAt + 1,
			Fence:     tag,
			Body:      stripIndent(lines[start+1:closeAt], open[1]),
		})
	}
	return closeAt + 1
}

// innerFence extracts the first complete fenced block from a line window.
func innerFence(window []string) (body, tag string, ok bool) {
	for i, line := range window {
		open := fenceOpenRe.FindStringSubmatch(line)
		if open == nil {
			continue
		}
		closeAt := findFenceClose(window, i+1, len(open[2]))
		if closeAt < 0 {
			return "", "", false
		}
		return stripIndent(window[i+1:closeAt], open[1]), fenceTag(open[3]), true
	}
	return "", "", false
}

// findFenceClose returns the index of the closing fence for an opening run
// of fenceLen backticks, or -1. A closing fence carries no info string and
// at least as many backticks as the opening fence.
func findFenceClose(lines []string, from, fenceLen int) int {
	for j := from; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if len(trimmed) >= fenceLen && strings.Count(trimmed, "`") == len(trimmed) {
			return j
		}
	}
	return -1
}

// fenceTag extracts the language tag from a fence info string.
func fenceTag(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// stripIndent removes a common indent prefix from body lines, preserving
// deeper indentation within the block. Lines that do not carry the prefix
// (blank lines, hand-mangled indentation) are trimmed of leading whitespace
// only when blank.
func stripIndent(body []string, indent string) string {
	if len(body) == 0 {
		return ""
	}
	out := make([]string, len(body))
	for i, line := range body {
		switch {
		case strings.HasPrefix(line, indent):
			out[i] = line[len(indent):]
		case strings.TrimSpace(line) == "":
			out[i] = ""
		default:
			out[i] = line
		}
	}
	return strings.Join(out, "\n")
}
