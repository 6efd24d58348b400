package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

const translatorsMarker = "translators:"

// translatorComment finds the translator comment for a call. It walks up
// from the call to its enclosing statement and, at each level, scans the
// preceding siblings. Comments are skipped over until a qualifying one is
// found; any other named node ends the scan at that level.
func translatorComment(d Dialect, call *sitter.Node, src []byte) string {
	for n := call; n != nil; {
		for prev := n.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
			comments, ok := commentsOf(d, prev, src)
			if !ok {
				if prev.IsNamed() {
					break
				}
				continue
			}
			for i := len(comments) - 1; i >= 0; i-- {
				if text, ok := parseTranslatorComment(comments[i].Content(src)); ok {
					return text
				}
			}
		}
		parent := n.Parent()
		if parent == nil || d.IsBlock(parent) {
			break
		}
		n = parent
	}
	return ""
}

// commentsOf reports whether n can be skipped over while looking for a
// comment, and returns the comments it holds. Besides plain comments this
// covers JSX {/* ... */} containers and whitespace-only JSX text.
func commentsOf(d Dialect, n *sitter.Node, src []byte) ([]*sitter.Node, bool) {
	switch {
	case d.Kind(n) == KindComment:
		return []*sitter.Node{n}, true
	case n.Type() == jsNodeJSXText:
		return nil, strings.TrimSpace(n.Content(src)) == ""
	case n.Type() == jsNodeJSXExpression:
		var comments []*sitter.Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if d.Kind(child) != KindComment {
				return nil, false
			}
			comments = append(comments, child)
		}
		return comments, len(comments) > 0
	}
	return nil, false
}

// parseTranslatorComment strips comment markup and reports the text after
// the translators marker.
func parseTranslatorComment(raw string) (string, bool) {
	text := cleanComment(raw)
	if len(text) < len(translatorsMarker) || !strings.EqualFold(text[:len(translatorsMarker)], translatorsMarker) {
		return "", false
	}
	return strings.TrimSpace(text[len(translatorsMarker):]), true
}

// cleanComment removes //, #, /* */ and leading * decoration from each line
// and joins the non-empty lines with a single space.
func cleanComment(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "*/")

	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "//"):
			line = line[2:]
		case strings.HasPrefix(line, "#"):
			line = line[1:]
		case strings.HasPrefix(line, "/*"):
			line = line[2:]
		}
		line = strings.TrimSpace(strings.TrimLeft(line, "*/"))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
