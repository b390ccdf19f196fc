package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLToText renders an answer fragment as plain text. Icon ligatures,
// buttons, scripts and styles are dropped; block elements become line breaks
// and list items are bulleted.
func HTMLToText(fragment string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	w := &textWriter{}
	for _, n := range nodes {
		w.walk(n, false)
	}
	return strings.TrimSpace(collapseBlankLines(strings.Split(w.String(), "\n"))), nil
}

type textWriter struct {
	strings.Builder
}

func (w *textWriter) walk(n *html.Node, pre bool) {
	switch n.Type {
	case html.CommentNode:
		return
	case html.TextNode:
		w.text(n.Data, pre)
		return
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if isDroppedElement(tag) {
			return
		}
		switch tag {
		case "br":
			w.WriteString("\n")
			return
		case "pre":
			pre = true
		case "li":
			w.newline()
			w.WriteString("- ")
			w.children(n, pre)
			w.newline()
			return
		}
		block := isTextBlock(tag)
		if block {
			w.newline()
		}
		w.children(n, pre)
		if block {
			w.newline()
		}
		return
	}
	w.children(n, pre)
}

func (w *textWriter) children(n *html.Node, pre bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, pre)
	}
}

func (w *textWriter) text(data string, pre bool) {
	if pre {
		w.WriteString(data)
		return
	}
	fields := strings.Fields(data)
	if len(fields) == 0 {
		if data != "" && !w.endsWithSpace() {
			w.WriteString(" ")
		}
		return
	}
	if startsWithSpace(data) && !w.endsWithSpace() {
		w.WriteString(" ")
	}
	w.WriteString(strings.Join(fields, " "))
	if endsWithSpace(data) {
		w.WriteString(" ")
	}
}

// newline ends the current line unless the output already ends with one.
func (w *textWriter) newline() {
	s := w.String()
	if s == "" || strings.HasSuffix(s, "\n") {
		return
	}
	trimmed := strings.TrimRight(s, " ")
	if len(trimmed) != len(s) {
		w.Reset()
		w.WriteString(trimmed)
	}
	w.WriteString("\n")
}

func (w *textWriter) endsWithSpace() bool {
	s := w.String()
	return s == "" || strings.HasSuffix(s, " ") || strings.HasSuffix(s, "\n")
}

func startsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r", rune(s[0]))
}

func endsWithSpace(s string) bool {
	return s != "" && strings.ContainsRune(" \t\n\r", rune(s[len(s)-1]))
}

// isDroppedElement returns true for elements whose content is UI chrome.
func isDroppedElement(tag string) bool {
	switch tag {
	case "mat-icon", "button", "script", "style", "svg", "noscript", "ms-thought-chunk":
		return true
	}
	return false
}

// isTextBlock returns true for elements rendered on their own line.
func isTextBlock(tag string) bool {
	switch tag {
	case "p", "div", "section", "article", "pre", "blockquote",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "table", "tr", "hr",
		"ms-text-chunk", "ms-code-block":
		return true
	}
	return false
}
